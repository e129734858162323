// Package errors wraps errors with the location they were created at.
//
// Usage:
//
//	wrapped := xe.Wrap(err)
//
// The wrapped error knows the filename, line and function name of the
// place it was created. Reading its message, each `<-` steps one wrap
// outward, so chained wraps read as a stack of marked locations.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

type ErrWithCaller struct {
	file     string
	line     int
	funcname string
	note     string
	err      error
}

func (e *ErrWithCaller) Error() string {
	note := ""
	if e.note != "" {
		note = " (" + e.note + ")"
	}
	return fmt.Sprintf(
		`@ %s "%s" l%d%s <- %s`,
		e.funcname, e.file, e.line, note, e.err.Error(),
	)
}

func (e *ErrWithCaller) Unwrap() error {
	return e.err
}

func New(text string) error {
	return wrap("", errors.New(text), 1)
}

func Wrap(err error) error {
	return wrap("", err, 1)
}

// WrapAsOuter records the caller `depth` frames above the caller of this
// function. Constructors wrapping their own errors pass 1 so the recorded
// location is their caller, not themselves.
func WrapAsOuter(err error, depth int) error {
	return wrap("", err, depth+1)
}

func WrapWithNote(note string, err error) error {
	return wrap(note, err, 1)
}

func wrap(note string, err error, depth int) error {
	e := &ErrWithCaller{
		file: "?", line: -1, funcname: "(unknown func)",
		note: note, err: err,
	}
	pc, file, line, ok := runtime.Caller(depth + 1)
	if ok {
		e.file, e.line = file, line
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		e.funcname = fn.Name()
	}
	return e
}
