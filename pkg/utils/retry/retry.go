package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetry is returned (or wrapped) by polled functions to mean
// "not done yet, ask again after backoff".
var ErrRetry = errors.New("retry")

// Backoff is a (blocking) function which returns when the next attempt may run.
//
// # Args
//
// - context: context. If the context is canceled, Backoff returns ctx.Err().
//
// # Returns
//
// - error: nil to retry, non-nil to give up.
type Backoff func(context.Context) error

// StaticBackoff returns a Backoff waiting a fixed interval between attempts.
var StaticBackoff = func(interval time.Duration) Backoff {
	return ExponentialBackoff(interval, 1)
}

// ExponentialBackoff returns a Backoff whose wait grows by factor r each call.
//
// For the N-th call it waits `initialInterval * r^N`, or until the context is done.
var ExponentialBackoff = func(initialInterval time.Duration, r float64) Backoff {
	interval := initialInterval
	return func(ctx context.Context) error {
		timer := time.NewTimer(interval)
		defer func() {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			i := float64(interval) * r
			interval = time.Duration(int64(i))
			return nil
		}
	}
}

// Blocking calls f until it returns nil or a non-retry error.
//
// The backoff runs before each attempt, the first one included.
//
// # Args
//
// - ctx: context
//
// - b: backoff function
//
// - f: function to be polled. While f returns ErrRetry (or wraps it),
// Blocking calls it again after backoff.
//
// # Returns
//
// - T: last return value of f
//
// - error: error returned by f, or the context error when the backoff is
// interrupted.
func Blocking[T any](ctx context.Context, b Backoff, f func() (T, error)) (T, error) {
	last := *new(T)
	for {
		if err := b(ctx); err != nil {
			return last, err
		}

		var err error
		last, err = f()
		if err == nil {
			return last, nil
		}
		if errors.Is(err, ErrRetry) {
			continue
		}
		return last, err
	}
}

type Result[T any] struct {
	Value T
	Err   error
}

type Promise[T any] <-chan Result[T]

func Failed[T any](err error) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}

func Ok[T any](value T) Promise[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Value: value}
	close(ch)
	return ch
}

// Go runs f in a background goroutine, retrying on ErrRetry as Blocking does.
//
// Panics in f are recovered into the returned promise.
func Go[T any](ctx context.Context, b Backoff, f func() (T, error)) Promise[T] {
	ch := make(chan Result[T], 1)

	go func() {
		defer close(ch)
		defer func() {
			r := recover()
			var err error
			switch rr := r.(type) {
			case nil:
				return
			case error:
				err = rr
			default:
				err = fmt.Errorf("%+v", rr)
			}

			select {
			case ch <- Result[T]{Err: err}:
			default:
				panic(r)
			}
		}()

		ret, err := Blocking(ctx, b, f)
		ch <- Result[T]{Value: ret, Err: err}
	}()

	return ch
}

// Policy is the bounded retry budget shared by everything that mutates
// cluster state. MaxAttempts bounds the total number of calls (not re-calls);
// the wait between attempts starts at BaseDelay and doubles, capped by
// MaxDelay when MaxDelay > 0.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Do calls f up to p.MaxAttempts times. The first attempt runs immediately;
// later attempts wait for the backoff delay or the context, whichever ends
// first. Retrying stops as soon as f succeeds, retryable(err) is false, or
// the budget is spent; the last error is returned in the latter cases.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, f func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		if err = f(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
	}
	return err
}
