// Package filewatch derives contexts from filesystem events.
//
// slotswapd runs with its configuration mounted from a ConfigMap; when the
// file changes the daemon's root context is canceled so the process exits
// and the supervisor restarts it with the new configuration.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext returns a context that is canceled when one of the
// target files is modified (= written, created, removed, or renamed).
//
// # Args
//
// - ctx: parent context.
//
// - targetFilePath ...string: file paths to be watched. When any of the
// files is modified, the context is canceled.
//
// # Returns
//
// - context.Context: context canceled on the first modification. Its cause
// (context.Cause) names the modified file, or carries the watcher's error
// when watching itself breaks.
//
// - func(): cancel function.
//
// - error: error caused when it fails to start watching files.
//
// If error is not nil, both the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for _, f := range targetFilePath {
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()

		select {
		case <-cctx.Done():
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op))
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			cancel(werr)
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
