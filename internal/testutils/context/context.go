// Package context derives test-scoped contexts.
package context

import (
	"context"
	"testing"
	"time"
)

// WithTest bounds ctx by the test's deadline, less one second so the test
// body still gets to report and clean up when the deadline hits. Tests
// running without a deadline get a plain cancelable context.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	deadline, ok := t.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, deadline.Add(-time.Second))
}
