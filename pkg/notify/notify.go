// Package notify delivers release reports to external receivers.
//
// The orchestrator hands a report snapshot to its Notifier at every phase
// boundary and once more on completion. Delivery failures never change the
// outcome of a run; callers log them and move on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/slotswap/slotswap/pkg/domain"
)

var ErrNotifyFailed = errors.New("notify failed")

// Notifier receives release report snapshots.
type Notifier interface {
	Notify(ctx context.Context, report *domain.ReleaseReport) error
}

// Web POSTs reports as JSON to each URL.
//
// A delivery succeeds only if every URL answers with a 2xx status code.
type Web struct {
	URLs   []*url.URL
	Client *http.Client
}

var _ Notifier = Web{}

// NewWeb builds a Web notifier. The default client carries a timeout so a
// stuck receiver cannot stall the run that is reporting.
func NewWeb(urls []*url.URL) Web {
	return Web{URLs: urls, Client: &http.Client{Timeout: 30 * time.Second}}
}

func (w Web) Notify(ctx context.Context, report *domain.ReleaseReport) error {
	if len(w.URLs) == 0 {
		return nil
	}

	buf, err := json.Marshal(report)
	if err != nil {
		return errors.Join(err, ErrNotifyFailed)
	}

	for _, u := range w.URLs {
		if err := w.send(ctx, u.String(), buf); err != nil {
			return err
		}
	}
	return nil
}

func (w Web) send(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Join(err, ErrNotifyFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Join(err, ErrNotifyFailed)
	}
	defer resp.Body.Close()

	if 200 <= resp.StatusCode && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf(
		"%w (%s %d): %s",
		ErrNotifyFailed, url, resp.StatusCode, string(body),
	)
}

// Multi fans a report out to every notifier. Unlike a Web delivery, the
// fan-out never stops early: a local recorder placed after a broken webhook
// still gets its snapshot. Errors are joined.
type Multi []Notifier

var _ Notifier = Multi(nil)

func (m Multi) Notify(ctx context.Context, report *domain.ReleaseReport) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function into a Notifier. A nil Func discards reports.
type Func func(ctx context.Context, report *domain.ReleaseReport) error

var _ Notifier = Func(nil)

func (f Func) Notify(ctx context.Context, report *domain.ReleaseReport) error {
	if f == nil {
		return nil
	}
	if err := f(ctx, report); err != nil {
		return errors.Join(err, ErrNotifyFailed)
	}
	return nil
}

// None discards reports.
type None struct{}

var _ Notifier = None{}

func (None) Notify(ctx context.Context, report *domain.ReleaseReport) error {
	return nil
}
