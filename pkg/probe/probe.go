// Package probe performs the HTTP health checks gating a release: the
// pre-switch validation of a freshly rolled out slot and the post-switch
// check of the public endpoint.
package probe

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Prober checks health endpoints.
type Prober interface {
	// Check issues one GET against endpoint. True only when the response
	// arrives within the prober's timeout with exactly the expected status.
	Check(ctx context.Context, endpoint string) bool

	// WaitHealthy calls Check up to attempts times, spaced by interval.
	// The first attempt runs immediately. True on the first success,
	// false when every attempt failed or ctx ended the wait.
	WaitHealthy(ctx context.Context, endpoint string, attempts int, interval time.Duration) bool
}

// HTTPProber probes endpoints over HTTP.
//
// The zero value is not usable; build one with New. Client and Sleep may be
// swapped afterwards (tests use that to probe fakes without real delays).
type HTTPProber struct {
	Client         *http.Client
	ExpectedStatus int
	Timeout        time.Duration
	Sleep          func(ctx context.Context, d time.Duration) error
	Logger         zerolog.Logger
}

var _ Prober = &HTTPProber{}

// New builds an HTTPProber expecting exactly expectedStatus, giving each
// probe its own timeout.
func New(expectedStatus int, timeout time.Duration, logger zerolog.Logger) *HTTPProber {
	return &HTTPProber{
		Client:         &http.Client{},
		ExpectedStatus: expectedStatus,
		Timeout:        timeout,
		Sleep:          sleepContext,
		Logger:         logger,
	}
}

func (p *HTTPProber) Check(ctx context.Context, endpoint string) bool {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		p.Logger.Debug().Err(err).Str("endpoint", endpoint).Msg("probe request cannot be built")
		return false
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Logger.Debug().Err(err).Str("endpoint", endpoint).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != p.ExpectedStatus {
		p.Logger.Debug().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Int("expected", p.ExpectedStatus).
			Msg("probe got unexpected status")
		return false
	}
	return true
}

func (p *HTTPProber) WaitHealthy(ctx context.Context, endpoint string, attempts int, interval time.Duration) bool {
	for i := 0; i < attempts; i++ {
		if 0 < i {
			if err := p.Sleep(ctx, interval); err != nil {
				return false
			}
		}
		if p.Check(ctx, endpoint) {
			p.Logger.Debug().
				Str("endpoint", endpoint).
				Int("attempt", i+1).
				Msg("endpoint is healthy")
			return true
		}
	}

	p.Logger.Warn().
		Str("endpoint", endpoint).
		Int("attempts", attempts).
		Msg("endpoint never became healthy")
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
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
		return nil
	}
}
