package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/notify"
	"github.com/slotswap/slotswap/pkg/utils/retry"
)

// ErrReleaseInFlight rejects a release while another one is still running.
// One environment takes one run at a time; queueing would deploy stale
// artifacts long after their trigger.
var ErrReleaseInFlight = errors.New("another release is in flight")

// DeployFunc runs one release under the given run id.
type DeployFunc func(ctx context.Context, id string, d domain.ReleaseDescriptor) (*domain.ReleaseReport, error)

// Runner runs releases in the background, one at a time, and keeps their
// reports for the API to read back.
//
// It is a notify.Notifier: chained in front of the configured notifiers it
// receives the orchestrator's phase-boundary snapshots, so readers see runs
// progress phase by phase, not only start and end.
type Runner struct {
	// Deploy performs the run. Wired after construction because the
	// orchestrator's notifier chain contains the Runner itself.
	Deploy DeployFunc

	lifetime context.Context
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight bool
	runs     map[string]*domain.ReleaseReport
	order    []string
}

var _ notify.Notifier = &Runner{}

// NewRunner builds a Runner whose background runs live and die with
// lifetime, not with the HTTP requests that submit them.
func NewRunner(lifetime context.Context, logger zerolog.Logger) *Runner {
	return &Runner{
		lifetime: lifetime,
		logger:   logger,
		runs:     map[string]*domain.ReleaseReport{},
	}
}

// Submit starts a release run in the background and returns its id.
//
// # Returns
//
// - string: the run id, readable via Get before the run finishes.
//
// - error: ErrReleaseInFlight while another run is going on.
func (r *Runner) Submit(d domain.ReleaseDescriptor) (string, error) {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return "", ErrReleaseInFlight
	}
	r.inFlight = true
	id := uuid.NewString()
	r.remember(domain.NewReleaseReport(id, d, time.Now()))
	r.mu.Unlock()

	promise := retry.Go(r.lifetime, retry.StaticBackoff(0), func() (*domain.ReleaseReport, error) {
		return r.Deploy(r.lifetime, id, d)
	})
	go func() {
		result := <-promise

		r.mu.Lock()
		if result.Value != nil {
			r.remember(result.Value)
		}
		r.inFlight = false
		r.mu.Unlock()

		if result.Err != nil {
			r.logger.Error().Err(result.Err).Str("run", id).Msg("release run did not succeed")
		}
	}()

	return id, nil
}

// Notify stores a report snapshot. Part of the notify.Notifier chain.
func (r *Runner) Notify(_ context.Context, report *domain.ReleaseReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remember(report.Clone())
	return nil
}

// Get returns a snapshot of the run named by id.
func (r *Runner) Get(id string) (*domain.ReleaseReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.runs[id]
	if !ok {
		return nil, false
	}
	return report.Clone(), true
}

// List returns snapshots of all known runs, newest first.
func (r *Runner) List() []*domain.ReleaseReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	reports := make([]*domain.ReleaseReport, 0, len(r.order))
	for i := len(r.order) - 1; 0 <= i; i-- {
		reports = append(reports, r.runs[r.order[i]].Clone())
	}
	return reports
}

// InFlight reports whether a run is going on right now.
func (r *Runner) InFlight() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight
}

// remember stores a report, keeping first-seen order. Callers hold r.mu.
func (r *Runner) remember(report *domain.ReleaseReport) {
	if _, known := r.runs[report.ID]; !known {
		r.order = append(r.order, report.ID)
	}
	r.runs[report.ID] = report
}
