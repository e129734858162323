// Package orchestrator drives the blue-green release state machine.
//
// A run walks resolve slots -> deploy -> await rollout -> validate ->
// switch traffic -> post-switch check -> cleanup, records one report phase
// per step and pushes a report snapshot down the notifier chain at every
// boundary. Traffic moves in exactly one place, the selector switch:
// everything before it can fail or be cancelled without user impact,
// everything after it either rolls back or degrades loudly.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slotswap/slotswap/pkg/cluster"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/metrics"
	"github.com/slotswap/slotswap/pkg/notify"
	"github.com/slotswap/slotswap/pkg/probe"
	"github.com/slotswap/slotswap/pkg/registry"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
)

// Params are the knobs of a release run, fixed at construction.
type Params struct {
	// RolloutTimeout bounds the wait for a slot rollout to settle.
	RolloutTimeout time.Duration

	// ProbeAttempts and ProbeInterval pace health validation, before and
	// after the switch.
	ProbeAttempts int
	ProbeInterval time.Duration

	// TargetReplicas is the size an idle slot is brought to when a
	// release lands on it.
	TargetReplicas int32

	// SlotEndpoint yields the slot-scoped health URL, probed before the
	// switch so validation never depends on the stable service.
	SlotEndpoint func(slot domain.SlotName) string

	// PublicEndpoint is the health URL behind the stable service, probed
	// after the switch.
	PublicEndpoint string
}

// Orchestrator runs releases and rollbacks against one environment.
//
// Methods are safe for sequential use; keeping runs from overlapping is the
// caller's job (the daemon does it with a Runner).
type Orchestrator struct {
	registry registry.Registry
	gateway  cluster.Gateway
	prober   probe.Prober
	notifier notify.Notifier
	params   Params
	logger   zerolog.Logger
}

// New builds an Orchestrator. A nil notifier discards reports.
func New(
	reg registry.Registry,
	gw cluster.Gateway,
	prober probe.Prober,
	notifier notify.Notifier,
	params Params,
	logger zerolog.Logger,
) *Orchestrator {
	if notifier == nil {
		notifier = notify.None{}
	}
	if params.ProbeAttempts < 1 {
		params.ProbeAttempts = 1
	}
	return &Orchestrator{
		registry: reg,
		gateway:  gw,
		prober:   prober,
		notifier: notifier,
		params:   params,
		logger:   logger,
	}
}

// Deploy runs one release of d under the given run id.
//
// The returned report is always non-nil and finalized. The error is nil on
// full success. relerr.ErrCleanupFailure marks a degraded success: traffic
// switched and is healthy, only teardown of the previous slot failed, and
// the report still says success. Every other error marks a failed or
// cancelled run.
//
// Cancellation is honored between steps and inside every wait; the run
// never stops halfway through the traffic switch itself.
func (o *Orchestrator) Deploy(ctx context.Context, id string, d domain.ReleaseDescriptor) (*domain.ReleaseReport, error) {
	r := o.start(id, d)
	r.logger.Info().
		Str("artifact", d.Artifact).
		Str("version", d.Version).
		Str("trigger", string(d.TriggeredBy)).
		Msg("release run started")

	// resolve slots
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseResolveSlots)
	}
	active, target, err := o.resolve(ctx)
	if err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseResolveSlots)
		}
		return r.fail(ctx, domain.PhaseResolveSlots, "slot records cannot be resolved", err)
	}
	r.pass(ctx, domain.PhaseResolveSlots, fmt.Sprintf(
		"active slot is %s; deploying to %s", active.Name, target.Name,
	))

	// deploy
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseDeploy)
	}
	if err := o.placeRelease(ctx, target, d); err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseDeploy)
		}
		return r.fail(ctx, domain.PhaseDeploy, fmt.Sprintf(
			"artifact %s cannot be placed on slot %s", d.Artifact, target.Name,
		), err)
	}
	r.pass(ctx, domain.PhaseDeploy, fmt.Sprintf(
		"artifact %s (%s) applied to slot %s", d.Artifact, d.Version, target.Name,
	))

	// await rollout
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseAwaitRollout)
	}
	status, err := o.gateway.WaitForRollout(ctx, target.Name, o.params.RolloutTimeout)
	if err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseAwaitRollout)
		}
		return r.fail(ctx, domain.PhaseAwaitRollout, fmt.Sprintf(
			"rollout of slot %s cannot be observed", target.Name,
		), relerr.NewRolloutTimeoutCausedBy(
			fmt.Sprintf("rollout of slot %s cannot be observed", target.Name), err,
		))
	}
	if status.Phase != domain.RolloutReady {
		detail := fmt.Sprintf(
			"rollout of slot %s %s (%d/%d replicas available, budget %v)",
			target.Name, describeRollout(status.Phase),
			status.ObservedReplicas, status.DesiredReplicas, o.params.RolloutTimeout,
		)
		return r.fail(ctx, domain.PhaseAwaitRollout, detail, relerr.NewRolloutTimeout(detail))
	}
	r.pass(ctx, domain.PhaseAwaitRollout, fmt.Sprintf(
		"slot %s rolled out (%d/%d replicas available)",
		target.Name, status.ObservedReplicas, status.DesiredReplicas,
	))

	// validate
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseValidate)
	}
	endpoint := o.params.SlotEndpoint(target.Name)
	if !o.prober.WaitHealthy(ctx, endpoint, o.params.ProbeAttempts, o.params.ProbeInterval) {
		if ctx.Err() != nil {
			return r.halt(ctx, domain.PhaseValidate)
		}
		detail := fmt.Sprintf(
			"slot %s never turned healthy at %s (%d attempts); traffic untouched",
			target.Name, endpoint, o.params.ProbeAttempts,
		)
		return r.fail(ctx, domain.PhaseValidate, detail, relerr.NewValidationFailed(detail))
	}
	r.pass(ctx, domain.PhaseValidate, fmt.Sprintf("slot %s healthy at %s", target.Name, endpoint))

	// switch traffic. The selector patch and the record write form one
	// logical transaction: once the patch lands, the run carries on even
	// if the record write fails, because traffic has already moved.
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseSwitchTraffic)
	}
	if err := o.gateway.PatchActiveSelector(ctx, target.Name); err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseSwitchTraffic)
		}
		detail := fmt.Sprintf("stable service cannot be pointed at slot %s; traffic untouched", target.Name)
		return r.fail(ctx, domain.PhaseSwitchTraffic, detail, relerr.NewApplyCausedBy(detail, err))
	}
	o.markActive(target.Name)
	if err := o.registry.SetActive(ctx, target.Name); err != nil {
		r.logger.Error().Err(err).
			Str("slot", string(target.Name)).
			Msg("traffic switched but the active-slot record was not written; repair the record by hand")
		r.report.Degraded = true
		r.pass(ctx, domain.PhaseSwitchTraffic, fmt.Sprintf(
			"traffic switched to %s, but the active-slot record was not written", target.Name,
		))
	} else {
		r.pass(ctx, domain.PhaseSwitchTraffic, fmt.Sprintf("traffic switched to %s", target.Name))
	}

	// post-switch check
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhasePostSwitchCheck)
	}
	if !o.prober.WaitHealthy(ctx, o.params.PublicEndpoint, o.params.ProbeAttempts, o.params.ProbeInterval) {
		if ctx.Err() != nil {
			return r.halt(ctx, domain.PhasePostSwitchCheck)
		}
		broke := fmt.Sprintf(
			"public endpoint %s failing after switch to slot %s (%d attempts)",
			o.params.PublicEndpoint, target.Name, o.params.ProbeAttempts,
		)
		return o.rollBack(ctx, r, active, target, broke, relerr.NewPostSwitchFailure(broke))
	}
	r.pass(ctx, domain.PhasePostSwitchCheck, fmt.Sprintf(
		"public endpoint %s healthy on slot %s", o.params.PublicEndpoint, target.Name,
	))

	// cleanup
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseCleanup)
	}
	if err := o.gateway.Scale(ctx, active.Name, 0); err != nil {
		cerr := relerr.NewCleanupFailureCausedBy(fmt.Sprintf(
			"previous slot %s cannot be scaled down", active.Name,
		), err)
		r.logger.Warn().Err(cerr).
			Str("slot", string(active.Name)).
			Msg("cleanup failed; the release stands, the previous slot is still running")
		r.report.Degraded = true
		r.record(ctx, domain.PhaseCleanup, domain.OutcomeFailure, fmt.Sprintf(
			"previous slot %s cannot be scaled down; release stands", active.Name,
		))
		return r.finish(ctx, domain.RunSuccess), cerr
	}
	r.pass(ctx, domain.PhaseCleanup, fmt.Sprintf("previous slot %s scaled to 0", active.Name))

	return r.finish(ctx, domain.RunSuccess), nil
}

// rollBack restores traffic to previous after cause broke the post-switch
// check. It never runs blind: a rollback target without ready replicas is
// worse than the situation at hand, so such a target fails the rollback
// instead of being switched to.
func (o *Orchestrator) rollBack(
	ctx context.Context,
	r *run,
	previous domain.EnvironmentSlot,
	current domain.EnvironmentSlot,
	broke string,
	cause error,
) (*domain.ReleaseReport, error) {
	r.logger.Error().Err(cause).
		Str("from", string(current.Name)).
		Str("to", string(previous.Name)).
		Msg("post-switch check failed; rolling traffic back")

	status, err := o.gateway.RolloutStatus(ctx, previous.Name)
	if err != nil || status.Phase != domain.RolloutReady || status.ObservedReplicas < 1 {
		metrics.RollbacksTotal.WithLabelValues("failed").Inc()
		detail := fmt.Sprintf(
			"%s; rollback refused: slot %s has no ready replicas to fall back to",
			broke, previous.Name,
		)
		return r.fail(ctx, domain.PhasePostSwitchCheck, detail, relerr.NewRollbackFailedCausedBy(detail, errors.Join(cause, err)))
	}

	if err := o.gateway.PatchActiveSelector(ctx, previous.Name); err != nil {
		metrics.RollbacksTotal.WithLabelValues("failed").Inc()
		detail := fmt.Sprintf(
			"%s; rollback failed: stable service cannot be pointed back at slot %s",
			broke, previous.Name,
		)
		return r.fail(ctx, domain.PhasePostSwitchCheck, detail, relerr.NewRollbackFailedCausedBy(detail, errors.Join(cause, err)))
	}
	o.markActive(previous.Name)
	if err := o.registry.SetActive(ctx, previous.Name); err != nil {
		r.logger.Error().Err(err).
			Str("slot", string(previous.Name)).
			Msg("traffic rolled back but the active-slot record was not written; repair the record by hand")
		r.report.Degraded = true
	}

	metrics.RollbacksTotal.WithLabelValues("succeeded").Inc()
	r.report.RolledBack = true
	return r.fail(ctx, domain.PhasePostSwitchCheck, fmt.Sprintf(
		"%s; traffic rolled back to slot %s", broke, previous.Name,
	), cause)
}

// Rollback switches traffic back to the inactive slot's release by hand.
//
// The target must already hold a release; an empty slot cannot be rolled
// back to. A target scaled to zero is brought back up first and validated
// like a fresh deployment before any traffic moves.
func (o *Orchestrator) Rollback(ctx context.Context, id string) (*domain.ReleaseReport, error) {
	r := o.start(id, domain.ReleaseDescriptor{TriggeredBy: domain.TriggerManual})
	r.logger.Info().Msg("manual rollback started")

	// resolve slots, and what the rollback would restore
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseResolveSlots)
	}
	active, target, err := o.resolve(ctx)
	if err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseResolveSlots)
		}
		return r.fail(ctx, domain.PhaseResolveSlots, "slot records cannot be resolved", err)
	}
	artifact, version, err := o.gateway.SlotRelease(ctx, target.Name)
	if err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseResolveSlots)
		}
		detail := fmt.Sprintf("the release on slot %s cannot be read", target.Name)
		return r.fail(ctx, domain.PhaseResolveSlots, detail, relerr.NewRollbackFailedCausedBy(detail, err))
	}
	if artifact == "" {
		detail := fmt.Sprintf("slot %s holds no release to roll back to", target.Name)
		return r.fail(ctx, domain.PhaseResolveSlots, detail, relerr.NewRollbackFailed(detail))
	}
	r.report.Descriptor = domain.ReleaseDescriptor{
		Artifact:    artifact,
		Version:     version,
		TriggeredBy: domain.TriggerManual,
	}
	r.pass(ctx, domain.PhaseResolveSlots, fmt.Sprintf(
		"rolling back from %s to %s (%s)", active.Name, target.Name, version,
	))

	// await rollout of the target, scaling it back up when parked at zero
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseAwaitRollout)
	}
	if target.ReplicaCount == 0 {
		if err := o.gateway.Scale(ctx, target.Name, o.params.TargetReplicas); err != nil {
			if interrupted(err) {
				return r.halt(ctx, domain.PhaseAwaitRollout)
			}
			detail := fmt.Sprintf("slot %s cannot be scaled back up", target.Name)
			return r.fail(ctx, domain.PhaseAwaitRollout, detail, relerr.NewRollbackFailedCausedBy(detail, err))
		}
	}
	status, err := o.gateway.WaitForRollout(ctx, target.Name, o.params.RolloutTimeout)
	if err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseAwaitRollout)
		}
		detail := fmt.Sprintf("rollout of slot %s cannot be observed", target.Name)
		return r.fail(ctx, domain.PhaseAwaitRollout, detail, relerr.NewRollbackFailedCausedBy(detail, err))
	}
	if status.Phase != domain.RolloutReady {
		detail := fmt.Sprintf(
			"rollout of slot %s %s (%d/%d replicas available); traffic untouched",
			target.Name, describeRollout(status.Phase),
			status.ObservedReplicas, status.DesiredReplicas,
		)
		return r.fail(ctx, domain.PhaseAwaitRollout, detail, relerr.NewRollbackFailed(detail))
	}
	r.pass(ctx, domain.PhaseAwaitRollout, fmt.Sprintf(
		"slot %s rolled out (%d/%d replicas available)",
		target.Name, status.ObservedReplicas, status.DesiredReplicas,
	))

	// validate
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseValidate)
	}
	endpoint := o.params.SlotEndpoint(target.Name)
	if !o.prober.WaitHealthy(ctx, endpoint, o.params.ProbeAttempts, o.params.ProbeInterval) {
		if ctx.Err() != nil {
			return r.halt(ctx, domain.PhaseValidate)
		}
		detail := fmt.Sprintf(
			"slot %s never turned healthy at %s; traffic untouched", target.Name, endpoint,
		)
		return r.fail(ctx, domain.PhaseValidate, detail, relerr.NewRollbackFailed(detail))
	}
	r.pass(ctx, domain.PhaseValidate, fmt.Sprintf("slot %s healthy at %s", target.Name, endpoint))

	// switch traffic
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseSwitchTraffic)
	}
	if err := o.gateway.PatchActiveSelector(ctx, target.Name); err != nil {
		if interrupted(err) {
			return r.halt(ctx, domain.PhaseSwitchTraffic)
		}
		detail := fmt.Sprintf("stable service cannot be pointed at slot %s; traffic untouched", target.Name)
		return r.fail(ctx, domain.PhaseSwitchTraffic, detail, relerr.NewRollbackFailedCausedBy(detail, err))
	}
	o.markActive(target.Name)
	if err := o.registry.SetActive(ctx, target.Name); err != nil {
		r.logger.Error().Err(err).
			Str("slot", string(target.Name)).
			Msg("traffic rolled back but the active-slot record was not written; repair the record by hand")
		r.report.Degraded = true
		r.pass(ctx, domain.PhaseSwitchTraffic, fmt.Sprintf(
			"traffic rolled back to %s, but the active-slot record was not written", target.Name,
		))
	} else {
		r.pass(ctx, domain.PhaseSwitchTraffic, fmt.Sprintf("traffic rolled back to %s", target.Name))
	}
	r.report.RolledBack = true

	// cleanup
	if ctx.Err() != nil {
		return r.halt(ctx, domain.PhaseCleanup)
	}
	if err := o.gateway.Scale(ctx, active.Name, 0); err != nil {
		cerr := relerr.NewCleanupFailureCausedBy(fmt.Sprintf(
			"previous slot %s cannot be scaled down", active.Name,
		), err)
		r.logger.Warn().Err(cerr).
			Str("slot", string(active.Name)).
			Msg("cleanup failed; the rollback stands, the previous slot is still running")
		r.report.Degraded = true
		r.record(ctx, domain.PhaseCleanup, domain.OutcomeFailure, fmt.Sprintf(
			"previous slot %s cannot be scaled down; rollback stands", active.Name,
		))
		return r.finish(ctx, domain.RunSuccess), cerr
	}
	r.pass(ctx, domain.PhaseCleanup, fmt.Sprintf("previous slot %s scaled to 0", active.Name))

	return r.finish(ctx, domain.RunSuccess), nil
}

// Status observes both slots and which one the stable service routes to.
func (o *Orchestrator) Status(ctx context.Context) (domain.EnvironmentStatus, error) {
	active, err := o.registry.GetActive(ctx)
	if err != nil {
		return domain.EnvironmentStatus{}, err
	}

	env := domain.EnvironmentStatus{ActiveSlot: active.Name}
	for _, s := range []domain.SlotName{domain.Blue, domain.Green} {
		rollout, err := o.gateway.RolloutStatus(ctx, s)
		if err != nil {
			return domain.EnvironmentStatus{}, err
		}
		artifact, version, err := o.gateway.SlotRelease(ctx, s)
		if err != nil {
			return domain.EnvironmentStatus{}, err
		}
		env.Slots = append(env.Slots, domain.SlotStatus{
			Name:             s,
			Active:           s == active.Name,
			Artifact:         artifact,
			Version:          version,
			Phase:            rollout.Phase,
			ObservedReplicas: rollout.ObservedReplicas,
			DesiredReplicas:  rollout.DesiredReplicas,
		})
	}
	return env, nil
}

// resolve reads both slot records and refuses to proceed on a corrupted
// pair. Guessing a deploy target risks deploying over live traffic, so no
// tie is ever broken here.
func (o *Orchestrator) resolve(ctx context.Context) (active, target domain.EnvironmentSlot, err error) {
	active, err = o.registry.GetActive(ctx)
	if err != nil {
		return domain.EnvironmentSlot{}, domain.EnvironmentSlot{}, err
	}
	target, err = o.registry.GetInactive(ctx)
	if err != nil {
		return domain.EnvironmentSlot{}, domain.EnvironmentSlot{}, err
	}
	if active.Name == target.Name || !target.Name.Known() {
		return domain.EnvironmentSlot{}, domain.EnvironmentSlot{}, relerr.NewStateUnavailable(fmt.Sprintf(
			"slot records are corrupted: active=%q and deploy target=%q; refusing to guess",
			active.Name, target.Name,
		))
	}
	return active, target, nil
}

// placeRelease lands d on the slot. A slot parked at zero replicas is
// brought back up first; a slot with no workload at all gets its replicas
// from the create, so a missing workload does not fail the pre-scale.
func (o *Orchestrator) placeRelease(ctx context.Context, slot domain.EnvironmentSlot, d domain.ReleaseDescriptor) error {
	if slot.ReplicaCount == 0 {
		if err := o.gateway.Scale(ctx, slot.Name, o.params.TargetReplicas); err != nil && !kubeerr.IsNotFound(err) {
			if interrupted(err) {
				return err
			}
			return relerr.NewApplyCausedBy(
				fmt.Sprintf("slot %s cannot be scaled up for the release", slot.Name), err,
			)
		}
	}
	return o.gateway.ApplyWorkload(ctx, slot.Name, d)
}

func (o *Orchestrator) markActive(slot domain.SlotName) {
	metrics.ActiveSlot.WithLabelValues(string(slot)).Set(1)
	metrics.ActiveSlot.WithLabelValues(string(slot.Complement())).Set(0)
}

// run carries the bookkeeping of one Deploy or Rollback walk.
type run struct {
	o      *Orchestrator
	report *domain.ReleaseReport
	logger zerolog.Logger
}

func (o *Orchestrator) start(id string, d domain.ReleaseDescriptor) *run {
	return &run{
		o:      o,
		report: domain.NewReleaseReport(id, d, time.Now()),
		logger: o.logger.With().Str("run", id).Logger(),
	}
}

// record appends a phase result and pushes a snapshot to the notifier.
// Notifier trouble is logged and never alters the run.
func (r *run) record(ctx context.Context, name domain.PhaseName, outcome domain.PhaseOutcome, detail string) {
	r.report.Append(name, outcome, detail, time.Now())
	r.logger.Info().
		Str("phase", string(name)).
		Str("outcome", string(outcome)).
		Msg(detail)
	r.push(ctx)
}

func (r *run) pass(ctx context.Context, name domain.PhaseName, detail string) {
	r.record(ctx, name, domain.OutcomeSuccess, detail)
}

// fail records the phase that broke, finalizes the run as failed and hands
// err back for the caller to return.
func (r *run) fail(ctx context.Context, name domain.PhaseName, detail string, err error) (*domain.ReleaseReport, error) {
	r.report.Append(name, domain.OutcomeFailure, detail, time.Now())
	r.logger.Error().Err(err).
		Str("phase", string(name)).
		Msg(detail)
	return r.finish(ctx, domain.RunFailure), err
}

// halt finalizes a cancelled run. The phase that would have run next is
// recorded as skipped so the report shows where the run stopped.
func (r *run) halt(ctx context.Context, name domain.PhaseName) (*domain.ReleaseReport, error) {
	r.report.Append(name, domain.OutcomeSkipped, "run cancelled", time.Now())
	r.logger.Warn().
		Str("phase", string(name)).
		Msg("run cancelled")
	return r.finish(ctx, domain.RunCancelled), relerr.ErrCancelled
}

// finish finalizes the report exactly once, counts the run into the metrics
// and pushes the completion snapshot.
func (r *run) finish(ctx context.Context, outcome domain.FinalOutcome) *domain.ReleaseReport {
	r.report.Finalize(outcome, time.Now())
	metrics.ReleasesTotal.WithLabelValues(string(outcome)).Inc()
	metrics.ReleaseDuration.Observe(r.report.FinishedAt.Sub(r.report.StartedAt).Seconds())
	if r.report.Degraded {
		metrics.DegradedReleasesTotal.Inc()
	}
	r.push(ctx)
	r.logger.Info().
		Str("outcome", string(outcome)).
		Bool("rolled_back", r.report.RolledBack).
		Bool("degraded", r.report.Degraded).
		Msg("run finished")
	return r.report
}

// push delivers a report snapshot. Cancellation of the run must not silence
// its own reporting, so delivery runs detached from ctx; the Web notifier
// carries its own timeout.
func (r *run) push(ctx context.Context) {
	if err := r.o.notifier.Notify(context.WithoutCancel(ctx), r.report.Clone()); err != nil {
		r.logger.Warn().Err(err).Msg("report delivery failed")
	}
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func describeRollout(phase domain.RolloutPhase) string {
	switch phase {
	case domain.RolloutFailed:
		return "gave up (progress deadline exceeded)"
	case domain.RolloutTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("is still %s", phase)
	}
}
