package orchestrator_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	kubemock "github.com/slotswap/slotswap/pkg/cluster/mock"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/notify"
	"github.com/slotswap/slotswap/pkg/orchestrator"
	probemock "github.com/slotswap/slotswap/pkg/probe/mock"
	regmock "github.com/slotswap/slotswap/pkg/registry/mock"
	"github.com/slotswap/slotswap/pkg/utils/cmp"
)

const (
	publicEndpoint = "https://myapp.example.com/health"
)

func slotEndpoint(slot domain.SlotName) string {
	return fmt.Sprintf("http://myapp-%s.test.svc/health", slot)
}

func params() orchestrator.Params {
	return orchestrator.Params{
		RolloutTimeout: 30 * time.Second,
		ProbeAttempts:  3,
		ProbeInterval:  time.Millisecond,
		TargetReplicas: 2,
		SlotEndpoint:   slotEndpoint,
		PublicEndpoint: publicEndpoint,
	}
}

func descriptor(t *testing.T) domain.ReleaseDescriptor {
	t.Helper()
	d, err := domain.NewReleaseDescriptor(
		"registry.example.com/myapp:1.3.0", "1.3.0", domain.TriggerBranchPush,
	)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

// environment wires mocks for one happy-path run: blue active with 2
// replicas, green idle at 0. Tests break single members to steer the run
// into their scenario.
type environment struct {
	registry *regmock.MockRegistry
	gateway  *kubemock.MockGateway
	prober   *probemock.MockProber
}

func healthyEnvironment() *environment {
	reg := regmock.NewMockRegistry()
	reg.Impl.GetActive = func(context.Context) (domain.EnvironmentSlot, error) {
		active := domain.SlotOf("myapp", domain.Blue)
		active.ReplicaCount = 2
		return active, nil
	}
	reg.Impl.GetInactive = func(context.Context) (domain.EnvironmentSlot, error) {
		target := domain.SlotOf("myapp", domain.Green)
		target.ReplicaCount = 2
		return target, nil
	}
	reg.Impl.SetActive = func(context.Context, domain.SlotName) error { return nil }

	gw := kubemock.NewMockGateway()
	gw.Impl.ApplyWorkload = func(context.Context, domain.SlotName, domain.ReleaseDescriptor) error {
		return nil
	}
	gw.Impl.WaitForRollout = func(_ context.Context, slot domain.SlotName, _ time.Duration) (domain.RolloutStatus, error) {
		return domain.RolloutStatus{
			Slot: slot, Phase: domain.RolloutReady,
			ObservedReplicas: 2, DesiredReplicas: 2,
		}, nil
	}
	gw.Impl.RolloutStatus = func(_ context.Context, slot domain.SlotName) (domain.RolloutStatus, error) {
		return domain.RolloutStatus{
			Slot: slot, Phase: domain.RolloutReady,
			ObservedReplicas: 2, DesiredReplicas: 2,
		}, nil
	}
	gw.Impl.Scale = func(context.Context, domain.SlotName, int32) error { return nil }
	gw.Impl.PatchActiveSelector = func(context.Context, domain.SlotName) error { return nil }

	prober := probemock.NewMockProber()
	prober.Impl.WaitHealthy = func(context.Context, string, int, time.Duration) bool { return true }

	return &environment{registry: reg, gateway: gw, prober: prober}
}

func (env *environment) orchestrator(notifier notify.Notifier) *orchestrator.Orchestrator {
	return orchestrator.New(
		env.registry, env.gateway, env.prober, notifier, params(), zerolog.Nop(),
	)
}

func phaseOutcomes(report *domain.ReleaseReport) map[domain.PhaseName]domain.PhaseOutcome {
	outcomes := map[domain.PhaseName]domain.PhaseOutcome{}
	for _, p := range report.Phases {
		outcomes[p.Name] = p.Outcome
	}
	return outcomes
}

func TestDeploy_CleanRelease(t *testing.T) {
	env := healthyEnvironment()

	var switchedTo []domain.SlotName
	env.gateway.Impl.PatchActiveSelector = func(_ context.Context, slot domain.SlotName) error {
		switchedTo = append(switchedTo, slot)
		return nil
	}
	var recorded []domain.SlotName
	env.registry.Impl.SetActive = func(_ context.Context, slot domain.SlotName) error {
		recorded = append(recorded, slot)
		return nil
	}
	var scaled []string
	env.gateway.Impl.Scale = func(_ context.Context, slot domain.SlotName, replicas int32) error {
		scaled = append(scaled, fmt.Sprintf("%s=%d", slot, replicas))
		return nil
	}
	var probed []string
	env.prober.Impl.WaitHealthy = func(_ context.Context, endpoint string, _ int, _ time.Duration) bool {
		probed = append(probed, endpoint)
		return true
	}

	var snapshots []*domain.ReleaseReport
	notifier := notify.Func(func(_ context.Context, report *domain.ReleaseReport) error {
		snapshots = append(snapshots, report)
		return nil
	})

	report, err := env.orchestrator(notifier).Deploy(context.Background(), "run-a", descriptor(t))
	if err != nil {
		t.Fatalf("clean release should not error: %+v", err)
	}

	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunSuccess)
	}
	if report.RolledBack || report.Degraded {
		t.Errorf(
			"clean release should be neither rolled back nor degraded: (rolled_back, degraded) = (%v, %v)",
			report.RolledBack, report.Degraded,
		)
	}

	outcomes := phaseOutcomes(report)
	for _, phase := range []domain.PhaseName{
		domain.PhaseResolveSlots, domain.PhaseDeploy, domain.PhaseAwaitRollout,
		domain.PhaseValidate, domain.PhaseSwitchTraffic, domain.PhasePostSwitchCheck,
		domain.PhaseCleanup,
	} {
		if outcomes[phase] != domain.OutcomeSuccess {
			t.Errorf("phase %s: (actual, expected) = (%s, %s)", phase, outcomes[phase], domain.OutcomeSuccess)
		}
	}

	if len(switchedTo) != 1 || switchedTo[0] != domain.Green {
		t.Errorf("selector should be patched once, to green: %v", switchedTo)
	}
	if len(recorded) != 1 || recorded[0] != domain.Green {
		t.Errorf("active-slot record should be written once, to green: %v", recorded)
	}
	if len(scaled) != 1 || scaled[0] != "blue=0" {
		t.Errorf("only the previous slot should be scaled, to zero: %v", scaled)
	}
	if len(probed) != 2 || probed[0] != slotEndpoint(domain.Green) || probed[1] != publicEndpoint {
		t.Errorf(
			"probes should hit the slot endpoint then the public one: (actual, expected) = (%v, %v)",
			probed, []string{slotEndpoint(domain.Green), publicEndpoint},
		)
	}

	if len(snapshots) != len(report.Phases)+1 {
		t.Errorf(
			"one snapshot per phase plus completion: (actual, expected) = (%d, %d)",
			len(snapshots), len(report.Phases)+1,
		)
	}
	last := snapshots[len(snapshots)-1]
	if !last.Finalized() || last.FinalOutcome != domain.RunSuccess {
		t.Errorf("the completion snapshot should be finalized as success: %+v", last)
	}
}

func TestDeploy_ScalesUpIdleTarget(t *testing.T) {
	env := healthyEnvironment()
	env.registry.Impl.GetInactive = func(context.Context) (domain.EnvironmentSlot, error) {
		return domain.SlotOf("myapp", domain.Green), nil // parked at 0 replicas
	}

	var scaled []string
	env.gateway.Impl.Scale = func(_ context.Context, slot domain.SlotName, replicas int32) error {
		scaled = append(scaled, fmt.Sprintf("%s=%d", slot, replicas))
		return nil
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-scaleup", descriptor(t))
	if err != nil {
		t.Fatalf("release onto an idle slot should not error: %+v", err)
	}
	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunSuccess)
	}

	expected := []string{"green=2", "blue=0"}
	if !cmp.SliceEq(scaled, expected) {
		t.Errorf(
			"the idle target should be scaled up before the release lands: (actual, expected) = (%v, %v)",
			scaled, expected,
		)
	}
}

func TestDeploy_RolloutNeverSettles(t *testing.T) {
	for name, testcase := range map[string]struct {
		phase domain.RolloutPhase
	}{
		"when the rollout times out":  {phase: domain.RolloutTimedOut},
		"when the controller gave up": {phase: domain.RolloutFailed},
	} {
		t.Run(name, func(t *testing.T) {
			env := healthyEnvironment()
			env.gateway.Impl.WaitForRollout = func(_ context.Context, slot domain.SlotName, _ time.Duration) (domain.RolloutStatus, error) {
				return domain.RolloutStatus{
					Slot: slot, Phase: testcase.phase,
					ObservedReplicas: 1, DesiredReplicas: 2,
				}, nil
			}

			report, err := env.orchestrator(nil).Deploy(context.Background(), "run-b", descriptor(t))
			if !relerr.AsRolloutTimeout(err) {
				t.Errorf("error should be a rollout timeout: %+v", err)
			}
			if report.FinalOutcome != domain.RunFailure {
				t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
			}
			if outcome := phaseOutcomes(report)[domain.PhaseAwaitRollout]; outcome != domain.OutcomeFailure {
				t.Errorf("await_rollout outcome: (actual, expected) = (%s, %s)", outcome, domain.OutcomeFailure)
			}
			if report.RolledBack {
				t.Error("nothing switched, so nothing should be rolled back")
			}
			if env.gateway.Called.PatchActiveSelector != 0 {
				t.Error("traffic should be untouched when the rollout never settles")
			}
			if env.registry.Called.SetActive != 0 {
				t.Error("the active-slot record should be untouched when the rollout never settles")
			}
		})
	}
}

func TestDeploy_ValidationFails(t *testing.T) {
	env := healthyEnvironment()
	env.prober.Impl.WaitHealthy = func(_ context.Context, endpoint string, _ int, _ time.Duration) bool {
		return endpoint != slotEndpoint(domain.Green)
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-b2", descriptor(t))
	if !relerr.AsValidationFailed(err) {
		t.Errorf("error should be a validation failure: %+v", err)
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
	if env.gateway.Called.PatchActiveSelector != 0 {
		t.Error("traffic should be untouched when validation fails")
	}
	if env.gateway.Called.Scale != 0 {
		t.Error("the active slot should keep its replicas when validation fails")
	}
}

func TestDeploy_PostSwitchFailureRollsBack(t *testing.T) {
	env := healthyEnvironment()
	env.prober.Impl.WaitHealthy = func(_ context.Context, endpoint string, _ int, _ time.Duration) bool {
		return endpoint != publicEndpoint
	}
	var switchedTo []domain.SlotName
	env.gateway.Impl.PatchActiveSelector = func(_ context.Context, slot domain.SlotName) error {
		switchedTo = append(switchedTo, slot)
		return nil
	}
	var recorded []domain.SlotName
	env.registry.Impl.SetActive = func(_ context.Context, slot domain.SlotName) error {
		recorded = append(recorded, slot)
		return nil
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-c", descriptor(t))
	if !relerr.AsPostSwitchFailure(err) {
		t.Errorf("error should be a post-switch failure: %+v", err)
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
	if !report.RolledBack {
		t.Error("a successful automatic rollback should be flagged on the report")
	}

	expected := []domain.SlotName{domain.Green, domain.Blue}
	if !cmp.SliceEq(switchedTo, expected) {
		t.Errorf("selector patches: (actual, expected) = (%v, %v)", switchedTo, expected)
	}
	if len(recorded) != 2 || recorded[1] != domain.Blue {
		t.Errorf("the active-slot record should end back on blue: %v", recorded)
	}
	if env.gateway.Called.Scale != 0 {
		t.Error("no slot should be scaled down after a rollback")
	}

	result, ok := report.Phase(domain.PhasePostSwitchCheck)
	if !ok || result.Outcome != domain.OutcomeFailure {
		t.Errorf("post_switch_check should be recorded as failed: %+v", result)
	}
	if !strings.Contains(result.Detail, "rolled back") {
		t.Errorf("the phase detail should say traffic rolled back: %q", result.Detail)
	}
}

func TestDeploy_RollbackPatchFails(t *testing.T) {
	env := healthyEnvironment()
	env.prober.Impl.WaitHealthy = func(_ context.Context, endpoint string, _ int, _ time.Duration) bool {
		return endpoint != publicEndpoint
	}
	env.gateway.Impl.PatchActiveSelector = func(_ context.Context, slot domain.SlotName) error {
		if slot == domain.Blue {
			return errors.New("fake admission refusal")
		}
		return nil
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-d", descriptor(t))
	if !relerr.AsRollbackFailed(err) {
		t.Errorf("error should be a rollback failure: %+v", err)
	}
	if report.RolledBack {
		t.Error("a failed rollback must not be flagged as rolled back")
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
}

func TestDeploy_RollbackRefusedWhenTargetIsDead(t *testing.T) {
	env := healthyEnvironment()
	env.prober.Impl.WaitHealthy = func(_ context.Context, endpoint string, _ int, _ time.Duration) bool {
		return endpoint != publicEndpoint
	}
	env.gateway.Impl.RolloutStatus = func(_ context.Context, slot domain.SlotName) (domain.RolloutStatus, error) {
		// the previous slot was lost while the run was going on
		return domain.RolloutStatus{Slot: slot, Phase: domain.RolloutDeploying, ObservedReplicas: 0, DesiredReplicas: 2}, nil
	}
	var switchedTo []domain.SlotName
	env.gateway.Impl.PatchActiveSelector = func(_ context.Context, slot domain.SlotName) error {
		switchedTo = append(switchedTo, slot)
		return nil
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-d2", descriptor(t))
	if !relerr.AsRollbackFailed(err) {
		t.Errorf("error should be a rollback failure: %+v", err)
	}
	if report.RolledBack {
		t.Error("a refused rollback must not be flagged as rolled back")
	}
	if len(switchedTo) != 1 || switchedTo[0] != domain.Green {
		t.Errorf("traffic must never be switched to a dead slot: %v", switchedTo)
	}

	result, _ := report.Phase(domain.PhasePostSwitchCheck)
	if !strings.Contains(result.Detail, "no ready replicas") {
		t.Errorf("the phase detail should name the dead rollback target: %q", result.Detail)
	}
}

func TestDeploy_CleanupFailureDegradesSuccess(t *testing.T) {
	env := healthyEnvironment()
	env.gateway.Impl.Scale = func(_ context.Context, slot domain.SlotName, _ int32) error {
		return errors.New("fake throttling")
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-e", descriptor(t))
	if !relerr.AsCleanupFailure(err) {
		t.Errorf("error should be a cleanup failure: %+v", err)
	}
	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("a cleanup failure keeps the release a success: (actual, expected) = (%s, %s)",
			report.FinalOutcome, domain.RunSuccess)
	}
	if !report.Degraded {
		t.Error("a cleanup failure should flag the release degraded")
	}
	if report.RolledBack {
		t.Error("a cleanup failure should not roll anything back")
	}
	if outcome := phaseOutcomes(report)[domain.PhaseCleanup]; outcome != domain.OutcomeFailure {
		t.Errorf("cleanup outcome: (actual, expected) = (%s, %s)", outcome, domain.OutcomeFailure)
	}
}

func TestDeploy_RecordWriteFailureDegradesButSwitchStands(t *testing.T) {
	env := healthyEnvironment()
	env.registry.Impl.SetActive = func(context.Context, domain.SlotName) error {
		return relerr.NewStateConflict("fake lost update")
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-record", descriptor(t))
	if err != nil {
		t.Fatalf("the switch stands even when the record write fails: %+v", err)
	}
	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunSuccess)
	}
	if !report.Degraded {
		t.Error("an unwritten active-slot record should flag the release degraded")
	}

	result, _ := report.Phase(domain.PhaseSwitchTraffic)
	if result.Outcome != domain.OutcomeSuccess {
		t.Errorf("switch_traffic outcome: (actual, expected) = (%s, %s)", result.Outcome, domain.OutcomeSuccess)
	}
	if !strings.Contains(result.Detail, "record") {
		t.Errorf("the phase detail should mention the unwritten record: %q", result.Detail)
	}
	if env.prober.Called.WaitHealthy != 2 {
		t.Error("the post-switch check should still run after a record write failure")
	}
}

func TestDeploy_CorruptedSlotRecords(t *testing.T) {
	env := healthyEnvironment()
	env.registry.Impl.GetInactive = func(context.Context) (domain.EnvironmentSlot, error) {
		active := domain.SlotOf("myapp", domain.Blue) // same as the active slot
		active.ReplicaCount = 2
		return active, nil
	}

	report, err := env.orchestrator(nil).Deploy(context.Background(), "run-corrupt", descriptor(t))
	if !relerr.AsStateUnavailable(err) {
		t.Errorf("error should be a state-unavailable: %+v", err)
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
	if env.gateway.Called.ApplyWorkload != 0 || env.gateway.Called.PatchActiveSelector != 0 {
		t.Error("nothing should be deployed over a corrupted slot pair")
	}
}

func TestDeploy_CancelledBeforeAnythingRan(t *testing.T) {
	env := healthyEnvironment()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := env.orchestrator(nil).Deploy(ctx, "run-cancel-0", descriptor(t))
	if !errors.Is(err, relerr.ErrCancelled) {
		t.Errorf("error should be the cancellation: %+v", err)
	}
	if report.FinalOutcome != domain.RunCancelled {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunCancelled)
	}
	if env.registry.Called.GetActive != 0 {
		t.Error("a run cancelled up front should not touch the cluster")
	}
}

func TestDeploy_CancelledDuringValidation(t *testing.T) {
	env := healthyEnvironment()
	ctx, cancel := context.WithCancel(context.Background())
	env.prober.Impl.WaitHealthy = func(context.Context, string, int, time.Duration) bool {
		cancel() // the daemon is shutting down mid-probe
		return false
	}

	report, err := env.orchestrator(nil).Deploy(ctx, "run-cancel-v", descriptor(t))
	if !errors.Is(err, relerr.ErrCancelled) {
		t.Errorf("error should be the cancellation: %+v", err)
	}
	if report.FinalOutcome != domain.RunCancelled {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunCancelled)
	}
	if env.gateway.Called.PatchActiveSelector != 0 {
		t.Error("a run cancelled before the switch must leave traffic untouched")
	}

	result, ok := report.Phase(domain.PhaseValidate)
	if !ok || result.Outcome != domain.OutcomeSkipped {
		t.Errorf("the interrupted phase should be recorded as skipped: %+v", result)
	}
}

func TestRollback_RestoresThePreviousRelease(t *testing.T) {
	env := healthyEnvironment()
	env.registry.Impl.GetInactive = func(context.Context) (domain.EnvironmentSlot, error) {
		return domain.SlotOf("myapp", domain.Green), nil // parked at 0 replicas
	}
	env.gateway.Impl.SlotRelease = func(_ context.Context, slot domain.SlotName) (string, string, error) {
		return "registry.example.com/myapp:1.2.9", "1.2.9", nil
	}
	var scaled []string
	env.gateway.Impl.Scale = func(_ context.Context, slot domain.SlotName, replicas int32) error {
		scaled = append(scaled, fmt.Sprintf("%s=%d", slot, replicas))
		return nil
	}
	var switchedTo []domain.SlotName
	env.gateway.Impl.PatchActiveSelector = func(_ context.Context, slot domain.SlotName) error {
		switchedTo = append(switchedTo, slot)
		return nil
	}

	report, err := env.orchestrator(nil).Rollback(context.Background(), "rollback-1")
	if err != nil {
		t.Fatalf("rollback to a live release should not error: %+v", err)
	}

	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunSuccess)
	}
	if !report.RolledBack {
		t.Error("a manual rollback should be flagged rolled back")
	}
	if report.Descriptor.Version != "1.2.9" || report.Descriptor.TriggeredBy != domain.TriggerManual {
		t.Errorf("the report should describe the restored release: %+v", report.Descriptor)
	}

	expectedScales := []string{"green=2", "blue=0"}
	if len(scaled) != 2 || scaled[0] != expectedScales[0] || scaled[1] != expectedScales[1] {
		t.Errorf("scales: (actual, expected) = (%v, %v)", scaled, expectedScales)
	}
	if len(switchedTo) != 1 || switchedTo[0] != domain.Green {
		t.Errorf("the selector should be patched once, to green: %v", switchedTo)
	}
}

func TestRollback_RefusesAnEmptySlot(t *testing.T) {
	env := healthyEnvironment()
	env.gateway.Impl.SlotRelease = func(context.Context, domain.SlotName) (string, string, error) {
		return "", "", nil // nothing was ever released there
	}

	report, err := env.orchestrator(nil).Rollback(context.Background(), "rollback-empty")
	if !relerr.AsRollbackFailed(err) {
		t.Errorf("error should be a rollback failure: %+v", err)
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
	if env.gateway.Called.PatchActiveSelector != 0 {
		t.Error("traffic should be untouched when there is nothing to roll back to")
	}
}

func TestRollback_TargetNeverTurnsHealthy(t *testing.T) {
	env := healthyEnvironment()
	env.gateway.Impl.SlotRelease = func(context.Context, domain.SlotName) (string, string, error) {
		return "registry.example.com/myapp:1.2.9", "1.2.9", nil
	}
	env.prober.Impl.WaitHealthy = func(context.Context, string, int, time.Duration) bool {
		return false
	}

	report, err := env.orchestrator(nil).Rollback(context.Background(), "rollback-sick")
	if !relerr.AsRollbackFailed(err) {
		t.Errorf("error should be a rollback failure: %+v", err)
	}
	if report.FinalOutcome != domain.RunFailure {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunFailure)
	}
	if env.gateway.Called.PatchActiveSelector != 0 {
		t.Error("traffic should be untouched when the rollback target is sick")
	}
}

func TestStatus_ObservesBothSlots(t *testing.T) {
	env := healthyEnvironment()
	env.gateway.Impl.RolloutStatus = func(_ context.Context, slot domain.SlotName) (domain.RolloutStatus, error) {
		if slot == domain.Blue {
			return domain.RolloutStatus{Slot: slot, Phase: domain.RolloutReady, ObservedReplicas: 2, DesiredReplicas: 2}, nil
		}
		return domain.RolloutStatus{Slot: slot, Phase: domain.RolloutPending}, nil
	}
	env.gateway.Impl.SlotRelease = func(_ context.Context, slot domain.SlotName) (string, string, error) {
		if slot == domain.Blue {
			return "registry.example.com/myapp:1.2.9", "1.2.9", nil
		}
		return "", "", nil
	}

	status, err := env.orchestrator(nil).Status(context.Background())
	if err != nil {
		t.Fatalf("status of a readable environment should not error: %+v", err)
	}

	if status.ActiveSlot != domain.Blue {
		t.Errorf("active slot: (actual, expected) = (%s, %s)", status.ActiveSlot, domain.Blue)
	}
	if len(status.Slots) != 2 {
		t.Fatalf("both slots should be reported: %+v", status.Slots)
	}
	blue, green := status.Slots[0], status.Slots[1]
	if blue.Name != domain.Blue || !blue.Active || blue.Version != "1.2.9" {
		t.Errorf("unexpected blue observation: %+v", blue)
	}
	if green.Name != domain.Green || green.Active || green.Artifact != "" {
		t.Errorf("unexpected green observation: %+v", green)
	}
}

func TestStatus_PropagatesUnreadableRecords(t *testing.T) {
	env := healthyEnvironment()
	env.registry.Impl.GetActive = func(context.Context) (domain.EnvironmentSlot, error) {
		return domain.EnvironmentSlot{}, relerr.NewStateUnavailable("fake missing record")
	}

	if _, err := env.orchestrator(nil).Status(context.Background()); !relerr.AsStateUnavailable(err) {
		t.Errorf("error should be a state-unavailable: %+v", err)
	}
}

func TestDeploy_NotifierTroubleNeverBreaksTheRun(t *testing.T) {
	env := healthyEnvironment()
	notifier := notify.Func(func(context.Context, *domain.ReleaseReport) error {
		return errors.New("fake webhook outage")
	})

	report, err := env.orchestrator(notifier).Deploy(context.Background(), "run-mute", descriptor(t))
	if err != nil {
		t.Fatalf("notifier trouble must not alter the run: %+v", err)
	}
	if report.FinalOutcome != domain.RunSuccess {
		t.Errorf("final outcome: (actual, expected) = (%s, %s)", report.FinalOutcome, domain.RunSuccess)
	}
}
