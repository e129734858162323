package domain

import "time"

// PhaseName names one step of the release state machine in a report.
type PhaseName string

const (
	PhaseResolveSlots    PhaseName = "resolve_slots"
	PhaseDeploy          PhaseName = "deploy"
	PhaseAwaitRollout    PhaseName = "await_rollout"
	PhaseValidate        PhaseName = "validate"
	PhaseSwitchTraffic   PhaseName = "switch_traffic"
	PhasePostSwitchCheck PhaseName = "post_switch_check"
	PhaseCleanup         PhaseName = "cleanup"
)

type PhaseOutcome string

const (
	OutcomeSuccess PhaseOutcome = "success"
	OutcomeFailure PhaseOutcome = "failure"
	OutcomeSkipped PhaseOutcome = "skipped"
)

type FinalOutcome string

const (
	RunSuccess   FinalOutcome = "success"
	RunFailure   FinalOutcome = "failure"
	RunCancelled FinalOutcome = "cancelled"
)

// PhaseResult is one completed step of a run.
type PhaseResult struct {
	Name      PhaseName    `json:"name"`
	Outcome   PhaseOutcome `json:"outcome"`
	Detail    string       `json:"detail,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// ReleaseReport aggregates the step outcomes of one orchestration run.
//
// It is created at run start, appended to at each phase boundary, finalized
// once, then handed to notifiers. It is run-scoped: nothing persists it.
type ReleaseReport struct {
	ID         string            `json:"id"`
	Descriptor ReleaseDescriptor `json:"descriptor"`
	Phases     []PhaseResult     `json:"phases"`

	FinalOutcome FinalOutcome `json:"final_outcome,omitempty"`

	// RolledBack marks a post-switch failure whose automatic rollback
	// restored the previous slot. False with FinalOutcome=failure after
	// the switch means manual intervention is required.
	RolledBack bool `json:"rolled_back"`

	// Degraded marks a successful release that left residue behind: the
	// previous slot is still scaled up, or the active-slot record could
	// not be written after traffic moved.
	Degraded bool `json:"degraded"`

	StartedAt time.Time `json:"started_at"`

	// FinishedAt stays zero until the run is finalized.
	FinishedAt time.Time `json:"finished_at"`
}

func NewReleaseReport(id string, d ReleaseDescriptor, startedAt time.Time) *ReleaseReport {
	return &ReleaseReport{
		ID:         id,
		Descriptor: d,
		Phases:     []PhaseResult{},
		StartedAt:  startedAt,
	}
}

// Append records the outcome of one phase. Phases keep insertion order.
func (r *ReleaseReport) Append(name PhaseName, outcome PhaseOutcome, detail string, at time.Time) {
	r.Phases = append(r.Phases, PhaseResult{
		Name:      name,
		Outcome:   outcome,
		Detail:    detail,
		Timestamp: at,
	})
}

// Finalize stamps the run outcome. Later calls win, so a failure discovered
// during teardown can overwrite an optimistic outcome.
func (r *ReleaseReport) Finalize(outcome FinalOutcome, at time.Time) {
	r.FinalOutcome = outcome
	r.FinishedAt = at
}

// Finalized reports whether Finalize has been called.
func (r *ReleaseReport) Finalized() bool {
	return r.FinalOutcome != ""
}

// Phase returns the latest result recorded under name.
func (r *ReleaseReport) Phase(name PhaseName) (PhaseResult, bool) {
	for i := len(r.Phases) - 1; 0 <= i; i-- {
		if r.Phases[i].Name == name {
			return r.Phases[i], true
		}
	}
	return PhaseResult{}, false
}

// Clone returns a deep copy, so snapshots handed to notifiers or API
// responses never race with the running orchestrator.
func (r *ReleaseReport) Clone() *ReleaseReport {
	c := *r
	c.Phases = make([]PhaseResult, len(r.Phases))
	copy(c.Phases, r.Phases)
	return &c
}
