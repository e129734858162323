package domain

// RolloutPhase is the coarse progress of a slot workload's rollout.
type RolloutPhase string

const (
	// The workload object does not exist yet, or its latest spec has not
	// been observed by the controller.
	RolloutPending RolloutPhase = "pending"

	// Replicas are being brought up or replaced.
	RolloutDeploying RolloutPhase = "deploying"

	// Every desired replica is updated and available.
	RolloutReady RolloutPhase = "ready"

	// The controller gave up (progress deadline exceeded).
	RolloutFailed RolloutPhase = "failed"

	// The rollout did not finish within the caller's wait budget.
	RolloutTimedOut RolloutPhase = "timed_out"
)

// Terminal reports whether polling can stop at this phase.
func (p RolloutPhase) Terminal() bool {
	switch p {
	case RolloutReady, RolloutFailed, RolloutTimedOut:
		return true
	}
	return false
}

// RolloutStatus is a point-in-time observation of a slot's rollout,
// polled from cluster state and never persisted.
type RolloutStatus struct {
	Slot             SlotName     `json:"slot"`
	Phase            RolloutPhase `json:"phase"`
	ObservedReplicas int32        `json:"observed_replicas"`
	DesiredReplicas  int32        `json:"desired_replicas"`
}
