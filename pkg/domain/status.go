package domain

// SlotStatus is a point-in-time observation of one slot: whether the stable
// service routes to it, what is released on it and how its rollout looks.
type SlotStatus struct {
	Name   SlotName `json:"name"`
	Active bool     `json:"active"`

	// Artifact and Version are empty for a slot with no workload.
	Artifact string `json:"artifact_reference,omitempty"`
	Version  string `json:"version_label,omitempty"`

	Phase            RolloutPhase `json:"phase"`
	ObservedReplicas int32        `json:"observed_replicas"`
	DesiredReplicas  int32        `json:"desired_replicas"`
}

// EnvironmentStatus is the observation of the whole environment, one entry
// per slot in the fixed blue, green order.
type EnvironmentStatus struct {
	ActiveSlot SlotName     `json:"active_slot"`
	Slots      []SlotStatus `json:"slots"`
}
