// Package domain holds the data model of a blue-green release:
// slots, release descriptors, rollout status and the release report.
//
// Everything here is plain data. Cluster access lives in pkg/cluster and
// pkg/registry; the state machine in pkg/orchestrator.
package domain

import (
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"k8s.io/apimachinery/pkg/util/validation"
)

// SlotName identifies one of the two long-lived deployment environments.
type SlotName string

const (
	Blue  SlotName = "blue"
	Green SlotName = "green"
)

// Complement returns the other slot. Complement of anything unknown is
// empty, so corrupted state never silently resolves to a deployable slot.
func (s SlotName) Complement() SlotName {
	switch s {
	case Blue:
		return Green
	case Green:
		return Blue
	}
	return ""
}

func (s SlotName) Known() bool {
	return s == Blue || s == Green
}

func ParseSlotName(v string) (SlotName, error) {
	s := SlotName(v)
	if !s.Known() {
		return "", fmt.Errorf("unknown slot name %q (want %q or %q)", v, Blue, Green)
	}
	return s, nil
}

// Trigger tells what kind of event started a release.
type Trigger string

const (
	TriggerBranchPush Trigger = "branch_push"
	TriggerTag        Trigger = "tag"
	TriggerManual     Trigger = "manual"
)

func ParseTrigger(v string) (Trigger, error) {
	switch t := Trigger(v); t {
	case TriggerBranchPush, TriggerTag, TriggerManual:
		return t, nil
	}
	return "", fmt.Errorf(
		"unknown trigger %q (want %q, %q or %q)",
		v, TriggerBranchPush, TriggerTag, TriggerManual,
	)
}

// ReleaseDescriptor is the immutable input of one orchestration run.
type ReleaseDescriptor struct {
	// Artifact is the image reference to deploy, tag or digest form.
	Artifact string `json:"artifact_reference"`

	// Version is a human-oriented label for this release. It is stamped
	// onto the slot workload as a label, so it must be a valid label value.
	Version string `json:"version_label"`

	TriggeredBy Trigger `json:"triggered_by"`
}

// NewReleaseDescriptor validates its inputs and builds a descriptor.
//
// The artifact reference is parsed with the registry name rules (tag or
// digest form; registry defaulting applies), so a malformed reference is
// rejected before anything touches the cluster.
func NewReleaseDescriptor(artifact string, version string, triggeredBy Trigger) (ReleaseDescriptor, error) {
	if _, err := name.ParseReference(artifact); err != nil {
		return ReleaseDescriptor{}, fmt.Errorf("invalid artifact reference %q: %w", artifact, err)
	}
	if version == "" {
		return ReleaseDescriptor{}, fmt.Errorf("version label is required")
	}
	if msgs := validation.IsValidLabelValue(version); 0 < len(msgs) {
		return ReleaseDescriptor{}, fmt.Errorf("invalid version label %q: %s", version, msgs[0])
	}
	if _, err := ParseTrigger(string(triggeredBy)); err != nil {
		return ReleaseDescriptor{}, err
	}

	return ReleaseDescriptor{
		Artifact:    artifact,
		Version:     version,
		TriggeredBy: triggeredBy,
	}, nil
}

// EnvironmentSlot is one of the two deployment environments, as tracked on
// the cluster. WorkloadRef and ServiceRef name the slot's Deployment and
// slot-scoped Service.
type EnvironmentSlot struct {
	Name         SlotName `json:"name"`
	WorkloadRef  string   `json:"workload_ref"`
	ServiceRef   string   `json:"service_ref"`
	ReplicaCount int32    `json:"replica_count"`
}

// SlotOf builds the EnvironmentSlot for app's given slot. Both the workload
// and the slot-scoped service are named "<app>-<slot>".
func SlotOf(app string, s SlotName) EnvironmentSlot {
	ref := fmt.Sprintf("%s-%s", app, s)
	return EnvironmentSlot{
		Name:        s,
		WorkloadRef: ref,
		ServiceRef:  ref,
	}
}
