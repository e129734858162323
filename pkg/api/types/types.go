// Package types holds the wire types of the slotswap API, shared between
// the daemon handlers and the CLI client.
package types

import (
	"time"

	"github.com/slotswap/slotswap/pkg/domain"
)

// ReleaseRequest is the body of POST /api/releases.
type ReleaseRequest struct {
	Artifact    string `json:"artifact_reference"`
	Version     string `json:"version_label"`
	TriggeredBy string `json:"triggered_by"`
}

// Descriptor validates the request into a release descriptor.
func (r ReleaseRequest) Descriptor() (domain.ReleaseDescriptor, error) {
	trigger, err := domain.ParseTrigger(r.TriggeredBy)
	if err != nil {
		return domain.ReleaseDescriptor{}, err
	}
	return domain.NewReleaseDescriptor(r.Artifact, r.Version, trigger)
}

// ReleaseSubmitted is the 202 body of POST /api/releases: the accepted run,
// readable at /api/releases/{id} while it goes on.
type ReleaseSubmitted struct {
	ID string `json:"id"`
}

type Phase struct {
	Name      string    `json:"name"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Release is one orchestration run as the API serves it. FinalOutcome is
// empty and FinishedAt nil while the run is still going on.
type Release struct {
	ID           string     `json:"id"`
	Artifact     string     `json:"artifact_reference"`
	Version      string     `json:"version_label"`
	TriggeredBy  string     `json:"triggered_by"`
	Phases       []Phase    `json:"phases"`
	FinalOutcome string     `json:"final_outcome,omitempty"`
	RolledBack   bool       `json:"rolled_back"`
	Degraded     bool       `json:"degraded"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

func ComposeRelease(report *domain.ReleaseReport) Release {
	phases := make([]Phase, 0, len(report.Phases))
	for _, p := range report.Phases {
		phases = append(phases, Phase{
			Name:      string(p.Name),
			Outcome:   string(p.Outcome),
			Detail:    p.Detail,
			Timestamp: p.Timestamp,
		})
	}

	release := Release{
		ID:           report.ID,
		Artifact:     report.Descriptor.Artifact,
		Version:      report.Descriptor.Version,
		TriggeredBy:  string(report.Descriptor.TriggeredBy),
		Phases:       phases,
		FinalOutcome: string(report.FinalOutcome),
		RolledBack:   report.RolledBack,
		Degraded:     report.Degraded,
		StartedAt:    report.StartedAt,
	}
	if report.Finalized() {
		finishedAt := report.FinishedAt
		release.FinishedAt = &finishedAt
	}
	return release
}

type Slot struct {
	Name             string `json:"name"`
	Active           bool   `json:"active"`
	Artifact         string `json:"artifact_reference,omitempty"`
	Version          string `json:"version_label,omitempty"`
	Phase            string `json:"phase"`
	ObservedReplicas int32  `json:"observed_replicas"`
	DesiredReplicas  int32  `json:"desired_replicas"`
}

// Environment is the GET /api/environments body: both slots and which one
// the stable service routes to.
type Environment struct {
	ActiveSlot string `json:"active_slot"`
	Slots      []Slot `json:"slots"`
}

func ComposeEnvironment(status domain.EnvironmentStatus) Environment {
	slots := make([]Slot, 0, len(status.Slots))
	for _, s := range status.Slots {
		slots = append(slots, Slot{
			Name:             string(s.Name),
			Active:           s.Active,
			Artifact:         s.Artifact,
			Version:          s.Version,
			Phase:            string(s.Phase),
			ObservedReplicas: s.ObservedReplicas,
			DesiredReplicas:  s.DesiredReplicas,
		})
	}
	return Environment{ActiveSlot: string(status.ActiveSlot), Slots: slots}
}
