package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/utils/retry"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubetypes "k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// name of the port every slot workload and slot service expose
const slotPortName = "http"

// WorkloadTemplate is the static shape of a slot workload. The image and the
// version label come per release; everything here comes from configuration.
type WorkloadTemplate struct {
	// Container is the name of the container running the released artifact.
	Container string

	// Port is the port the artifact serves on.
	Port int32

	// Replicas is the replica count a slot gets when it is (re)activated.
	Replicas int32

	// HealthPath is the HTTP path of the artifact's health endpoint,
	// wired into the pod readiness probe.
	HealthPath string
}

// Gateway performs the cluster-side operations of a release run against the
// slot workloads, the slot services and the stable routing service.
type Gateway interface {
	// ApplyWorkload creates or updates the slot's workload (and its
	// slot-scoped service) so that it runs the release's artifact.
	//
	// # Returns
	//
	// - error: relerr.ErrApply when the cluster rejected the spec or the
	// retry budget ran out, the context error when interrupted.
	ApplyWorkload(ctx context.Context, slot domain.SlotName, d domain.ReleaseDescriptor) error

	// WaitForRollout polls the slot workload until its rollout reaches a
	// terminal phase or the wait budget runs out.
	//
	// # Returns
	//
	// - domain.RolloutStatus: the last observation. When the budget runs
	// out first, its phase is domain.RolloutTimedOut.
	//
	// - error: non-nil only for unrecoverable API errors or when ctx
	// itself is done.
	WaitForRollout(ctx context.Context, slot domain.SlotName, timeout time.Duration) (domain.RolloutStatus, error)

	// RolloutStatus observes the slot workload once. A slot with no
	// workload is reported as pending with zero replicas.
	RolloutStatus(ctx context.Context, slot domain.SlotName) (domain.RolloutStatus, error)

	// Scale sets the slot workload's replica count. Scaling to the current
	// count is a no-op.
	Scale(ctx context.Context, slot domain.SlotName, replicas int32) error

	// PatchActiveSelector points the stable routing service at the slot's
	// pods. The selector switch is a single patch, so requests see either
	// the old slot or the new one, never an empty backend set.
	PatchActiveSelector(ctx context.Context, slot domain.SlotName) error

	// FindSlotPods lists the pods currently belonging to the slot.
	FindSlotPods(ctx context.Context, slot domain.SlotName) ([]kubecore.Pod, error)

	// SlotRelease reads what is currently released on the slot: the
	// artifact (the release container's image) and the version label.
	// A slot with no workload yields "", "".
	SlotRelease(ctx context.Context, slot domain.SlotName) (artifact string, version string, err error)
}

type gateway struct {
	client       Client
	app          string
	namespace    string
	template     WorkloadTemplate
	policy       retry.Policy
	pollInterval time.Duration
	logger       zerolog.Logger
}

var _ Gateway = &gateway{}

// NewGateway builds a Gateway for app in namespace.
//
// policy bounds retries of mutating calls; pollInterval paces rollout
// observation.
func NewGateway(
	client Client,
	app string, namespace string,
	template WorkloadTemplate,
	policy retry.Policy, pollInterval time.Duration,
	logger zerolog.Logger,
) Gateway {
	return &gateway{
		client:       client,
		app:          app,
		namespace:    namespace,
		template:     template,
		policy:       policy,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Transient reports whether a cluster API error is worth retrying.
//
// Context errors and client-side mistakes (bad specs, refused auth, missing
// objects) are not. Conflicts, throttling, server timeouts and transport
// hiccups are; create races (AlreadyExists) also are, so a retried apply can
// pick the update path on its next attempt.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case kubeerr.IsInvalid(err),
		kubeerr.IsBadRequest(err),
		kubeerr.IsForbidden(err),
		kubeerr.IsUnauthorized(err),
		kubeerr.IsNotFound(err),
		kubeerr.IsMethodNotSupported(err),
		kubeerr.IsRequestEntityTooLargeError(err):
		return false
	}
	return true
}

func (g *gateway) ApplyWorkload(ctx context.Context, slot domain.SlotName, d domain.ReleaseDescriptor) error {
	if !slot.Known() {
		return relerr.NewApply(fmt.Sprintf("unknown slot %q", slot))
	}

	if err := g.ensureSlotService(ctx, slot); err != nil {
		if isInterrupted(err) {
			return err
		}
		return relerr.NewApplyCausedBy(
			fmt.Sprintf("slot service for %q cannot be ensured", slot), err,
		)
	}

	target := domain.SlotOf(g.app, slot)
	err := g.policy.Do(ctx, Transient, func() error {
		current, err := g.client.GetDeployment(ctx, g.namespace, target.WorkloadRef)
		if err != nil {
			if !kubeerr.IsNotFound(err) {
				return err
			}
			_, err := g.client.CreateDeployment(ctx, g.namespace, g.workloadFor(slot, d))
			return err
		}

		next := current.DeepCopy()
		g.stamp(next, slot, d)
		_, err = g.client.UpdateDeployment(ctx, g.namespace, next)
		return err
	})
	if err != nil {
		if isInterrupted(err) {
			return err
		}
		return relerr.NewApplyCausedBy(
			fmt.Sprintf("workload %s/%s cannot be applied", g.namespace, target.WorkloadRef), err,
		)
	}

	g.logger.Info().
		Str("slot", string(slot)).
		Str("artifact", d.Artifact).
		Str("version", d.Version).
		Msg("slot workload applied")
	return nil
}

func (g *gateway) WaitForRollout(ctx context.Context, slot domain.SlotName, timeout time.Duration) (domain.RolloutStatus, error) {
	wait, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	last := domain.RolloutStatus{Slot: slot, Phase: domain.RolloutPending}
	status, err := retry.Blocking(wait, retry.StaticBackoff(g.pollInterval), func() (domain.RolloutStatus, error) {
		s, err := g.RolloutStatus(wait, slot)
		if err != nil {
			if !Transient(err) {
				return last, err
			}
			g.logger.Warn().Err(err).
				Str("slot", string(slot)).
				Msg("rollout observation failed; polling on")
			return last, retry.ErrRetry
		}

		last = s
		g.logger.Debug().
			Str("slot", string(slot)).
			Str("phase", string(s.Phase)).
			Int32("observed", s.ObservedReplicas).
			Int32("desired", s.DesiredReplicas).
			Msg("rollout observed")
		if !s.Phase.Terminal() {
			return s, retry.ErrRetry
		}
		return s, nil
	})
	if err == nil {
		return status, nil
	}

	// The wait budget ran out while the caller's context is still alive.
	if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		last.Phase = domain.RolloutTimedOut
		return last, nil
	}
	return last, err
}

func (g *gateway) RolloutStatus(ctx context.Context, slot domain.SlotName) (domain.RolloutStatus, error) {
	target := domain.SlotOf(g.app, slot)
	depl, err := g.client.GetDeployment(ctx, g.namespace, target.WorkloadRef)
	if err != nil {
		if kubeerr.IsNotFound(err) {
			return domain.RolloutStatus{Slot: slot, Phase: domain.RolloutPending}, nil
		}
		return domain.RolloutStatus{Slot: slot}, err
	}
	return observeRollout(slot, depl), nil
}

// observeRollout derives the rollout phase from a workload observation.
//
// The spec has not been picked up while ObservedGeneration trails Generation.
// After that, a Progressing=False/ProgressDeadlineExceeded condition means the
// controller gave up; all replicas updated and available means done; anything
// else is still in flight.
func observeRollout(slot domain.SlotName, depl *kubeapps.Deployment) domain.RolloutStatus {
	desired := int32(1)
	if depl.Spec.Replicas != nil {
		desired = *depl.Spec.Replicas
	}
	status := domain.RolloutStatus{
		Slot:             slot,
		ObservedReplicas: depl.Status.AvailableReplicas,
		DesiredReplicas:  desired,
	}

	switch {
	case depl.Status.ObservedGeneration < depl.ObjectMeta.Generation:
		status.Phase = domain.RolloutPending
	case rolloutGaveUp(depl):
		status.Phase = domain.RolloutFailed
	case depl.Status.UpdatedReplicas == desired &&
		depl.Status.AvailableReplicas == desired &&
		depl.Status.Replicas == desired:
		status.Phase = domain.RolloutReady
	default:
		status.Phase = domain.RolloutDeploying
	}
	return status
}

func rolloutGaveUp(depl *kubeapps.Deployment) bool {
	for _, cond := range depl.Status.Conditions {
		if cond.Type == kubeapps.DeploymentProgressing &&
			cond.Status == kubecore.ConditionFalse &&
			cond.Reason == "ProgressDeadlineExceeded" {
			return true
		}
	}
	return false
}

func (g *gateway) Scale(ctx context.Context, slot domain.SlotName, replicas int32) error {
	target := domain.SlotOf(g.app, slot)
	err := g.policy.Do(ctx, Transient, func() error {
		scale, err := g.client.GetScale(ctx, g.namespace, target.WorkloadRef)
		if err != nil {
			return err
		}
		if scale.Spec.Replicas == replicas {
			return nil
		}
		scale.Spec.Replicas = replicas
		_, err = g.client.UpdateScale(ctx, g.namespace, target.WorkloadRef, scale)
		return err
	})
	if err != nil {
		return err
	}

	g.logger.Info().
		Str("slot", string(slot)).
		Int32("replicas", replicas).
		Msg("slot workload scaled")
	return nil
}

func (g *gateway) PatchActiveSelector(ctx context.Context, slot domain.SlotName) error {
	patch, err := json.Marshal(map[string]interface{}{
		"spec": map[string]interface{}{
			"selector": selectorLabels(g.app, slot),
		},
	})
	if err != nil {
		return err
	}

	err = g.policy.Do(ctx, Transient, func() error {
		_, err := g.client.PatchService(ctx, g.namespace, g.app, kubetypes.StrategicMergePatchType, patch)
		return err
	})
	if err != nil {
		return err
	}

	g.logger.Info().
		Str("slot", string(slot)).
		Str("service", g.app).
		Msg("stable service selector switched")
	return nil
}

func (g *gateway) FindSlotPods(ctx context.Context, slot domain.SlotName) ([]kubecore.Pod, error) {
	return g.client.FindPods(ctx, g.namespace, selectorLabels(g.app, slot))
}

func (g *gateway) SlotRelease(ctx context.Context, slot domain.SlotName) (string, string, error) {
	target := domain.SlotOf(g.app, slot)
	depl, err := g.client.GetDeployment(ctx, g.namespace, target.WorkloadRef)
	if err != nil {
		if kubeerr.IsNotFound(err) {
			return "", "", nil
		}
		return "", "", err
	}

	artifact := ""
	for _, c := range depl.Spec.Template.Spec.Containers {
		if c.Name == g.template.Container {
			artifact = c.Image
			break
		}
	}
	return artifact, depl.ObjectMeta.Labels[LabelVersion], nil
}

// ensureSlotService creates the slot-scoped service if it is missing.
// The service is stable across releases, so an existing one is left as is.
func (g *gateway) ensureSlotService(ctx context.Context, slot domain.SlotName) error {
	target := domain.SlotOf(g.app, slot)
	return g.policy.Do(ctx, Transient, func() error {
		_, err := g.client.GetService(ctx, g.namespace, target.ServiceRef)
		if err == nil || !kubeerr.IsNotFound(err) {
			return err
		}

		_, err = g.client.CreateService(ctx, g.namespace, g.serviceFor(slot))
		if kubeerr.IsAlreadyExists(err) {
			// lost a create race; the service is there
			return nil
		}
		return err
	})
}

func (g *gateway) serviceFor(slot domain.SlotName) *kubecore.Service {
	target := domain.SlotOf(g.app, slot)
	return &kubecore.Service{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      target.ServiceRef,
			Namespace: g.namespace,
			Labels: map[string]string{
				LabelAppName:   g.app,
				LabelSlot:      string(slot),
				LabelManagedBy: managedBy,
			},
		},
		Spec: kubecore.ServiceSpec{
			Selector: selectorLabels(g.app, slot),
			Ports: []kubecore.ServicePort{
				{
					Name:       slotPortName,
					Port:       g.template.Port,
					TargetPort: intstr.FromString(slotPortName),
				},
			},
		},
	}
}

func (g *gateway) workloadFor(slot domain.SlotName, d domain.ReleaseDescriptor) *kubeapps.Deployment {
	replicas := g.template.Replicas
	labels := workloadLabels(g.app, slot, d.Version)

	return &kubeapps.Deployment{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      domain.SlotOf(g.app, slot).WorkloadRef,
			Namespace: g.namespace,
			Labels:    labels,
		},
		Spec: kubeapps.DeploymentSpec{
			Replicas: &replicas,
			Selector: &kubeapimeta.LabelSelector{
				MatchLabels: selectorLabels(g.app, slot),
			},
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{
					Labels: workloadLabels(g.app, slot, d.Version),
				},
				Spec: kubecore.PodSpec{
					Containers: []kubecore.Container{g.container(d)},
				},
			},
		},
	}
}

// stamp rewrites an existing workload in place for a new release: refreshed
// labels on the object and the pod template, and the release container
// rebuilt from the template. Sidecars and the replica count are left alone;
// replicas belong to Scale.
func (g *gateway) stamp(depl *kubeapps.Deployment, slot domain.SlotName, d domain.ReleaseDescriptor) {
	mergeLabels(&depl.ObjectMeta, workloadLabels(g.app, slot, d.Version))
	mergeLabels(&depl.Spec.Template.ObjectMeta, workloadLabels(g.app, slot, d.Version))

	replaced := false
	containers := depl.Spec.Template.Spec.Containers
	for i := range containers {
		if containers[i].Name != g.template.Container {
			continue
		}
		containers[i] = g.container(d)
		replaced = true
	}
	if !replaced {
		depl.Spec.Template.Spec.Containers = append(containers, g.container(d))
	}
}

func (g *gateway) container(d domain.ReleaseDescriptor) kubecore.Container {
	return kubecore.Container{
		Name:  g.template.Container,
		Image: d.Artifact,
		Ports: []kubecore.ContainerPort{
			{Name: slotPortName, ContainerPort: g.template.Port},
		},
		ReadinessProbe: &kubecore.Probe{
			ProbeHandler: kubecore.ProbeHandler{
				HTTPGet: &kubecore.HTTPGetAction{
					Path: g.template.HealthPath,
					Port: intstr.FromString(slotPortName),
				},
			},
		},
	}
}

func mergeLabels(meta *kubeapimeta.ObjectMeta, labels map[string]string) {
	if meta.Labels == nil {
		meta.Labels = map[string]string{}
	}
	for k, v := range labels {
		meta.Labels[k] = v
	}
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
