// Package registry reads and writes the active-slot record.
//
// The record is the cluster.LabelActiveSlot label on the application's stable
// routing service, so it lives on the same object whose selector carries the
// traffic. Writes go through an optimistic read-modify-update loop; lost
// updates surface as relerr.ErrStateConflict once the retry budget is spent.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slotswap/slotswap/pkg/cluster"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/utils/retry"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
)

// Registry is the authority on which slot is live.
type Registry interface {
	// GetActive reads the active slot.
	//
	// # Returns
	//
	// - domain.EnvironmentSlot: the active slot, its replica count filled
	// in from the slot workload (0 when the slot has no workload).
	//
	// - error: relerr.ErrStateUnavailable when the record is missing,
	// unreadable or holds an unknown slot name.
	GetActive(ctx context.Context) (domain.EnvironmentSlot, error)

	// GetInactive reads the deploy-target slot, the complement of the
	// active one. Errors are those of GetActive.
	GetInactive(ctx context.Context) (domain.EnvironmentSlot, error)

	// SetActive records slot as the active one. Recording the slot that
	// is already active is a no-op.
	//
	// # Returns
	//
	// - error: relerr.ErrStateConflict when concurrent writers outlast
	// the retry budget, relerr.ErrStateUnavailable when the record cannot
	// be written at all.
	SetActive(ctx context.Context, slot domain.SlotName) error
}

type registry struct {
	client    cluster.Client
	app       string
	namespace string
	policy    retry.Policy
	logger    zerolog.Logger
}

var _ Registry = &registry{}

// New builds a Registry over the stable service of app in namespace.
func New(client cluster.Client, app string, namespace string, policy retry.Policy, logger zerolog.Logger) Registry {
	return &registry{
		client:    client,
		app:       app,
		namespace: namespace,
		policy:    policy,
		logger:    logger,
	}
}

func (r *registry) GetActive(ctx context.Context) (domain.EnvironmentSlot, error) {
	svc, err := r.stableService(ctx)
	if err != nil {
		return domain.EnvironmentSlot{}, err
	}

	name, ok := svc.ObjectMeta.Labels[cluster.LabelActiveSlot]
	if !ok {
		return domain.EnvironmentSlot{}, relerr.NewStateUnavailable(fmt.Sprintf(
			"stable service %s/%s carries no active-slot record (label %s)",
			r.namespace, r.app, cluster.LabelActiveSlot,
		))
	}
	slot, err := domain.ParseSlotName(name)
	if err != nil {
		return domain.EnvironmentSlot{}, relerr.NewStateUnavailableCausedBy(
			fmt.Sprintf("active-slot record of %s/%s is corrupted", r.namespace, r.app), err,
		)
	}

	return r.fill(ctx, slot)
}

func (r *registry) GetInactive(ctx context.Context) (domain.EnvironmentSlot, error) {
	active, err := r.GetActive(ctx)
	if err != nil {
		return domain.EnvironmentSlot{}, err
	}
	return r.fill(ctx, active.Name.Complement())
}

func (r *registry) SetActive(ctx context.Context, slot domain.SlotName) error {
	if !slot.Known() {
		return relerr.NewStateUnavailable(fmt.Sprintf("unknown slot %q cannot be recorded", slot))
	}

	err := r.policy.Do(ctx, cluster.Transient, func() error {
		svc, err := r.client.GetService(ctx, r.namespace, r.app)
		if err != nil {
			return err
		}
		if svc.ObjectMeta.Labels[cluster.LabelActiveSlot] == string(slot) {
			return nil
		}

		next := svc.DeepCopy()
		if next.ObjectMeta.Labels == nil {
			next.ObjectMeta.Labels = map[string]string{}
		}
		next.ObjectMeta.Labels[cluster.LabelActiveSlot] = string(slot)
		_, err = r.client.UpdateService(ctx, r.namespace, next)
		return err
	})
	if err == nil {
		r.logger.Info().
			Str("slot", string(slot)).
			Str("service", r.app).
			Msg("active-slot record written")
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if kubeerr.IsConflict(err) {
		return relerr.NewStateConflictCausedBy(
			fmt.Sprintf("active-slot record of %s/%s is contended", r.namespace, r.app), err,
		)
	}
	return relerr.NewStateUnavailableCausedBy(
		fmt.Sprintf("active-slot record of %s/%s cannot be written", r.namespace, r.app), err,
	)
}

// stableService reads the stable routing service, retrying transient errors.
func (r *registry) stableService(ctx context.Context) (*kubecore.Service, error) {
	var svc *kubecore.Service
	err := r.policy.Do(ctx, cluster.Transient, func() error {
		s, err := r.client.GetService(ctx, r.namespace, r.app)
		if err != nil {
			return err
		}
		svc = s
		return nil
	})
	if err == nil {
		return svc, nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if kubeerr.IsNotFound(err) {
		return nil, relerr.NewStateUnavailableCausedBy(
			fmt.Sprintf("stable service %s/%s is missing", r.namespace, r.app), err,
		)
	}
	return nil, relerr.NewStateUnavailableCausedBy(
		fmt.Sprintf("stable service %s/%s cannot be read", r.namespace, r.app), err,
	)
}

// fill completes an EnvironmentSlot with the replica count of its workload.
// A slot with no workload has 0 replicas; a workload with no explicit count
// runs 1 (the cluster-side default).
func (r *registry) fill(ctx context.Context, slot domain.SlotName) (domain.EnvironmentSlot, error) {
	target := domain.SlotOf(r.app, slot)
	depl, err := r.client.GetDeployment(ctx, r.namespace, target.WorkloadRef)
	if err != nil {
		if kubeerr.IsNotFound(err) {
			return target, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.EnvironmentSlot{}, err
		}
		return domain.EnvironmentSlot{}, relerr.NewStateUnavailableCausedBy(
			fmt.Sprintf("workload %s/%s cannot be read", r.namespace, target.WorkloadRef), err,
		)
	}

	if depl.Spec.Replicas != nil {
		target.ReplicaCount = *depl.Spec.Replicas
	} else {
		target.ReplicaCount = 1
	}
	return target, nil
}
