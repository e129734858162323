package mock

import (
	"context"
	"errors"
	"time"

	"github.com/slotswap/slotswap/pkg/cluster"
	"github.com/slotswap/slotswap/pkg/domain"
	kubecore "k8s.io/api/core/v1"
)

type MockGateway struct {
	Impl struct {
		ApplyWorkload       func(ctx context.Context, slot domain.SlotName, d domain.ReleaseDescriptor) error
		WaitForRollout      func(ctx context.Context, slot domain.SlotName, timeout time.Duration) (domain.RolloutStatus, error)
		RolloutStatus       func(ctx context.Context, slot domain.SlotName) (domain.RolloutStatus, error)
		Scale               func(ctx context.Context, slot domain.SlotName, replicas int32) error
		PatchActiveSelector func(ctx context.Context, slot domain.SlotName) error
		FindSlotPods        func(ctx context.Context, slot domain.SlotName) ([]kubecore.Pod, error)
		SlotRelease         func(ctx context.Context, slot domain.SlotName) (string, string, error)
	}
	Called struct {
		ApplyWorkload       uint64
		WaitForRollout      uint64
		RolloutStatus       uint64
		Scale               uint64
		PatchActiveSelector uint64
		FindSlotPods        uint64
		SlotRelease         uint64
	}
}

// MockGateway implements cluster.Gateway
var _ cluster.Gateway = &MockGateway{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) ApplyWorkload(ctx context.Context, slot domain.SlotName, d domain.ReleaseDescriptor) error {
	m.Called.ApplyWorkload += 1
	if m.Impl.ApplyWorkload == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.ApplyWorkload(ctx, slot, d)
}

func (m *MockGateway) WaitForRollout(ctx context.Context, slot domain.SlotName, timeout time.Duration) (domain.RolloutStatus, error) {
	m.Called.WaitForRollout += 1
	if m.Impl.WaitForRollout == nil {
		return domain.RolloutStatus{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.WaitForRollout(ctx, slot, timeout)
}

func (m *MockGateway) RolloutStatus(ctx context.Context, slot domain.SlotName) (domain.RolloutStatus, error) {
	m.Called.RolloutStatus += 1
	if m.Impl.RolloutStatus == nil {
		return domain.RolloutStatus{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.RolloutStatus(ctx, slot)
}

func (m *MockGateway) Scale(ctx context.Context, slot domain.SlotName, replicas int32) error {
	m.Called.Scale += 1
	if m.Impl.Scale == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.Scale(ctx, slot, replicas)
}

func (m *MockGateway) PatchActiveSelector(ctx context.Context, slot domain.SlotName) error {
	m.Called.PatchActiveSelector += 1
	if m.Impl.PatchActiveSelector == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.PatchActiveSelector(ctx, slot)
}

func (m *MockGateway) FindSlotPods(ctx context.Context, slot domain.SlotName) ([]kubecore.Pod, error) {
	m.Called.FindSlotPods += 1
	if m.Impl.FindSlotPods == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.FindSlotPods(ctx, slot)
}

func (m *MockGateway) SlotRelease(ctx context.Context, slot domain.SlotName) (string, string, error) {
	m.Called.SlotRelease += 1
	if m.Impl.SlotRelease == nil {
		return "", "", errors.New("[MOCK] not implemented")
	}
	return m.Impl.SlotRelease(ctx, slot)
}
