package mock

import (
	"context"
	"errors"

	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/registry"
)

type MockRegistry struct {
	Impl struct {
		GetActive   func(ctx context.Context) (domain.EnvironmentSlot, error)
		GetInactive func(ctx context.Context) (domain.EnvironmentSlot, error)
		SetActive   func(ctx context.Context, slot domain.SlotName) error
	}
	Called struct {
		GetActive   uint64
		GetInactive uint64
		SetActive   uint64
	}
}

// MockRegistry implements registry.Registry
var _ registry.Registry = &MockRegistry{}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{}
}

func (m *MockRegistry) GetActive(ctx context.Context) (domain.EnvironmentSlot, error) {
	m.Called.GetActive += 1
	if m.Impl.GetActive == nil {
		return domain.EnvironmentSlot{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetActive(ctx)
}

func (m *MockRegistry) GetInactive(ctx context.Context) (domain.EnvironmentSlot, error) {
	m.Called.GetInactive += 1
	if m.Impl.GetInactive == nil {
		return domain.EnvironmentSlot{}, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetInactive(ctx)
}

func (m *MockRegistry) SetActive(ctx context.Context, slot domain.SlotName) error {
	m.Called.SetActive += 1
	if m.Impl.SetActive == nil {
		return errors.New("[MOCK] not implemented")
	}
	return m.Impl.SetActive(ctx, slot)
}
