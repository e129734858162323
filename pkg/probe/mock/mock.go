package mock

import (
	"context"
	"time"

	"github.com/slotswap/slotswap/pkg/probe"
)

type MockProber struct {
	Impl struct {
		Check       func(ctx context.Context, endpoint string) bool
		WaitHealthy func(ctx context.Context, endpoint string, attempts int, interval time.Duration) bool
	}
	Called struct {
		Check       uint64
		WaitHealthy uint64
	}
}

// MockProber implements probe.Prober
var _ probe.Prober = &MockProber{}

func NewMockProber() *MockProber {
	return &MockProber{}
}

// Check returns false unless an Impl is given; a probe that cannot run is an
// unhealthy probe, not an error.
func (m *MockProber) Check(ctx context.Context, endpoint string) bool {
	m.Called.Check += 1
	if m.Impl.Check == nil {
		return false
	}
	return m.Impl.Check(ctx, endpoint)
}

func (m *MockProber) WaitHealthy(ctx context.Context, endpoint string, attempts int, interval time.Duration) bool {
	m.Called.WaitHealthy += 1
	if m.Impl.WaitHealthy == nil {
		return false
	}
	return m.Impl.WaitHealthy(ctx, endpoint, attempts, interval)
}
