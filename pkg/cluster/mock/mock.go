package mock

import (
	"context"
	"errors"

	"github.com/slotswap/slotswap/pkg/cluster"
	kubeapps "k8s.io/api/apps/v1"
	kubeautoscaling "k8s.io/api/autoscaling/v1"
	kubecore "k8s.io/api/core/v1"
	kubetypes "k8s.io/apimachinery/pkg/types"
)

type MockClient struct {
	Impl struct {
		GetService    func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error)
		CreateService func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
		UpdateService func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
		PatchService  func(ctx context.Context, namespace string, svcname string, patchType kubetypes.PatchType, patch []byte) (*kubecore.Service, error)

		GetDeployment    func(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error)
		CreateDeployment func(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)
		UpdateDeployment func(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)

		GetScale    func(ctx context.Context, namespace string, deplname string) (*kubeautoscaling.Scale, error)
		UpdateScale func(ctx context.Context, namespace string, deplname string, scale *kubeautoscaling.Scale) (*kubeautoscaling.Scale, error)

		FindPods func(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubecore.Pod, error)
	}
	Called struct {
		GetService    uint64
		CreateService uint64
		UpdateService uint64
		PatchService  uint64

		GetDeployment    uint64
		CreateDeployment uint64
		UpdateDeployment uint64

		GetScale    uint64
		UpdateScale uint64

		FindPods uint64
	}
}

// MockClient implements cluster.Client
var _ cluster.Client = &MockClient{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
	m.Called.GetService += 1
	if m.Impl.GetService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetService(ctx, namespace, svcname)
}

func (m *MockClient) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	m.Called.CreateService += 1
	if m.Impl.CreateService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateService(ctx, namespace, svc)
}

func (m *MockClient) UpdateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	m.Called.UpdateService += 1
	if m.Impl.UpdateService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateService(ctx, namespace, svc)
}

func (m *MockClient) PatchService(ctx context.Context, namespace string, svcname string, patchType kubetypes.PatchType, patch []byte) (*kubecore.Service, error) {
	m.Called.PatchService += 1
	if m.Impl.PatchService == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.PatchService(ctx, namespace, svcname, patchType, patch)
}

func (m *MockClient) GetDeployment(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
	m.Called.GetDeployment += 1

	if m.Impl.GetDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetDeployment(ctx, namespace, deplname)
}

func (m *MockClient) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	m.Called.CreateDeployment += 1

	if m.Impl.CreateDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.CreateDeployment(ctx, namespace, depl)
}

func (m *MockClient) UpdateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	m.Called.UpdateDeployment += 1

	if m.Impl.UpdateDeployment == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateDeployment(ctx, namespace, depl)
}

func (m *MockClient) GetScale(ctx context.Context, namespace string, deplname string) (*kubeautoscaling.Scale, error) {
	m.Called.GetScale += 1

	if m.Impl.GetScale == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.GetScale(ctx, namespace, deplname)
}

func (m *MockClient) UpdateScale(ctx context.Context, namespace string, deplname string, scale *kubeautoscaling.Scale) (*kubeautoscaling.Scale, error) {
	m.Called.UpdateScale += 1

	if m.Impl.UpdateScale == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.UpdateScale(ctx, namespace, deplname, scale)
}

func (m *MockClient) FindPods(ctx context.Context, namespace string, ls cluster.LabelSelector) ([]kubecore.Pod, error) {
	m.Called.FindPods += 1

	if m.Impl.FindPods == nil {
		return nil, errors.New("[MOCK] not implemented")
	}
	return m.Impl.FindPods(ctx, namespace, ls)
}
