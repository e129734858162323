package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/slotswap/slotswap/pkg/cluster"
	clustermock "github.com/slotswap/slotswap/pkg/cluster/mock"
	"github.com/slotswap/slotswap/pkg/domain"
	"github.com/slotswap/slotswap/pkg/domain/errors/relerr"
	"github.com/slotswap/slotswap/pkg/registry"
	"github.com/slotswap/slotswap/pkg/utils/pointer"
	"github.com/slotswap/slotswap/pkg/utils/retry"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

var fastPolicy = retry.Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Millisecond,
	MaxDelay:    4 * time.Millisecond,
}

func testRegistry(client cluster.Client) registry.Registry {
	return registry.New(client, "myapp", "prod", fastPolicy, zerolog.Nop())
}

func stableService(activeSlot string) *kubecore.Service {
	labels := map[string]string{
		cluster.LabelAppName: "myapp",
	}
	if activeSlot != "" {
		labels[cluster.LabelActiveSlot] = activeSlot
	}
	return &kubecore.Service{
		ObjectMeta: kubeapimeta.ObjectMeta{
			Name:      "myapp",
			Namespace: "prod",
			Labels:    labels,
		},
		Spec: kubecore.ServiceSpec{
			Selector: map[string]string{
				cluster.LabelAppName: "myapp",
				cluster.LabelSlot:    activeSlot,
			},
		},
	}
}

func slotWorkload(name string, replicas int32) *kubeapps.Deployment {
	return &kubeapps.Deployment{
		ObjectMeta: kubeapimeta.ObjectMeta{Name: name, Namespace: "prod"},
		Spec:       kubeapps.DeploymentSpec{Replicas: pointer.Ref(replicas)},
	}
}

func notFound(resource string, name string) error {
	return kubeerr.NewNotFound(schema.GroupResource{Resource: resource}, name)
}

func TestRegistry_GetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("it reads the record and fills the replica count in", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return stableService("blue"), nil
		}
		client.Impl.GetDeployment = func(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
			if deplname != "myapp-blue" {
				t.Errorf("workload read: (actual, expected) = (%s, myapp-blue)", deplname)
			}
			return slotWorkload(deplname, 2), nil
		}

		testee := testRegistry(client)
		active, err := testee.GetActive(ctx)
		if err != nil {
			t.Fatalf("read should succeed: %v", err)
		}

		expected := domain.EnvironmentSlot{
			Name: domain.Blue, WorkloadRef: "myapp-blue", ServiceRef: "myapp-blue",
			ReplicaCount: 2,
		}
		if active != expected {
			t.Errorf("active slot: (actual, expected) = (%+v, %+v)", active, expected)
		}
	})

	t.Run("an active slot with no workload has zero replicas", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return stableService("green"), nil
		}
		client.Impl.GetDeployment = func(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
			return nil, notFound("deployments", deplname)
		}

		testee := testRegistry(client)
		active, err := testee.GetActive(ctx)
		if err != nil {
			t.Fatalf("read should succeed: %v", err)
		}
		if active.Name != domain.Green || active.ReplicaCount != 0 {
			t.Errorf("active slot: %+v", active)
		}
	})

	for label, testcase := range map[string]struct {
		service *kubecore.Service
		svcErr  error
	}{
		"a missing stable service means the state is unavailable": {
			svcErr: notFound("services", "myapp"),
		},
		"a missing record means the state is unavailable": {
			service: stableService(""),
		},
		"a corrupted record means the state is unavailable": {
			service: stableService("purple"),
		},
		"an unreadable stable service means the state is unavailable": {
			svcErr: kubeerr.NewUnauthorized("who are you?"),
		},
	} {
		t.Run(label, func(t *testing.T) {
			client := clustermock.NewMockClient()
			client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
				if testcase.svcErr != nil {
					return nil, testcase.svcErr
				}
				return testcase.service, nil
			}

			testee := testRegistry(client)
			if _, err := testee.GetActive(ctx); !relerr.AsStateUnavailable(err) {
				t.Errorf("error should mark the state unavailable: %v", err)
			}
		})
	}

	t.Run("it retries transient read errors", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			if client.Called.GetService == 1 {
				return nil, kubeerr.NewInternalError(errors.New("etcd hiccup"))
			}
			return stableService("blue"), nil
		}
		client.Impl.GetDeployment = func(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
			return slotWorkload(deplname, 2), nil
		}

		testee := testRegistry(client)
		active, err := testee.GetActive(ctx)
		if err != nil {
			t.Fatalf("read should succeed: %v", err)
		}
		if active.Name != domain.Blue {
			t.Errorf("active slot: (actual, expected) = (%s, %s)", active.Name, domain.Blue)
		}
		if client.Called.GetService != 2 {
			t.Errorf("GetService calls: (actual, expected) = (%d, 2)", client.Called.GetService)
		}
	})
}

func TestRegistry_GetInactive(t *testing.T) {
	client := clustermock.NewMockClient()
	client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
		return stableService("blue"), nil
	}
	client.Impl.GetDeployment = func(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
		switch deplname {
		case "myapp-blue":
			return slotWorkload(deplname, 2), nil
		case "myapp-green":
			return nil, notFound("deployments", deplname)
		}
		t.Errorf("unexpected workload read: %s", deplname)
		return nil, notFound("deployments", deplname)
	}

	testee := testRegistry(client)
	inactive, err := testee.GetInactive(context.Background())
	if err != nil {
		t.Fatalf("read should succeed: %v", err)
	}

	expected := domain.EnvironmentSlot{
		Name: domain.Green, WorkloadRef: "myapp-green", ServiceRef: "myapp-green",
		ReplicaCount: 0,
	}
	if inactive != expected {
		t.Errorf("inactive slot: (actual, expected) = (%+v, %+v)", inactive, expected)
	}
}

func TestRegistry_SetActive(t *testing.T) {
	ctx := context.Background()

	t.Run("it writes the record and preserves everything else", func(t *testing.T) {
		current := stableService("blue")

		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return current, nil
		}
		var updated *kubecore.Service
		client.Impl.UpdateService = func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
			updated = svc
			return svc, nil
		}

		testee := testRegistry(client)
		if err := testee.SetActive(ctx, domain.Green); err != nil {
			t.Fatalf("write should succeed: %v", err)
		}

		if updated == nil {
			t.Fatal("the stable service is not updated")
		}
		if v := updated.ObjectMeta.Labels[cluster.LabelActiveSlot]; v != "green" {
			t.Errorf("record: (actual, expected) = (%s, green)", v)
		}
		if v := updated.ObjectMeta.Labels[cluster.LabelAppName]; v != "myapp" {
			t.Errorf("unrelated labels should be preserved: %#v", updated.ObjectMeta.Labels)
		}
		if updated.Spec.Selector[cluster.LabelSlot] != "blue" {
			t.Error("the selector is not this method's to change")
		}

		// the read object must not be mutated; updates go through a copy
		if current.ObjectMeta.Labels[cluster.LabelActiveSlot] != "blue" {
			t.Error("the object read from the cluster is mutated in place")
		}
	})

	t.Run("recording the already-active slot is a no-op", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return stableService("green"), nil
		}

		testee := testRegistry(client)
		if err := testee.SetActive(ctx, domain.Green); err != nil {
			t.Fatalf("write should succeed: %v", err)
		}
		if client.Called.UpdateService != 0 {
			t.Errorf("UpdateService should not be called: called %d times", client.Called.UpdateService)
		}
	})

	t.Run("it re-reads and retries on conflict", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return stableService("blue"), nil
		}
		client.Impl.UpdateService = func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
			if client.Called.UpdateService == 1 {
				return nil, kubeerr.NewConflict(
					schema.GroupResource{Resource: "services"}, svc.ObjectMeta.Name,
					errors.New("the object has been modified"),
				)
			}
			return svc, nil
		}

		testee := testRegistry(client)
		if err := testee.SetActive(ctx, domain.Green); err != nil {
			t.Fatalf("write should succeed: %v", err)
		}
		if client.Called.GetService != 2 {
			t.Errorf("each attempt should re-read: GetService called %d times", client.Called.GetService)
		}
		if client.Called.UpdateService != 2 {
			t.Errorf("UpdateService calls: (actual, expected) = (%d, 2)", client.Called.UpdateService)
		}
	})

	t.Run("contention outlasting the budget is a state conflict", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return stableService("blue"), nil
		}
		client.Impl.UpdateService = func(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
			return nil, kubeerr.NewConflict(
				schema.GroupResource{Resource: "services"}, svc.ObjectMeta.Name,
				errors.New("the object has been modified"),
			)
		}

		testee := testRegistry(client)
		err := testee.SetActive(ctx, domain.Green)
		if !relerr.AsStateConflict(err) {
			t.Errorf("error should be a state conflict: %v", err)
		}
		if client.Called.UpdateService != uint64(fastPolicy.MaxAttempts) {
			t.Errorf(
				"UpdateService calls: (actual, expected) = (%d, %d)",
				client.Called.UpdateService, fastPolicy.MaxAttempts,
			)
		}
	})

	t.Run("a missing stable service means the state is unavailable", func(t *testing.T) {
		client := clustermock.NewMockClient()
		client.Impl.GetService = func(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
			return nil, notFound("services", svcname)
		}

		testee := testRegistry(client)
		if err := testee.SetActive(ctx, domain.Green); !relerr.AsStateUnavailable(err) {
			t.Errorf("error should mark the state unavailable: %v", err)
		}
	})

	t.Run("an unknown slot name is rejected before touching the cluster", func(t *testing.T) {
		client := clustermock.NewMockClient()

		testee := testRegistry(client)
		if err := testee.SetActive(ctx, domain.SlotName("purple")); !relerr.AsStateUnavailable(err) {
			t.Errorf("error should mark the state unavailable: %v", err)
		}
		if client.Called.GetService != 0 {
			t.Errorf("GetService should not be called: called %d times", client.Called.GetService)
		}
	})
}
