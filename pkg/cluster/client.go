// Package cluster talks to the Kubernetes control plane for the release
// machinery: it owns the slot workloads, the slot services and the stable
// routing service of the managed application.
//
// Client is the thin, mockable subset of *kubernetes.Clientset the package
// needs; Gateway implements the release operations on top of it.
package cluster

import (
	"context"

	kubeapps "k8s.io/api/apps/v1"
	kubeautoscaling "k8s.io/api/autoscaling/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	kubetypes "k8s.io/apimachinery/pkg/types"
	k8s "k8s.io/client-go/kubernetes"
)

// subset of k8s.Clientset
type Client interface {
	GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error)
	CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
	UpdateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error)
	PatchService(ctx context.Context, namespace string, svcname string, patchType kubetypes.PatchType, patch []byte) (*kubecore.Service, error)

	GetDeployment(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error)
	CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)
	UpdateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error)

	GetScale(ctx context.Context, namespace string, deplname string) (*kubeautoscaling.Scale, error)
	UpdateScale(ctx context.Context, namespace string, deplname string, scale *kubeautoscaling.Scale) (*kubeautoscaling.Scale, error)

	FindPods(ctx context.Context, namespace string, labelSelector LabelSelector) ([]kubecore.Pod, error)
}

// A wrapper for the type k8s.Clientset; because it does not prefer method
// chain-style invocations of that type.
type k8sClient struct {
	client *k8s.Clientset
}

// type check: k8sClient implements Client
var _ Client = &k8sClient{}

func WrapClientset(c *k8s.Clientset) Client {
	return &k8sClient{client: c}
}

func (k *k8sClient) GetService(ctx context.Context, namespace string, svcname string) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Get(ctx, svcname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) CreateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Create(ctx, svc, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) UpdateService(ctx context.Context, namespace string, svc *kubecore.Service) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Update(ctx, svc, kubeapimeta.UpdateOptions{})
}

func (k *k8sClient) PatchService(ctx context.Context, namespace string, svcname string, patchType kubetypes.PatchType, patch []byte) (*kubecore.Service, error) {
	return k.client.CoreV1().Services(namespace).Patch(ctx, svcname, patchType, patch, kubeapimeta.PatchOptions{})
}

func (k *k8sClient) GetDeployment(ctx context.Context, namespace string, deplname string) (*kubeapps.Deployment, error) {
	return k.client.AppsV1().Deployments(namespace).Get(ctx, deplname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) CreateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	return k.client.AppsV1().Deployments(namespace).Create(ctx, depl, kubeapimeta.CreateOptions{})
}

func (k *k8sClient) UpdateDeployment(ctx context.Context, namespace string, depl *kubeapps.Deployment) (*kubeapps.Deployment, error) {
	return k.client.AppsV1().Deployments(namespace).Update(ctx, depl, kubeapimeta.UpdateOptions{})
}

func (k *k8sClient) GetScale(ctx context.Context, namespace string, deplname string) (*kubeautoscaling.Scale, error) {
	return k.client.AppsV1().Deployments(namespace).GetScale(ctx, deplname, kubeapimeta.GetOptions{})
}

func (k *k8sClient) UpdateScale(ctx context.Context, namespace string, deplname string, scale *kubeautoscaling.Scale) (*kubeautoscaling.Scale, error) {
	return k.client.AppsV1().Deployments(namespace).UpdateScale(ctx, deplname, scale, kubeapimeta.UpdateOptions{})
}

func (k *k8sClient) FindPods(ctx context.Context, namespace string, labels LabelSelector) ([]kubecore.Pod, error) {
	resp, err := k.client.CoreV1().Pods(namespace).List(ctx, kubeapimeta.ListOptions{
		LabelSelector: labels.QueryString(),
	})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
