package cluster

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	harvesterv1beta1 "github.com/jaevans/harvester-auto-backup/api/harvesterhci/v1beta1"
	"github.com/jaevans/harvester-auto-backup/internal/backup"
)

// enabledLabelValue is the value a VM's selector label must carry to opt in.
const enabledLabelValue = "true"

var (
	virtualMachineGVK     = schema.GroupVersionKind{Group: "kubevirt.io", Version: "v1", Kind: "VirtualMachine"}
	virtualMachineListGVK = schema.GroupVersionKind{Group: "kubevirt.io", Version: "v1", Kind: "VirtualMachineList"}
)

// Client implements Interface against a live cluster. KubeVirt and Harvester
// resources are accessed as unstructured content so no generated clientsets
// are needed for foreign CRDs.
type Client struct {
	c client.Client
}

// New builds a Client from a rest.Config.
func New(cfg *rest.Config) (*Client, error) {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	c, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster client: %w", err)
	}
	return &Client{c: c}, nil
}

// NewWithClient wraps an existing controller-runtime client.
func NewWithClient(c client.Client) *Client {
	return &Client{c: c}
}

func (c *Client) ListVMs(ctx context.Context, namespace, labelKey string) ([]VirtualMachine, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(virtualMachineListGVK)

	opts := []client.ListOption{client.MatchingLabels{labelKey: enabledLabelValue}}
	if namespace != "" {
		opts = append(opts, client.InNamespace(namespace))
	}
	if err := c.c.List(ctx, list, opts...); err != nil {
		return nil, fmt.Errorf("failed to list virtual machines: %w", err)
	}

	vms := make([]VirtualMachine, 0, len(list.Items))
	for _, item := range list.Items {
		vms = append(vms, VirtualMachine{Namespace: item.GetNamespace(), Name: item.GetName()})
	}
	return vms, nil
}

func (c *Client) CreateBackup(ctx context.Context, namespace, vmName, backupName string) error {
	spec := harvesterv1beta1.VirtualMachineBackupSpec{
		Source: corev1.TypedLocalObjectReference{
			APIGroup: ptr.To(virtualMachineGVK.Group),
			Kind:     virtualMachineGVK.Kind,
			Name:     vmName,
		},
		Type: harvesterv1beta1.TypeBackup,
	}
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&spec)
	if err != nil {
		return fmt.Errorf("failed to convert backup spec: %w", err)
	}

	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(harvesterv1beta1.VirtualMachineBackupGVK)
	obj.SetNamespace(namespace)
	obj.SetName(backupName)
	if err := unstructured.SetNestedMap(obj.Object, content, "spec"); err != nil {
		return fmt.Errorf("failed to set backup spec: %w", err)
	}

	if err := c.c.Create(ctx, obj); err != nil {
		return fmt.Errorf("failed to create backup %s/%s: %w", namespace, backupName, err)
	}
	return nil
}

func (c *Client) ListBackups(ctx context.Context, namespace, vmName string) ([]backup.Record, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(harvesterv1beta1.VirtualMachineBackupListGVK)

	if err := c.c.List(ctx, list, client.InNamespace(namespace)); err != nil {
		return nil, fmt.Errorf("failed to list backups in %s: %w", namespace, err)
	}

	var records []backup.Record
	for _, item := range list.Items {
		source, _, err := unstructured.NestedString(item.Object, "spec", "source", "name")
		if err != nil || source != vmName {
			continue
		}
		records = append(records, backup.Record{
			Namespace: item.GetNamespace(),
			Name:      item.GetName(),
			VMName:    source,
			CreatedAt: item.GetCreationTimestamp().Time.UTC(),
		})
	}
	return records, nil
}

func (c *Client) DeleteBackup(ctx context.Context, namespace, name string) error {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(harvesterv1beta1.VirtualMachineBackupGVK)
	obj.SetNamespace(namespace)
	obj.SetName(name)

	// A backup that is already gone counts as deleted.
	if err := client.IgnoreNotFound(c.c.Delete(ctx, obj)); err != nil {
		return fmt.Errorf("failed to delete backup %s/%s: %w", namespace, name, err)
	}
	return nil
}
