package cluster

import (
	"context"
	"testing"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	harvesterv1beta1 "github.com/jaevans/harvester-auto-backup/api/harvesterhci/v1beta1"
)

const testLabel = "harvesterhci.io/auto-backup"

func newTestScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	scheme.AddKnownTypeWithName(virtualMachineGVK, &unstructured.Unstructured{})
	scheme.AddKnownTypeWithName(virtualMachineListGVK, &unstructured.UnstructuredList{})
	scheme.AddKnownTypeWithName(harvesterv1beta1.VirtualMachineBackupGVK, &unstructured.Unstructured{})
	scheme.AddKnownTypeWithName(harvesterv1beta1.VirtualMachineBackupListGVK, &unstructured.UnstructuredList{})
	return scheme
}

func vmObject(namespace, name string, labels map[string]string) *unstructured.Unstructured {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(virtualMachineGVK)
	u.SetNamespace(namespace)
	u.SetName(name)
	u.SetLabels(labels)
	return u
}

func backupObject(namespace, name, vmName string, createdAt time.Time) *unstructured.Unstructured {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(harvesterv1beta1.VirtualMachineBackupGVK)
	u.SetNamespace(namespace)
	u.SetName(name)
	u.SetCreationTimestamp(metav1.NewTime(createdAt))
	_ = unstructured.SetNestedField(u.Object, vmName, "spec", "source", "name")
	return u
}

func newTestClient(objs ...client.Object) *Client {
	return NewWithClient(fake.NewClientBuilder().
		WithScheme(newTestScheme()).
		WithObjects(objs...).
		Build())
}

func TestListVMsFiltersByLabel(t *testing.T) {
	c := newTestClient(
		vmObject("default", "vm-a", map[string]string{testLabel: "true"}),
		vmObject("default", "vm-b", nil),
		vmObject("default", "vm-c", map[string]string{testLabel: "false"}),
		vmObject("workloads", "vm-d", map[string]string{testLabel: "true"}),
	)

	vms, err := c.ListVMs(context.Background(), "", testLabel)
	if err != nil {
		t.Fatalf("ListVMs failed: %v", err)
	}
	if len(vms) != 2 {
		t.Fatalf("expected 2 labeled VMs across namespaces, got %v", vms)
	}

	vms, err = c.ListVMs(context.Background(), "workloads", testLabel)
	if err != nil {
		t.Fatalf("ListVMs failed: %v", err)
	}
	if len(vms) != 1 || vms[0].Name != "vm-d" {
		t.Fatalf("expected only vm-d in workloads, got %v", vms)
	}
}

func TestCreateBackupBuildsHarvesterSpec(t *testing.T) {
	c := newTestClient()

	if err := c.CreateBackup(context.Background(), "default", "vm-a", "vm-a-20260830-120000"); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	got := &unstructured.Unstructured{}
	got.SetGroupVersionKind(harvesterv1beta1.VirtualMachineBackupGVK)
	key := client.ObjectKey{Namespace: "default", Name: "vm-a-20260830-120000"}
	if err := c.c.Get(context.Background(), key, got); err != nil {
		t.Fatalf("created backup not found: %v", err)
	}

	if source, _, _ := unstructured.NestedString(got.Object, "spec", "source", "name"); source != "vm-a" {
		t.Errorf("spec.source.name = %q, want vm-a", source)
	}
	if kind, _, _ := unstructured.NestedString(got.Object, "spec", "source", "kind"); kind != "VirtualMachine" {
		t.Errorf("spec.source.kind = %q, want VirtualMachine", kind)
	}
	if group, _, _ := unstructured.NestedString(got.Object, "spec", "source", "apiGroup"); group != "kubevirt.io" {
		t.Errorf("spec.source.apiGroup = %q, want kubevirt.io", group)
	}
	if typ, _, _ := unstructured.NestedString(got.Object, "spec", "type"); typ != string(harvesterv1beta1.TypeBackup) {
		t.Errorf("spec.type = %q, want %q", typ, harvesterv1beta1.TypeBackup)
	}
}

func TestCreateBackupNameConflict(t *testing.T) {
	c := newTestClient(backupObject("default", "vm-a-20260830-120000", "vm-a", time.Now()))
	if err := c.CreateBackup(context.Background(), "default", "vm-a", "vm-a-20260830-120000"); err == nil {
		t.Fatal("expected an error creating a backup that already exists")
	}
}

func TestListBackupsFiltersBySourceVM(t *testing.T) {
	at := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	c := newTestClient(
		backupObject("default", "vm-a-1", "vm-a", at),
		backupObject("default", "vm-a-2", "vm-a", at.Add(24*time.Hour)),
		backupObject("default", "vm-b-1", "vm-b", at),
		backupObject("workloads", "vm-a-3", "vm-a", at),
	)

	records, err := c.ListBackups(context.Background(), "default", "vm-a")
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records for vm-a in default, got %v", records)
	}
	for _, r := range records {
		if r.VMName != "vm-a" || r.Namespace != "default" {
			t.Errorf("unexpected record %+v", r)
		}
		if r.CreatedAt.IsZero() {
			t.Errorf("record %s lost its creation timestamp", r)
		}
	}
}

func TestDeleteBackupIgnoresNotFound(t *testing.T) {
	c := newTestClient(backupObject("default", "vm-a-1", "vm-a", time.Now()))

	if err := c.DeleteBackup(context.Background(), "default", "vm-a-1"); err != nil {
		t.Fatalf("DeleteBackup failed: %v", err)
	}
	// Deleting it again must succeed silently.
	if err := c.DeleteBackup(context.Background(), "default", "vm-a-1"); err != nil {
		t.Fatalf("deleting an absent backup must not fail, got: %v", err)
	}
}
