// Package cluster narrows cluster access down to the four operations the
// backup run needs: discovering labeled VMs, creating a backup, listing a
// VM's backups and deleting one.
package cluster

import (
	"context"

	"github.com/jaevans/harvester-auto-backup/internal/backup"
)

// VirtualMachine identifies one discovered source VM.
type VirtualMachine struct {
	Namespace string
	Name      string
}

// GetName implements sorting.NameGetter.
func (v *VirtualMachine) GetName() string { return v.Name }

// GetNamespace implements sorting.NamespaceGetter.
func (v *VirtualMachine) GetNamespace() string { return v.Namespace }

func (v VirtualMachine) String() string { return v.Namespace + "/" + v.Name }

// Interface is what the orchestrator consumes. All calls may block on the
// cluster API and fail fast; retries belong to the API client, not here.
type Interface interface {
	// ListVMs returns VMs carrying labelKey=true, across all namespaces when
	// namespace is empty. An empty result is valid.
	ListVMs(ctx context.Context, namespace, labelKey string) ([]VirtualMachine, error)

	// CreateBackup creates a VirtualMachineBackup of vmName under backupName.
	// A name conflict surfaces as an error.
	CreateBackup(ctx context.Context, namespace, vmName, backupName string) error

	// ListBackups returns every backup in namespace whose source VM is vmName.
	ListBackups(ctx context.Context, namespace, vmName string) ([]backup.Record, error)

	// DeleteBackup deletes one backup; deleting a backup that is already gone
	// succeeds silently.
	DeleteBackup(ctx context.Context, namespace, name string) error
}
