// SPDX-License-Identifier: Apache-2.0
// Package v1beta1 mirrors the slice of the harvesterhci.io/v1beta1 API this
// tool reads and writes. Only the fields we touch are modeled; objects cross
// the wire as unstructured content.
//
// Group: harvesterhci.io
// Version: v1beta1
package v1beta1

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// GroupVersion is the group/version of the Harvester backup resources.
var GroupVersion = schema.GroupVersion{Group: "harvesterhci.io", Version: "v1beta1"}

var (
	VirtualMachineBackupGVK     = GroupVersion.WithKind("VirtualMachineBackup")
	VirtualMachineBackupListGVK = GroupVersion.WithKind("VirtualMachineBackupList")
)

// BackupType distinguishes backups stored in a backup target from in-cluster
// snapshots.
type BackupType string

const (
	TypeBackup   BackupType = "backup"
	TypeSnapshot BackupType = "snapshot"
)

// VirtualMachineBackupSpec is the spec of a harvesterhci.io VirtualMachineBackup.
type VirtualMachineBackupSpec struct {
	// Source refers to the VirtualMachine this backup is taken from.
	Source corev1.TypedLocalObjectReference `json:"source"`

	// Type of the backup. Defaults to "backup" when empty.
	// +optional
	Type BackupType `json:"type,omitempty"`
}
