// Package backup holds the value model shared by the retention policy and the
// cluster adapter.
package backup

import "time"

// Record identifies one VirtualMachineBackup together with the fields the
// retention policy needs. Records are built fresh from a cluster listing on
// every run and are never mutated afterwards.
type Record struct {
	Namespace string
	Name      string
	VMName    string
	CreatedAt time.Time
}

// GetName implements sorting.NameGetter.
func (r *Record) GetName() string { return r.Name }

// GetNamespace implements sorting.NamespaceGetter.
func (r *Record) GetNamespace() string { return r.Namespace }

func (r Record) String() string { return r.Namespace + "/" + r.Name }
