// SPDX-License-Identifier: Apache-2.0

package sorting

import (
	"testing"

	"github.com/jaevans/harvester-auto-backup/internal/backup"
)

func TestByName(t *testing.T) {
	items := []backup.Record{
		{Name: "zebra"},
		{Name: "alpha"},
		{Name: "mike"},
		{Name: "bravo"},
	}

	ByName[backup.Record, *backup.Record](items)

	expected := []string{"alpha", "bravo", "mike", "zebra"}

	for i, name := range expected {
		if items[i].Name != name {
			t.Errorf("item %d: expected %q, got %q", i, name, items[i].Name)
		}
	}
}

func TestByNamespacedName(t *testing.T) {
	items := []backup.Record{
		{Namespace: "ns-b", Name: "zebra"},
		{Namespace: "ns-a", Name: "alpha"},
		{Namespace: "ns-b", Name: "alpha"},
		{Namespace: "ns-a", Name: "bravo"},
	}

	ByNamespacedName[backup.Record, *backup.Record](items)

	expected := []struct{ ns, name string }{
		{"ns-a", "alpha"},
		{"ns-a", "bravo"},
		{"ns-b", "alpha"},
		{"ns-b", "zebra"},
	}

	for i, exp := range expected {
		if items[i].Namespace != exp.ns || items[i].Name != exp.name {
			t.Errorf("item %d: expected %s/%s, got %s/%s", i, exp.ns, exp.name, items[i].Namespace, items[i].Name)
		}
	}
}
