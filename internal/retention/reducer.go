package retention

import (
	"slices"
	"strings"

	"github.com/jaevans/harvester-auto-backup/internal/backup"
)

// ReduceBuckets keeps the newest record of every bucket and returns the rest
// as deletion candidates. A bucket with a single member contributes nothing.
func ReduceBuckets(buckets map[int][]backup.Record) []backup.Record {
	var out []backup.Record
	for _, records := range buckets {
		if len(records) < 2 {
			continue
		}
		sorted := append([]backup.Record(nil), records...)
		slices.SortFunc(sorted, CompareNewestFirst)
		out = append(out, sorted[1:]...)
	}
	return out
}

// CompareNewestFirst orders records newest first. Creation-time ties are
// broken by name descending, so the survivor of a bucket is deterministic
// even when two backups carry the same second-precision timestamp.
func CompareNewestFirst(a, b backup.Record) int {
	switch {
	case a.CreatedAt.After(b.CreatedAt):
		return -1
	case b.CreatedAt.After(a.CreatedAt):
		return 1
	}
	return strings.Compare(b.Name, a.Name)
}
