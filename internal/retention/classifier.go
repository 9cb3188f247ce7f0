// Package retention decides which of a VM's backups survive a run. Records
// are classified into age tiers against three boundary instants, the middle
// tiers are grouped into week and month buckets, and every bucket is then
// reduced to a single survivor.
package retention

import (
	"github.com/jaevans/harvester-auto-backup/internal/backup"
	"github.com/jaevans/harvester-auto-backup/internal/sorting"
)

// Classification is the outcome of bucketing one VM's backup records.
// Delete holds records past the delete boundary; WeekBuckets and MonthBuckets
// group the middle tiers by bare ISO week number and calendar month number.
// The keys deliberately carry no year. With the default offsets the month
// tier spans well under a year of history, so records from different years do
// not actually share a bucket.
type Classification struct {
	Delete       []backup.Record
	WeekBuckets  map[int][]backup.Record
	MonthBuckets map[int][]backup.Record
}

// Classify partitions records against the thresholds. Each record lands in
// exactly one place, evaluated oldest tier first with a strict before-check
// at every boundary: a record created exactly on a boundary belongs to the
// more recent tier. Records newer than the weekly boundary are always kept
// and appear in no structure. Classify is pure; it never mutates its inputs.
func Classify(records []backup.Record, t Thresholds) Classification {
	c := Classification{
		WeekBuckets:  make(map[int][]backup.Record),
		MonthBuckets: make(map[int][]backup.Record),
	}
	for _, r := range records {
		switch {
		case r.CreatedAt.Before(t.Delete):
			c.Delete = append(c.Delete, r)
		case r.CreatedAt.Before(t.Monthly):
			month := int(r.CreatedAt.Month())
			c.MonthBuckets[month] = append(c.MonthBuckets[month], r)
		case r.CreatedAt.Before(t.Weekly):
			_, week := r.CreatedAt.ISOWeek()
			c.WeekBuckets[week] = append(c.WeekBuckets[week], r)
		}
	}
	return c
}

// Prune returns the full deletion set for this classification: everything
// past the delete boundary plus every non-survivor from the week and month
// buckets, sorted by namespace/name for stable processing order.
func (c Classification) Prune() []backup.Record {
	out := append([]backup.Record(nil), c.Delete...)
	out = append(out, ReduceBuckets(c.WeekBuckets)...)
	out = append(out, ReduceBuckets(c.MonthBuckets)...)
	sorting.ByNamespacedName[backup.Record, *backup.Record](out)
	return out
}
