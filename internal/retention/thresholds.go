package retention

import (
	"fmt"
	"time"
)

// Thresholds are the three boundary instants one run classifies against.
// Records older than Delete are removed unconditionally, records between
// Delete and Monthly compete per calendar month, records between Monthly and
// Weekly compete per ISO week, and anything newer than Weekly is kept.
type Thresholds struct {
	Weekly  time.Time
	Monthly time.Time
	Delete  time.Time
}

// NewThresholds derives the boundaries from now and the three configured
// offsets. now is normalized to UTC so boundary checks are absolute.
func NewThresholds(now time.Time, weekly, monthly, del Period) Thresholds {
	now = now.UTC()
	return Thresholds{
		Weekly:  weekly.Before(now),
		Monthly: monthly.Before(now),
		Delete:  del.Before(now),
	}
}

// Validate rejects boundary orderings under which the tiered bucketing is
// meaningless. It must hold that Delete < Monthly < Weekly <= now.
func (t Thresholds) Validate(now time.Time) error {
	if !t.Delete.Before(t.Monthly) {
		return fmt.Errorf("delete boundary %s must be older than monthly boundary %s", t.Delete.Format(time.RFC3339), t.Monthly.Format(time.RFC3339))
	}
	if !t.Monthly.Before(t.Weekly) {
		return fmt.Errorf("monthly boundary %s must be older than weekly boundary %s", t.Monthly.Format(time.RFC3339), t.Weekly.Format(time.RFC3339))
	}
	if t.Weekly.After(now) {
		return fmt.Errorf("weekly boundary %s must not be in the future", t.Weekly.Format(time.RFC3339))
	}
	return nil
}
