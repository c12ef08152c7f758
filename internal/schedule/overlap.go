// Package schedule contains the pure allocation logic: the half-open
// interval overlap predicate and the best-fit room selector. Nothing in
// this package touches the store or holds state, so every function is
// safe to call from any number of goroutines.
package schedule

import (
	"time"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals intersect. Intervals
// that only share a boundary instant do not overlap, so back-to-back
// bookings are legal.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// FirstConflict scans existing bookings in order and returns the first
// one whose interval overlaps the candidate, or nil if the candidate is
// free to commit.
func FirstConflict(candidate Interval, existing []model.Booking) *model.Booking {
	for i := range existing {
		b := &existing[i]
		if candidate.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			return b
		}
	}
	return nil
}
