package booking

import (
	"time"

	"github.com/google/uuid"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Abutting intervals do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict checks a candidate interval against a set of same-day
// bookings, skipping cancelled bookings and an optional excluded booking
// id (used when re-evaluating a booking being edited). Pure read.
func HasConflict(bookings []*Booking, start, end time.Time, excludeID uuid.UUID) bool {
	for _, b := range bookings {
		if !b.BlocksTime() {
			continue
		}
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime()) {
			return true
		}
	}
	return false
}
