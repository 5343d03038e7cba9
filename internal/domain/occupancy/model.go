package occupancy

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind is the closed set of entities occupancy can be computed for.
// Rooms borrow their parent clinic's working hours.
type EntityKind string

const (
	KindClinic       EntityKind = "clinic"
	KindPractitioner EntityKind = "practitioner"
	KindRoom         EntityKind = "room"
)

// ParseEntityKind validates a string entity kind at the API boundary.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindClinic, KindPractitioner, KindRoom:
		return EntityKind(s), nil
	}
	return "", fmt.Errorf("invalid entity kind: %q (must be clinic, practitioner, or room)", s)
}

// GroupBy sub-period options.
const (
	GroupByDay   = "day"
	GroupByWeek  = "week"
	GroupByMonth = "month"
)

// Summary is the occupancy result for one entity over one period.
type Summary struct {
	Period         string  `json:"period,omitempty"`
	AvailableHours float64 `json:"available_hours"`
	OccupiedHours  float64 `json:"occupied_hours"`
	OccupancyRate  int     `json:"occupancy_rate"`
	BookingCount   int     `json:"booking_count"`
}

// EntitySummary pairs a child entity with its summary in a detailed
// clinic breakdown.
type EntitySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Summary
}

// DetailedBreakdown is the clinic-wide view: the overall summary plus one
// summary per active practitioner and per active room, each sorted by
// descending occupancy rate.
type DetailedBreakdown struct {
	Overall       Summary         `json:"overall"`
	Practitioners []EntitySummary `json:"practitioners"`
	Rooms         []EntitySummary `json:"rooms"`
}

// rate converts hours to the rounded percentage, clamped to [0,100].
// Zero available hours yields zero, never a division error.
func rate(occupied, available float64) int {
	if available <= 0 {
		return 0
	}
	r := int(occupied/available*100 + 0.5)
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
