package workinghours

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
)

// OwnerKind identifies which kind of entity a working-hours record belongs to.
type OwnerKind string

const (
	OwnerClinic       OwnerKind = "clinic"
	OwnerPractitioner OwnerKind = "practitioner"
)

// ParseOwnerKind validates a string owner kind at the API boundary.
func ParseOwnerKind(s string) (OwnerKind, error) {
	switch OwnerKind(s) {
	case OwnerClinic, OwnerPractitioner:
		return OwnerKind(s), nil
	}
	return "", fmt.Errorf("invalid owner kind: %q (must be clinic or practitioner)", s)
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var timeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// TimeInterval is a same-day open window in 24h HH:MM form. Lexical
// comparison of HH:MM strings matches chronological order.
type TimeInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Validate checks format and ordering of a single interval.
func (ti TimeInterval) Validate() error {
	if !timeRe.MatchString(ti.Start) {
		return fmt.Errorf("start time %q must match HH:MM", ti.Start)
	}
	if !timeRe.MatchString(ti.End) {
		return fmt.Errorf("end time %q must match HH:MM", ti.End)
	}
	if ti.Start >= ti.End {
		return fmt.Errorf("interval %s-%s: start must be before end", ti.Start, ti.End)
	}
	return nil
}

// Minutes returns the interval length in minutes. Only valid on a
// validated interval.
func (ti TimeInterval) Minutes() int {
	return MinuteOfDay(ti.End) - MinuteOfDay(ti.Start)
}

// MinuteOfDay converts a validated HH:MM string to minutes after midnight.
func MinuteOfDay(hhmm string) int {
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return h*60 + m
}

// FormatMinute renders minutes after midnight as HH:MM.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ValidateIntervals checks each interval and the non-overlap invariant
// across the ordered set.
func ValidateIntervals(intervals []TimeInterval) error {
	if len(intervals) == 0 {
		return fmt.Errorf("at least one interval is required when open")
	}
	for _, ti := range intervals {
		if err := ti.Validate(); err != nil {
			return err
		}
	}
	sorted := make([]TimeInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return fmt.Errorf("intervals %s-%s and %s-%s overlap",
				sorted[i-1].Start, sorted[i-1].End, sorted[i].Start, sorted[i].End)
		}
	}
	return nil
}

// DayHours is one weekday's entry in the weekly pattern.
type DayHours struct {
	IsOpen    bool           `json:"is_open"`
	Intervals []TimeInterval `json:"intervals,omitempty"`
}

// WeeklyPattern covers every day of week exactly once, indexed by
// time.Weekday (Sunday=0).
type WeeklyPattern [7]DayHours

// Validate checks each open day's interval set.
func (wp WeeklyPattern) Validate() error {
	for d, day := range wp {
		if !day.IsOpen {
			continue
		}
		if err := ValidateIntervals(day.Intervals); err != nil {
			return fmt.Errorf("%s: %w", time.Weekday(d), err)
		}
	}
	return nil
}

// DateOverride pins an exception to one literal calendar date, superseding
// the weekly pattern for that date.
type DateOverride struct {
	Date      string         `json:"date"`
	IsOpen    bool           `json:"is_open"`
	Intervals []TimeInterval `json:"intervals,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// Validate checks the override's date and, when open, its intervals.
func (o DateOverride) Validate() error {
	if _, err := time.Parse(DateLayout, o.Date); err != nil {
		return fmt.Errorf("date %q must match YYYY-MM-DD", o.Date)
	}
	if o.IsOpen {
		return ValidateIntervals(o.Intervals)
	}
	return nil
}

// Session duration and buffer bounds, in minutes.
const (
	MinSessionDuration = 15
	MaxSessionDuration = 240
	MinBuffer          = 0
	MaxBuffer          = 60
)

// WorkingHours is one entity's schedule record: the weekly pattern, its
// date overrides keyed by date, and slot generation preferences. The
// override map makes the at-most-one-per-date invariant structural.
type WorkingHours struct {
	ID              uuid.UUID               `db:"id" json:"id"`
	OwnerKind       OwnerKind               `db:"owner_kind" json:"owner_kind"`
	OwnerID         uuid.UUID               `db:"owner_id" json:"owner_id"`
	Weekly          WeeklyPattern           `db:"weekly" json:"weekly"`
	Overrides       map[string]DateOverride `db:"overrides" json:"overrides,omitempty"`
	SessionDuration int                     `db:"session_duration" json:"session_duration"`
	Buffer          int                     `db:"buffer" json:"buffer"`
	DeletedAt       *time.Time              `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt       time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time               `db:"updated_at" json:"updated_at"`
}

// Validate checks the full record against the schedule invariants.
func (wh *WorkingHours) Validate() error {
	if wh.OwnerKind != OwnerClinic && wh.OwnerKind != OwnerPractitioner {
		return fmt.Errorf("invalid owner kind: %q", wh.OwnerKind)
	}
	if wh.OwnerID == uuid.Nil {
		return fmt.Errorf("owner_id is required")
	}
	if err := wh.Weekly.Validate(); err != nil {
		return err
	}
	for date, o := range wh.Overrides {
		if o.Date != date {
			return fmt.Errorf("override key %q does not match override date %q", date, o.Date)
		}
		if err := o.Validate(); err != nil {
			return err
		}
	}
	if wh.SessionDuration < MinSessionDuration || wh.SessionDuration > MaxSessionDuration {
		return fmt.Errorf("session_duration must be between %d and %d minutes",
			MinSessionDuration, MaxSessionDuration)
	}
	if wh.Buffer < MinBuffer || wh.Buffer > MaxBuffer {
		return fmt.Errorf("buffer must be between %d and %d minutes", MinBuffer, MaxBuffer)
	}
	return nil
}

// Default schedule used whenever an entity has no stored record: open
// Monday through Friday 08:00-18:00, weekend closed, 50 minute sessions
// with a 10 minute buffer. Callers rely on this convention silently.
const (
	DefaultSessionDuration = 50
	DefaultBuffer          = 10
)

// DefaultRecord builds the built-in schedule for an entity with no record.
func DefaultRecord(kind OwnerKind, ownerID uuid.UUID) *WorkingHours {
	wh := &WorkingHours{
		OwnerKind:       kind,
		OwnerID:         ownerID,
		SessionDuration: DefaultSessionDuration,
		Buffer:          DefaultBuffer,
	}
	for d := time.Monday; d <= time.Friday; d++ {
		wh.Weekly[d] = DayHours{
			IsOpen:    true,
			Intervals: []TimeInterval{{Start: "08:00", End: "18:00"}},
		}
	}
	return wh
}

// EffectiveSchedule is the final open/closed determination for one entity
// on one concrete date, after override and clinic-precedence rules.
type EffectiveSchedule struct {
	IsOpen          bool           `json:"is_open"`
	Intervals       []TimeInterval `json:"intervals,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	IsOverride      bool           `json:"is_override"`
	SessionDuration int            `json:"session_duration"`
	Buffer          int            `json:"buffer"`
}

// OpenMinutes sums the open interval durations.
func (es *EffectiveSchedule) OpenMinutes() int {
	if !es.IsOpen {
		return 0
	}
	total := 0
	for _, ti := range es.Intervals {
		total += ti.Minutes()
	}
	return total
}
