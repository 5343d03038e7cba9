package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Booking statuses. Only a cancelled booking frees its time.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

// Booking maps to the booking table.
type Booking struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	PractitionerID  uuid.UUID  `db:"practitioner_id" json:"practitioner_id"`
	RoomID          *uuid.UUID `db:"room_id" json:"room_id,omitempty"`
	PatientName     string     `db:"patient_name" json:"patient_name"`
	StartTime       time.Time  `db:"start_time" json:"start_time"`
	DurationMinutes int        `db:"duration_minutes" json:"duration_minutes"`
	Status          string     `db:"status" json:"status"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// EndTime returns the exclusive end of the booking's half-open interval.
func (b *Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BlocksTime reports whether the booking occupies its interval.
func (b *Booking) BlocksTime() bool {
	return b.Status != StatusCancelled
}

// Validate checks the fields a booking write must carry.
func (b *Booking) Validate() error {
	if b.PractitionerID == uuid.Nil {
		return fmt.Errorf("practitioner_id is required")
	}
	if b.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if b.StartTime.IsZero() {
		return fmt.Errorf("start_time is required")
	}
	if b.DurationMinutes <= 0 {
		return fmt.Errorf("duration_minutes must be positive")
	}
	if b.Status != "" && !validStatuses[b.Status] {
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	return nil
}
