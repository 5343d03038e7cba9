package directory

import (
	"time"

	"github.com/google/uuid"
)

// Clinic maps to the clinic table.
type Clinic struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Address   *string    `db:"address" json:"address,omitempty"`
	Phone     *string    `db:"phone" json:"phone,omitempty"`
	Timezone  string     `db:"timezone" json:"timezone"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the clinic has not been soft-removed.
func (c *Clinic) Active() bool { return c.DeletedAt == nil }

// Practitioner maps to the practitioner table. ClinicID is nil for
// independent practitioners.
type Practitioner struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ClinicID        *uuid.UUID `db:"clinic_id" json:"clinic_id,omitempty"`
	Name            string     `db:"name" json:"name"`
	Specialty       *string    `db:"specialty" json:"specialty,omitempty"`
	Email           *string    `db:"email" json:"email,omitempty"`
	SessionDuration *int       `db:"session_duration" json:"session_duration,omitempty"`
	DeletedAt       *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the practitioner has not been soft-removed.
func (p *Practitioner) Active() bool { return p.DeletedAt == nil }

// Room maps to the room table. Rooms always belong to a clinic.
type Room struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	ClinicID  uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	Name      string     `db:"name" json:"name"`
	Number    *string    `db:"number" json:"number,omitempty"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Active reports whether the room has not been soft-removed.
func (r *Room) Active() bool { return r.DeletedAt == nil }

// RoomRef is the display shape attached to availability responses.
type RoomRef struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Number string    `json:"number,omitempty"`
}

// Ref returns the display reference for a room.
func (r *Room) Ref() RoomRef {
	ref := RoomRef{ID: r.ID, Name: r.Name}
	if r.Number != nil {
		ref.Number = *r.Number
	}
	return ref
}
