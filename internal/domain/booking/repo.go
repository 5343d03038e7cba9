package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateTimes(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error

	// Day queries cover [day 00:00, next day 00:00) in UTC.
	ListForPractitionerOnDay(ctx context.Context, practitionerID uuid.UUID, day time.Time) ([]*Booking, error)
	ListForRoomOnDay(ctx context.Context, roomID uuid.UUID, day time.Time) ([]*Booking, error)

	// Range queries cover [from, to).
	ListForPractitionerInRange(ctx context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Booking, error)
	ListForRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*Booking, error)
	ListForClinicInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Booking, error)

	// AcquireDayLock serializes writers on one entity+date. Must be called
	// inside a transaction; the lock releases on commit or rollback.
	AcquireDayLock(ctx context.Context, key string) error
}
