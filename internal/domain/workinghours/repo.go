package workinghours

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an owner has no working-hours record.
var ErrNotFound = errors.New("working hours record not found")

type Repository interface {
	// Get returns the record for one owner, or ErrNotFound.
	Get(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) (*WorkingHours, error)
	// Upsert inserts or replaces the whole record for its owner.
	Upsert(ctx context.Context, wh *WorkingHours) error
	SoftDelete(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) error
}
