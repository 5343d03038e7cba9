package directory

import (
	"context"

	"github.com/google/uuid"
)

type ClinicRepository interface {
	Create(ctx context.Context, c *Clinic) error
	GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	Update(ctx context.Context, c *Clinic) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Clinic, int, error)
}

type PractitionerRepository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	Update(ctx context.Context, p *Practitioner) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error)
	ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Practitioner, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*Room, error)
	Update(ctx context.Context, r *Room) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Room, error)
}
