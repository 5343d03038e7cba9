package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Session duration bounds, shared with the working-hours validation.
const (
	MinSessionDuration = 15
	MaxSessionDuration = 240
)

type Service struct {
	clinics       ClinicRepository
	practitioners PractitionerRepository
	rooms         RoomRepository
}

func NewService(clinics ClinicRepository, practitioners PractitionerRepository, rooms RoomRepository) *Service {
	return &Service{clinics: clinics, practitioners: practitioners, rooms: rooms}
}

// -- Clinic --

func (s *Service) CreateClinic(ctx context.Context, c *Clinic) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.clinics.Create(ctx, c)
}

func (s *Service) GetClinic(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, c *Clinic) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.clinics.Update(ctx, c)
}

func (s *Service) DeleteClinic(ctx context.Context, id uuid.UUID) error {
	return s.clinics.SoftDelete(ctx, id)
}

func (s *Service) ListClinics(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	return s.clinics.List(ctx, limit, offset)
}

// -- Practitioner --

func (s *Service) CreatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.validatePractitioner(ctx, p); err != nil {
		return err
	}
	return s.practitioners.Create(ctx, p)
}

func (s *Service) GetPractitioner(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return s.practitioners.GetByID(ctx, id)
}

func (s *Service) UpdatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if err := s.validatePractitioner(ctx, p); err != nil {
		return err
	}
	return s.practitioners.Update(ctx, p)
}

func (s *Service) DeletePractitioner(ctx context.Context, id uuid.UUID) error {
	return s.practitioners.SoftDelete(ctx, id)
}

func (s *Service) ListPractitioners(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	return s.practitioners.List(ctx, limit, offset)
}

func (s *Service) ListClinicPractitioners(ctx context.Context, clinicID uuid.UUID) ([]*Practitioner, error) {
	return s.practitioners.ListActiveByClinic(ctx, clinicID)
}

func (s *Service) validatePractitioner(ctx context.Context, p *Practitioner) error {
	if p.SessionDuration != nil {
		if *p.SessionDuration < MinSessionDuration || *p.SessionDuration > MaxSessionDuration {
			return fmt.Errorf("session_duration must be between %d and %d minutes",
				MinSessionDuration, MaxSessionDuration)
		}
	}
	if p.ClinicID != nil {
		if _, err := s.clinics.GetByID(ctx, *p.ClinicID); err != nil {
			return fmt.Errorf("clinic not found: %s", p.ClinicID)
		}
	}
	return nil
}

// -- Room --

func (s *Service) CreateRoom(ctx context.Context, rm *Room) error {
	if rm.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rm.ClinicID == uuid.Nil {
		return fmt.Errorf("clinic_id is required")
	}
	if _, err := s.clinics.GetByID(ctx, rm.ClinicID); err != nil {
		return fmt.Errorf("clinic not found: %s", rm.ClinicID)
	}
	return s.rooms.Create(ctx, rm)
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *Service) UpdateRoom(ctx context.Context, rm *Room) error {
	if rm.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.rooms.Update(ctx, rm)
}

func (s *Service) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return s.rooms.SoftDelete(ctx, id)
}

func (s *Service) ListClinicRooms(ctx context.Context, clinicID uuid.UUID) ([]*Room, error) {
	return s.rooms.ListActiveByClinic(ctx, clinicID)
}
