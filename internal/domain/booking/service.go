package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
)

// ErrConflict signals a double booking attempt.
var ErrConflict = errors.New("requested time conflicts with an existing booking")

// TxRunner executes fn inside one database transaction. Repositories
// participating in the transaction pick it up from the context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Directory is the narrow entity-lookup contract the booking flow needs.
type Directory interface {
	GetPractitioner(ctx context.Context, id uuid.UUID) (*directory.Practitioner, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*directory.Room, error)
}

// ScheduleResolver reports effective open hours, used only to log
// off-hours bookings. Off-hours booking is permitted; only double booking
// is prevented.
type ScheduleResolver interface {
	Resolve(ctx context.Context, kind workinghours.OwnerKind, ownerID uuid.UUID, date time.Time, clinicID *uuid.UUID) (*workinghours.EffectiveSchedule, error)
}

type Service struct {
	repo     Repository
	dir      Directory
	resolver ScheduleResolver
	runTx    TxRunner
	logger   zerolog.Logger
}

func NewService(repo Repository, dir Directory, resolver ScheduleResolver, runTx TxRunner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, dir: dir, resolver: resolver, runTx: runTx, logger: logger}
}

func dayLockKey(entityID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("booking:%s:%s", entityID, day.UTC().Format("2006-01-02"))
}

// Create books a practitioner (and optionally a room) for one interval.
// The conflict check and the insert run in one transaction serialized per
// entity+date, so two racing requests for the same slot cannot both win.
func (s *Service) Create(ctx context.Context, b *Booking) error {
	if b.Status == "" {
		b.Status = StatusScheduled
	}
	if err := b.Validate(); err != nil {
		return err
	}

	pract, err := s.dir.GetPractitioner(ctx, b.PractitionerID)
	if err != nil {
		return fmt.Errorf("practitioner not found: %s", b.PractitionerID)
	}
	if b.RoomID != nil {
		if _, err := s.dir.GetRoom(ctx, *b.RoomID); err != nil {
			return fmt.Errorf("room not found: %s", b.RoomID)
		}
	}

	s.warnIfOffHours(ctx, pract, b)

	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.checkFree(ctx, b.PractitionerID, b.RoomID, b.StartTime, b.EndTime(), uuid.Nil); err != nil {
			return err
		}
		return s.repo.Create(ctx, b)
	})
}

// Reschedule moves an existing booking, excluding the booking itself from
// its own conflict evaluation.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) (*Booking, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("duration_minutes must be positive")
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, fmt.Errorf("cannot reschedule a cancelled booking")
	}

	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.checkFree(ctx, b.PractitionerID, b.RoomID, start, end, b.ID); err != nil {
			return err
		}
		return s.repo.UpdateTimes(ctx, id, start, durationMinutes)
	})
	if err != nil {
		return nil, err
	}

	b.StartTime = start
	b.DurationMinutes = durationMinutes
	return b, nil
}

// Cancel frees the booking's time.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForPractitionerOnDay(ctx context.Context, practitionerID uuid.UUID, day time.Time) ([]*Booking, error) {
	return s.repo.ListForPractitionerOnDay(ctx, practitionerID, day)
}

// checkFree acquires the per-entity day locks, then evaluates the
// candidate interval against the practitioner's and room's same-day
// bookings. Must run inside the surrounding transaction.
func (s *Service) checkFree(ctx context.Context, practitionerID uuid.UUID, roomID *uuid.UUID, start, end time.Time, excludeID uuid.UUID) error {
	if err := s.repo.AcquireDayLock(ctx, dayLockKey(practitionerID, start)); err != nil {
		return err
	}
	if roomID != nil {
		if err := s.repo.AcquireDayLock(ctx, dayLockKey(*roomID, start)); err != nil {
			return err
		}
	}

	existing, err := s.repo.ListForPractitionerOnDay(ctx, practitionerID, start)
	if err != nil {
		return err
	}
	if HasConflict(existing, start, end, excludeID) {
		return ErrConflict
	}

	if roomID != nil {
		roomBookings, err := s.repo.ListForRoomOnDay(ctx, *roomID, start)
		if err != nil {
			return err
		}
		if HasConflict(roomBookings, start, end, excludeID) {
			return ErrConflict
		}
	}
	return nil
}

// warnIfOffHours logs when a booking falls outside the practitioner's
// effective open hours. Policy: permitted, never blocked.
func (s *Service) warnIfOffHours(ctx context.Context, pract *directory.Practitioner, b *Booking) {
	es, err := s.resolver.Resolve(ctx, workinghours.OwnerPractitioner, pract.ID, b.StartTime, pract.ClinicID)
	if err != nil {
		return
	}
	startMin := b.StartTime.UTC().Hour()*60 + b.StartTime.UTC().Minute()
	endMin := startMin + b.DurationMinutes
	if es.IsOpen {
		for _, ti := range es.Intervals {
			if startMin >= workinghours.MinuteOfDay(ti.Start) && endMin <= workinghours.MinuteOfDay(ti.End) {
				return
			}
		}
	}
	s.logger.Warn().
		Str("practitioner_id", pract.ID.String()).
		Time("start_time", b.StartTime).
		Int("duration_minutes", b.DurationMinutes).
		Msg("booking outside effective open hours")
}
