package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
)

// ErrNotFound wraps missing-entity failures so handlers can map them to 404.
var ErrNotFound = errors.New("entity not found")

// ScheduleResolver is the effective-schedule contract consumed here.
type ScheduleResolver interface {
	Resolve(ctx context.Context, kind workinghours.OwnerKind, ownerID uuid.UUID, date time.Time, clinicID *uuid.UUID) (*workinghours.EffectiveSchedule, error)
}

// BookingStore is the read-only booking contract: same-day queries only.
type BookingStore interface {
	ListForPractitionerOnDay(ctx context.Context, practitionerID uuid.UUID, day time.Time) ([]*booking.Booking, error)
	ListForRoomOnDay(ctx context.Context, roomID uuid.UUID, day time.Time) ([]*booking.Booking, error)
}

// Directory is the entity-lookup contract for availability queries.
type Directory interface {
	GetPractitioner(ctx context.Context, id uuid.UUID) (*directory.Practitioner, error)
	GetClinic(ctx context.Context, id uuid.UUID) (*directory.Clinic, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*directory.Room, error)
	ListClinicRooms(ctx context.Context, clinicID uuid.UUID) ([]*directory.Room, error)
}

// Result is the availability answer for one practitioner and date.
type Result struct {
	Slots           []Slot `json:"slots"`
	IsOpen          bool   `json:"is_open"`
	Reason          string `json:"reason,omitempty"`
	SessionDuration int    `json:"session_duration"`
}

type Service struct {
	resolver ScheduleResolver
	bookings BookingStore
	dir      Directory
}

func NewService(resolver ScheduleResolver, bookings BookingStore, dir Directory) *Service {
	return &Service{resolver: resolver, bookings: bookings, dir: dir}
}

// slotInstant anchors an HH:MM slot boundary onto the concrete date in UTC.
func slotInstant(date time.Time, hhmm string) time.Time {
	m := workinghours.MinuteOfDay(hhmm)
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, time.UTC)
}

// AvailableSlots answers "what can be booked for practitioner P on date D".
// durationMinutes <= 0 means unspecified; resolution order is the request
// value, then the practitioner's own preference, then the schedule default.
func (s *Service) AvailableSlots(ctx context.Context, practitionerID uuid.UUID, date time.Time, durationMinutes int, includeRooms bool) (*Result, error) {
	pract, err := s.dir.GetPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("%w: practitioner %s", ErrNotFound, practitionerID)
	}

	es, err := s.resolver.Resolve(ctx, workinghours.OwnerPractitioner, practitionerID, date, pract.ClinicID)
	if err != nil {
		return nil, err
	}
	if !es.IsOpen {
		return &Result{Slots: []Slot{}, IsOpen: false, Reason: es.Reason, SessionDuration: es.SessionDuration}, nil
	}

	duration := durationMinutes
	if duration <= 0 && pract.SessionDuration != nil {
		duration = *pract.SessionDuration
	}
	if duration <= 0 {
		duration = es.SessionDuration
	}

	candidates := GenerateSlots(es.Intervals, duration, es.Buffer)

	existing, err := s.bookings.ListForPractitionerOnDay(ctx, practitionerID, date)
	if err != nil {
		return nil, err
	}

	free := []Slot{}
	for _, slot := range candidates {
		start := slotInstant(date, slot.StartTime)
		end := slotInstant(date, slot.EndTime)
		if booking.HasConflict(existing, start, end, uuid.Nil) {
			continue
		}
		free = append(free, slot)
	}

	if includeRooms && pract.ClinicID != nil {
		if err := s.annotateRooms(ctx, *pract.ClinicID, date, free); err != nil {
			return nil, err
		}
	}

	return &Result{Slots: free, IsOpen: true, SessionDuration: duration}, nil
}

// annotateRooms attaches, per slot, the clinic rooms with no conflicting
// booking in that slot. Each room's day bookings are fetched once.
func (s *Service) annotateRooms(ctx context.Context, clinicID uuid.UUID, date time.Time, slots []Slot) error {
	rooms, err := s.dir.ListClinicRooms(ctx, clinicID)
	if err != nil {
		return err
	}
	byRoom := make(map[uuid.UUID][]*booking.Booking, len(rooms))
	for _, rm := range rooms {
		bs, err := s.bookings.ListForRoomOnDay(ctx, rm.ID, date)
		if err != nil {
			return err
		}
		byRoom[rm.ID] = bs
	}
	for i := range slots {
		start := slotInstant(date, slots[i].StartTime)
		end := slotInstant(date, slots[i].EndTime)
		refs := []directory.RoomRef{}
		for _, rm := range rooms {
			if !booking.HasConflict(byRoom[rm.ID], start, end, uuid.Nil) {
				refs = append(refs, rm.Ref())
			}
		}
		slots[i].AvailableRooms = refs
	}
	return nil
}

// RoomsFreeForWindow filters a clinic's active rooms by absence of a
// conflicting booking in the exact [start, end) window.
func (s *Service) RoomsFreeForWindow(ctx context.Context, clinicID uuid.UUID, date time.Time, startHHMM, endHHMM string) ([]*directory.Room, error) {
	window := workinghours.TimeInterval{Start: startHHMM, End: endHHMM}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.dir.GetClinic(ctx, clinicID); err != nil {
		return nil, fmt.Errorf("%w: clinic %s", ErrNotFound, clinicID)
	}

	rooms, err := s.dir.ListClinicRooms(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	start := slotInstant(date, startHHMM)
	end := slotInstant(date, endHHMM)

	free := []*directory.Room{}
	for _, rm := range rooms {
		bs, err := s.bookings.ListForRoomOnDay(ctx, rm.ID, date)
		if err != nil {
			return nil, err
		}
		if !booking.HasConflict(bs, start, end, uuid.Nil) {
			free = append(free, rm)
		}
	}
	return free, nil
}

// BookingView is the display projection of one booking in a day schedule.
type BookingView struct {
	ID               uuid.UUID `json:"id"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	Status           string    `json:"status"`
	PractitionerName string    `json:"practitioner_name"`
	PatientName      string    `json:"patient_name"`
}

// RoomDaySchedule is the read-only projection of one room's day.
type RoomDaySchedule struct {
	Room     directory.RoomRef `json:"room"`
	Date     string            `json:"date"`
	Bookings []BookingView     `json:"bookings"`
}

// DayScheduleForRoom lists a room's bookings for a date with resolved
// names, for display. Not consulted by booking decisions.
func (s *Service) DayScheduleForRoom(ctx context.Context, roomID uuid.UUID, date time.Time) (*RoomDaySchedule, error) {
	rm, err := s.dir.GetRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	bs, err := s.bookings.ListForRoomOnDay(ctx, roomID, date)
	if err != nil {
		return nil, err
	}
	views, err := s.bookingViews(ctx, bs)
	if err != nil {
		return nil, err
	}
	return &RoomDaySchedule{
		Room:     rm.Ref(),
		Date:     date.Format(workinghours.DateLayout),
		Bookings: views,
	}, nil
}

// DayScheduleForClinic returns the day schedule of every active room in a
// clinic.
func (s *Service) DayScheduleForClinic(ctx context.Context, clinicID uuid.UUID, date time.Time) ([]*RoomDaySchedule, error) {
	if _, err := s.dir.GetClinic(ctx, clinicID); err != nil {
		return nil, fmt.Errorf("%w: clinic %s", ErrNotFound, clinicID)
	}
	rooms, err := s.dir.ListClinicRooms(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	schedules := []*RoomDaySchedule{}
	for _, rm := range rooms {
		bs, err := s.bookings.ListForRoomOnDay(ctx, rm.ID, date)
		if err != nil {
			return nil, err
		}
		views, err := s.bookingViews(ctx, bs)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, &RoomDaySchedule{
			Room:     rm.Ref(),
			Date:     date.Format(workinghours.DateLayout),
			Bookings: views,
		})
	}
	return schedules, nil
}

func (s *Service) bookingViews(ctx context.Context, bs []*booking.Booking) ([]BookingView, error) {
	names := make(map[uuid.UUID]string)
	views := make([]BookingView, 0, len(bs))
	for _, b := range bs {
		name, ok := names[b.PractitionerID]
		if !ok {
			if p, err := s.dir.GetPractitioner(ctx, b.PractitionerID); err == nil {
				name = p.Name
			}
			names[b.PractitionerID] = name
		}
		st := b.StartTime.UTC()
		en := b.EndTime().UTC()
		views = append(views, BookingView{
			ID:               b.ID,
			StartTime:        workinghours.FormatMinute(st.Hour()*60 + st.Minute()),
			EndTime:          workinghours.FormatMinute(en.Hour()*60 + en.Minute()),
			Status:           b.Status,
			PractitionerName: name,
			PatientName:      b.PatientName,
		})
	}
	return views, nil
}
