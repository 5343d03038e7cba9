package occupancy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/booking"
	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
)

// ErrNotFound wraps missing-entity failures so handlers can map them to 404.
var ErrNotFound = errors.New("entity not found")

// MaxRangeDays bounds the per-day iteration of a single request.
const MaxRangeDays = 366

// ScheduleResolver is the effective-schedule contract consumed here.
type ScheduleResolver interface {
	Resolve(ctx context.Context, kind workinghours.OwnerKind, ownerID uuid.UUID, date time.Time, clinicID *uuid.UUID) (*workinghours.EffectiveSchedule, error)
}

// BookingStore is the read-only booking contract for range aggregation.
type BookingStore interface {
	ListForPractitionerInRange(ctx context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*booking.Booking, error)
	ListForRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*booking.Booking, error)
	ListForClinicInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*booking.Booking, error)
}

// Directory is the entity-lookup contract for occupancy queries.
type Directory interface {
	GetClinic(ctx context.Context, id uuid.UUID) (*directory.Clinic, error)
	GetPractitioner(ctx context.Context, id uuid.UUID) (*directory.Practitioner, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*directory.Room, error)
	ListClinicPractitioners(ctx context.Context, clinicID uuid.UUID) ([]*directory.Practitioner, error)
	ListClinicRooms(ctx context.Context, clinicID uuid.UUID) ([]*directory.Room, error)
}

type Service struct {
	resolver ScheduleResolver
	bookings BookingStore
	dir      Directory
}

func NewService(resolver ScheduleResolver, bookings BookingStore, dir Directory) *Service {
	return &Service{resolver: resolver, bookings: bookings, dir: dir}
}

// target is the resolved dispatch for one entity: which record supplies
// the schedule and which booking query applies. Selected once at the
// boundary instead of string-switching per day.
type target struct {
	kind      EntityKind
	id        uuid.UUID
	schedKind workinghours.OwnerKind
	schedID   uuid.UUID
	clinicID  *uuid.UUID
}

func (s *Service) resolveTarget(ctx context.Context, kind EntityKind, id uuid.UUID) (*target, error) {
	switch kind {
	case KindClinic:
		if _, err := s.dir.GetClinic(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: clinic %s", ErrNotFound, id)
		}
		return &target{kind: kind, id: id, schedKind: workinghours.OwnerClinic, schedID: id}, nil
	case KindPractitioner:
		p, err := s.dir.GetPractitioner(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: practitioner %s", ErrNotFound, id)
		}
		return &target{kind: kind, id: id, schedKind: workinghours.OwnerPractitioner, schedID: id, clinicID: p.ClinicID}, nil
	case KindRoom:
		rm, err := s.dir.GetRoom(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: room %s", ErrNotFound, id)
		}
		// Rooms borrow their parent clinic's working hours.
		return &target{kind: kind, id: id, schedKind: workinghours.OwnerClinic, schedID: rm.ClinicID}, nil
	}
	return nil, fmt.Errorf("invalid entity kind: %q", kind)
}

func validateRange(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("end_date must not be before start_date")
	}
	if int(to.Sub(from).Hours()/24)+1 > MaxRangeDays {
		return fmt.Errorf("date range exceeds %d days", MaxRangeDays)
	}
	return nil
}

// Summarize computes occupancy for one entity over [from, to] inclusive.
func (s *Service) Summarize(ctx context.Context, kind EntityKind, id uuid.UUID, from, to time.Time) (*Summary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	tgt, err := s.resolveTarget(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, tgt, from, to)
}

// SummarizeGrouped repeats the computation per sub-period: each calendar
// day, each 7-day window aligned to the range start, or each calendar
// month clipped to the range.
func (s *Service) SummarizeGrouped(ctx context.Context, kind EntityKind, id uuid.UUID, from, to time.Time, groupBy string) ([]*Summary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	tgt, err := s.resolveTarget(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	var periods []period
	switch groupBy {
	case GroupByDay:
		periods = dayPeriods(from, to)
	case GroupByWeek:
		periods = weekPeriods(from, to)
	case GroupByMonth:
		periods = monthPeriods(from, to)
	default:
		return nil, fmt.Errorf("group_by must be day, week, or month")
	}

	summaries := make([]*Summary, 0, len(periods))
	for _, p := range periods {
		sum, err := s.summarize(ctx, tgt, p.from, p.to)
		if err != nil {
			return nil, err
		}
		sum.Period = p.label
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// SummarizeDetailed is the clinic-only breakdown: the overall summary
// plus per-practitioner and per-room summaries sorted by descending rate.
func (s *Service) SummarizeDetailed(ctx context.Context, clinicID uuid.UUID, from, to time.Time) (*DetailedBreakdown, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	tgt, err := s.resolveTarget(ctx, KindClinic, clinicID)
	if err != nil {
		return nil, err
	}

	overall, err := s.summarize(ctx, tgt, from, to)
	if err != nil {
		return nil, err
	}

	practitioners, err := s.dir.ListClinicPractitioners(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	pSums := make([]EntitySummary, 0, len(practitioners))
	for _, p := range practitioners {
		sum, err := s.Summarize(ctx, KindPractitioner, p.ID, from, to)
		if err != nil {
			return nil, err
		}
		pSums = append(pSums, EntitySummary{ID: p.ID, Name: p.Name, Summary: *sum})
	}

	rooms, err := s.dir.ListClinicRooms(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	rSums := make([]EntitySummary, 0, len(rooms))
	for _, rm := range rooms {
		sum, err := s.Summarize(ctx, KindRoom, rm.ID, from, to)
		if err != nil {
			return nil, err
		}
		rSums = append(rSums, EntitySummary{ID: rm.ID, Name: rm.Name, Summary: *sum})
	}

	byRateDesc := func(es []EntitySummary) func(i, j int) bool {
		return func(i, j int) bool { return es[i].OccupancyRate > es[j].OccupancyRate }
	}
	sort.SliceStable(pSums, byRateDesc(pSums))
	sort.SliceStable(rSums, byRateDesc(rSums))

	return &DetailedBreakdown{Overall: *overall, Practitioners: pSums, Rooms: rSums}, nil
}

// summarize computes one summary for an already resolved target. Any
// failure propagates; no zero-rate substitution.
func (s *Service) summarize(ctx context.Context, tgt *target, from, to time.Time) (*Summary, error) {
	availableMin := 0
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		es, err := s.resolver.Resolve(ctx, tgt.schedKind, tgt.schedID, d, tgt.clinicID)
		if err != nil {
			return nil, err
		}
		availableMin += es.OpenMinutes()
	}

	rangeFrom := dateOnly(from)
	rangeTo := dateOnly(to).AddDate(0, 0, 1)
	var bs []*booking.Booking
	var err error
	switch tgt.kind {
	case KindClinic:
		bs, err = s.bookings.ListForClinicInRange(ctx, tgt.id, rangeFrom, rangeTo)
	case KindPractitioner:
		bs, err = s.bookings.ListForPractitionerInRange(ctx, tgt.id, rangeFrom, rangeTo)
	case KindRoom:
		bs, err = s.bookings.ListForRoomInRange(ctx, tgt.id, rangeFrom, rangeTo)
	}
	if err != nil {
		return nil, err
	}

	occupiedMin, count := 0, 0
	for _, b := range bs {
		if !b.BlocksTime() {
			continue
		}
		occupiedMin += b.DurationMinutes
		count++
	}

	available := float64(availableMin) / 60
	occupied := float64(occupiedMin) / 60
	return &Summary{
		AvailableHours: available,
		OccupiedHours:  occupied,
		OccupancyRate:  rate(occupied, available),
		BookingCount:   count,
	}, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type period struct {
	label    string
	from, to time.Time
}

func dayPeriods(from, to time.Time) []period {
	var ps []period
	for d := dateOnly(from); !d.After(dateOnly(to)); d = d.AddDate(0, 0, 1) {
		ps = append(ps, period{label: d.Format(workinghours.DateLayout), from: d, to: d})
	}
	return ps
}

// weekPeriods yields 7-day windows aligned to the range start, the last
// one clipped to the range end.
func weekPeriods(from, to time.Time) []period {
	var ps []period
	for start := dateOnly(from); !start.After(dateOnly(to)); start = start.AddDate(0, 0, 7) {
		end := start.AddDate(0, 0, 6)
		if end.After(dateOnly(to)) {
			end = dateOnly(to)
		}
		ps = append(ps, period{
			label: start.Format(workinghours.DateLayout) + "/" + end.Format(workinghours.DateLayout),
			from:  start,
			to:    end,
		})
	}
	return ps
}

// monthPeriods yields calendar months clipped to the range.
func monthPeriods(from, to time.Time) []period {
	var ps []period
	start := dateOnly(from)
	for !start.After(dateOnly(to)) {
		monthEnd := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, -1)
		end := monthEnd
		if end.After(dateOnly(to)) {
			end = dateOnly(to)
		}
		ps = append(ps, period{label: start.Format("2006-01"), from: start, to: end})
		start = monthEnd.AddDate(0, 0, 1)
	}
	return ps
}
