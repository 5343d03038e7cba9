package workinghours

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DayEntry is the wire shape for one weekday in a pattern write. The
// request must carry exactly seven entries covering day-of-week 0-6.
type DayEntry struct {
	DayOfWeek int            `json:"day_of_week"`
	IsOpen    bool           `json:"is_open"`
	Intervals []TimeInterval `json:"intervals,omitempty"`
}

// SetPatternRequest replaces an owner's weekly pattern and preferences
// in one all-or-nothing write.
type SetPatternRequest struct {
	Days            []DayEntry `json:"days"`
	SessionDuration *int       `json:"session_duration,omitempty"`
	Buffer          *int       `json:"buffer,omitempty"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the stored record, or the built-in default when none exists.
func (s *Service) Get(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) (*WorkingHours, error) {
	rec, err := s.repo.Get(ctx, kind, ownerID)
	if errors.Is(err, ErrNotFound) {
		return DefaultRecord(kind, ownerID), nil
	}
	return rec, err
}

// SetPattern validates and replaces the owner's weekly pattern. Existing
// date overrides are kept. Rejects the whole write on any violation.
func (s *Service) SetPattern(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, req SetPatternRequest) (*WorkingHours, error) {
	weekly, err := buildWeekly(req.Days)
	if err != nil {
		return nil, err
	}

	rec, err := s.loadOrDefault(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	rec.Weekly = *weekly
	if req.SessionDuration != nil {
		rec.SessionDuration = *req.SessionDuration
	}
	if req.Buffer != nil {
		rec.Buffer = *req.Buffer
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetOverride adds or replaces the override for one calendar date.
func (s *Service) SetOverride(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, o DateOverride) (*WorkingHours, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	rec, err := s.loadOrDefault(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	if rec.Overrides == nil {
		rec.Overrides = make(map[string]DateOverride)
	}
	rec.Overrides[o.Date] = o
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RemoveOverride deletes the override for one date. ErrNotFound when the
// owner has no record or no override exists for that date.
func (s *Service) RemoveOverride(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, date string) (*WorkingHours, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("date %q must match YYYY-MM-DD", date)
	}
	rec, err := s.repo.Get(ctx, kind, ownerID)
	if err != nil {
		return nil, err
	}
	if _, ok := rec.Overrides[date]; !ok {
		return nil, ErrNotFound
	}
	delete(rec.Overrides, date)
	if err := s.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete soft-removes the owner's record; the owner falls back to the
// built-in default schedule.
func (s *Service) Delete(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) error {
	return s.repo.SoftDelete(ctx, kind, ownerID)
}

func (s *Service) loadOrDefault(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) (*WorkingHours, error) {
	rec, err := s.repo.Get(ctx, kind, ownerID)
	if errors.Is(err, ErrNotFound) {
		return DefaultRecord(kind, ownerID), nil
	}
	return rec, err
}

// buildWeekly converts the wire entries into the fixed weekly array,
// enforcing the cover-each-weekday-exactly-once invariant.
func buildWeekly(days []DayEntry) (*WeeklyPattern, error) {
	if len(days) != 7 {
		return nil, fmt.Errorf("weekly pattern must contain exactly 7 day entries, got %d", len(days))
	}
	var weekly WeeklyPattern
	seen := [7]bool{}
	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, fmt.Errorf("day_of_week %d out of range 0-6", d.DayOfWeek)
		}
		if seen[d.DayOfWeek] {
			return nil, fmt.Errorf("day_of_week %d appears more than once", d.DayOfWeek)
		}
		seen[d.DayOfWeek] = true
		weekly[d.DayOfWeek] = DayHours{IsOpen: d.IsOpen, Intervals: d.Intervals}
	}
	return &weekly, nil
}
