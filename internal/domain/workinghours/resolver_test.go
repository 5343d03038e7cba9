package workinghours

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock Repository --

type ownerKey struct {
	kind OwnerKind
	id   uuid.UUID
}

type mockRepo struct {
	records map[ownerKey]*WorkingHours
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[ownerKey]*WorkingHours)}
}

func (m *mockRepo) Get(_ context.Context, kind OwnerKind, ownerID uuid.UUID) (*WorkingHours, error) {
	rec, ok := m.records[ownerKey{kind, ownerID}]
	if !ok || rec.DeletedAt != nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *mockRepo) Upsert(_ context.Context, wh *WorkingHours) error {
	if wh.ID == uuid.Nil {
		wh.ID = uuid.New()
	}
	m.records[ownerKey{wh.OwnerKind, wh.OwnerID}] = wh
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, kind OwnerKind, ownerID uuid.UUID) error {
	if rec, ok := m.records[ownerKey{kind, ownerID}]; ok {
		now := time.Now()
		rec.DeletedAt = &now
	}
	return nil
}

func testResolver(repo Repository) *Resolver {
	return NewResolver(repo, zerolog.Nop())
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %s: %v", s, err)
	}
	return d
}

// -- Tests --

func TestResolve_DefaultWhenNoRecord(t *testing.T) {
	r := testResolver(newMockRepo())
	ctx := context.Background()

	// 2024-01-08 is a Monday.
	es, err := r.Resolve(ctx, OwnerPractitioner, uuid.New(), mustDate(t, "2024-01-08"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.IsOpen {
		t.Fatal("expected default Monday to be open")
	}
	if len(es.Intervals) != 1 || es.Intervals[0].Start != "08:00" || es.Intervals[0].End != "18:00" {
		t.Errorf("intervals = %v, want single 08:00-18:00", es.Intervals)
	}
	if es.SessionDuration != 50 || es.Buffer != 10 {
		t.Errorf("prefs = %d/%d, want 50/10", es.SessionDuration, es.Buffer)
	}

	// 2024-01-07 is a Sunday.
	es, err = r.Resolve(ctx, OwnerPractitioner, uuid.New(), mustDate(t, "2024-01-07"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsOpen {
		t.Error("expected default Sunday to be closed")
	}
}

func TestResolve_WeeklyPatternByWeekday(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	rec := DefaultRecord(OwnerPractitioner, id)
	rec.Weekly[time.Wednesday] = DayHours{
		IsOpen:    true,
		Intervals: []TimeInterval{{Start: "10:00", End: "14:00"}},
	}
	repo.Upsert(context.Background(), rec)

	r := testResolver(repo)

	// 2024-01-10 is a Wednesday.
	es, err := r.Resolve(context.Background(), OwnerPractitioner, id, mustDate(t, "2024-01-10"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(es.Intervals) != 1 || es.Intervals[0].Start != "10:00" {
		t.Errorf("expected Wednesday entry, got %v", es.Intervals)
	}
}

func TestResolve_OverrideWinsOutright(t *testing.T) {
	repo := newMockRepo()
	id := uuid.New()
	ctx := context.Background()

	rec := DefaultRecord(OwnerPractitioner, id)
	rec.Overrides = map[string]DateOverride{
		// 2024-01-01 is a Monday, normally open.
		"2024-01-01": {Date: "2024-01-01", IsOpen: false, Reason: "Holiday"},
		// 2024-01-06 is a Saturday, normally closed.
		"2024-01-06": {Date: "2024-01-06", IsOpen: true,
			Intervals: []TimeInterval{{Start: "09:00", End: "12:00"}}},
	}
	repo.Upsert(ctx, rec)

	r := testResolver(repo)

	es, err := r.Resolve(ctx, OwnerPractitioner, id, mustDate(t, "2024-01-01"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsOpen {
		t.Error("override must force a normally open Monday closed")
	}
	if es.Reason != "Holiday" {
		t.Errorf("reason = %q, want Holiday", es.Reason)
	}
	if !es.IsOverride {
		t.Error("expected is_override to be set")
	}

	es, err = r.Resolve(ctx, OwnerPractitioner, id, mustDate(t, "2024-01-06"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.IsOpen {
		t.Error("override must force a normally closed Saturday open")
	}
	if len(es.Intervals) != 1 || es.Intervals[0].Start != "09:00" {
		t.Errorf("intervals = %v, want single 09:00-12:00", es.Intervals)
	}
}

func TestResolve_ClinicClosedForcesPractitionerClosed(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()
	clinicID := uuid.New()
	practID := uuid.New()

	// Practitioner opens Sundays on their own pattern.
	pRec := DefaultRecord(OwnerPractitioner, practID)
	pRec.Weekly[time.Sunday] = DayHours{
		IsOpen:    true,
		Intervals: []TimeInterval{{Start: "09:00", End: "13:00"}},
	}
	repo.Upsert(ctx, pRec)

	// Clinic keeps the default pattern: closed Sunday.
	r := testResolver(repo)

	es, err := r.Resolve(ctx, OwnerPractitioner, practID, mustDate(t, "2024-01-07"), &clinicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsOpen {
		t.Error("clinic closure must force the practitioner closed")
	}

	// Without the clinic link the practitioner's own Sunday stands.
	es, err = r.Resolve(ctx, OwnerPractitioner, practID, mustDate(t, "2024-01-07"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.IsOpen {
		t.Error("independent practitioner's own Sunday pattern must stand")
	}
}

func TestResolve_ClinicClosureReasonSurfaces(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()
	clinicID := uuid.New()
	practID := uuid.New()

	cRec := DefaultRecord(OwnerClinic, clinicID)
	cRec.Overrides = map[string]DateOverride{
		"2024-01-08": {Date: "2024-01-08", IsOpen: false, Reason: "Renovation"},
	}
	repo.Upsert(ctx, cRec)

	r := testResolver(repo)

	es, err := r.Resolve(ctx, OwnerPractitioner, practID, mustDate(t, "2024-01-08"), &clinicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsOpen {
		t.Fatal("expected closed")
	}
	if es.Reason != "Renovation" {
		t.Errorf("reason = %q, want the clinic's Renovation", es.Reason)
	}
}

func TestResolve_ClinicCannotForceOpen(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()
	clinicID := uuid.New()
	practID := uuid.New()

	// Practitioner closed Mondays by their own pattern; clinic open.
	pRec := DefaultRecord(OwnerPractitioner, practID)
	pRec.Weekly[time.Monday] = DayHours{IsOpen: false}
	repo.Upsert(ctx, pRec)

	r := testResolver(repo)

	es, err := r.Resolve(ctx, OwnerPractitioner, practID, mustDate(t, "2024-01-08"), &clinicID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsOpen {
		t.Error("an open clinic must not force a practitioner open")
	}
}

func TestResolve_MalformedRecordFallsBackToDefault(t *testing.T) {
	repo := newMockRepo()
	ctx := context.Background()
	id := uuid.New()

	rec := DefaultRecord(OwnerPractitioner, id)
	rec.SessionDuration = 9999
	repo.Upsert(ctx, rec)

	r := testResolver(repo)

	es, err := r.Resolve(ctx, OwnerPractitioner, id, mustDate(t, "2024-01-08"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.IsOpen || es.SessionDuration != 50 {
		t.Errorf("malformed record must resolve under the default, got open=%v session=%d",
			es.IsOpen, es.SessionDuration)
	}
}
