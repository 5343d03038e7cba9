package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/domain/directory"
	"github.com/clinicdesk/clinicdesk/internal/domain/workinghours"
)

// -- Mocks --

type mockRepo struct {
	bookings map[uuid.UUID]*Booking
	locks    []string
}

func newMockRepo() *mockRepo {
	return &mockRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (m *mockRepo) Create(_ context.Context, b *Booking) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = time.Now()
	m.bookings[b.ID] = b
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return b, nil
}

func (m *mockRepo) UpdateTimes(_ context.Context, id uuid.UUID, start time.Time, durationMinutes int) error {
	b, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	b.StartTime = start
	b.DurationMinutes = durationMinutes
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	b, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	b.Status = status
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (m *mockRepo) ListForPractitionerOnDay(_ context.Context, practitionerID uuid.UUID, day time.Time) ([]*Booking, error) {
	var result []*Booking
	for _, b := range m.bookings {
		if b.PractitionerID == practitionerID && sameDay(b.StartTime, day) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForRoomOnDay(_ context.Context, roomID uuid.UUID, day time.Time) ([]*Booking, error) {
	var result []*Booking
	for _, b := range m.bookings {
		if b.RoomID != nil && *b.RoomID == roomID && sameDay(b.StartTime, day) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForPractitionerInRange(_ context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	var result []*Booking
	for _, b := range m.bookings {
		if b.PractitionerID == practitionerID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForRoomInRange(_ context.Context, roomID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	var result []*Booking
	for _, b := range m.bookings {
		if b.RoomID != nil && *b.RoomID == roomID && !b.StartTime.Before(from) && b.StartTime.Before(to) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockRepo) ListForClinicInRange(_ context.Context, _ uuid.UUID, from, to time.Time) ([]*Booking, error) {
	var result []*Booking
	for _, b := range m.bookings {
		if !b.StartTime.Before(from) && b.StartTime.Before(to) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *mockRepo) AcquireDayLock(_ context.Context, key string) error {
	m.locks = append(m.locks, key)
	return nil
}

type mockDirectory struct {
	practitioners map[uuid.UUID]*directory.Practitioner
	rooms         map[uuid.UUID]*directory.Room
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		practitioners: make(map[uuid.UUID]*directory.Practitioner),
		rooms:         make(map[uuid.UUID]*directory.Room),
	}
}

func (m *mockDirectory) GetPractitioner(_ context.Context, id uuid.UUID) (*directory.Practitioner, error) {
	p, ok := m.practitioners[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockDirectory) GetRoom(_ context.Context, id uuid.UUID) (*directory.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return r, nil
}

type alwaysOpenResolver struct{}

func (alwaysOpenResolver) Resolve(_ context.Context, _ workinghours.OwnerKind, _ uuid.UUID, _ time.Time, _ *uuid.UUID) (*workinghours.EffectiveSchedule, error) {
	return &workinghours.EffectiveSchedule{
		IsOpen:          true,
		Intervals:       []workinghours.TimeInterval{{Start: "00:00", End: "23:59"}},
		SessionDuration: 50,
		Buffer:          10,
	}, nil
}

func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockDirectory) {
	repo := newMockRepo()
	dir := newMockDirectory()
	svc := NewService(repo, dir, alwaysOpenResolver{}, passthroughTx, zerolog.Nop())
	return svc, repo, dir
}

func addPractitioner(dir *mockDirectory) uuid.UUID {
	id := uuid.New()
	dir.practitioners[id] = &directory.Practitioner{ID: id, Name: "Dr. Test"}
	return id
}

func addRoom(dir *mockDirectory) uuid.UUID {
	id := uuid.New()
	dir.rooms[id] = &directory.Room{ID: id, ClinicID: uuid.New(), Name: "Room 1"}
	return id
}

// -- Tests --

func TestCreate(t *testing.T) {
	svc, repo, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	b := &Booking{
		PractitionerID:  practID,
		PatientName:     "Alice",
		StartTime:       at(t, "2024-01-08T10:00:00Z"),
		DurationMinutes: 50,
	}
	if err := svc.Create(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", b.Status)
	}
	if len(repo.bookings) != 1 {
		t.Errorf("expected 1 stored booking, got %d", len(repo.bookings))
	}
	if len(repo.locks) != 1 {
		t.Errorf("expected the practitioner day lock taken, got %v", repo.locks)
	}
}

func TestCreate_Conflict(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	first := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &Booking{
		PractitionerID: practID, PatientName: "Bob",
		StartTime: at(t, "2024-01-08T10:30:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, second); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreate_AbuttingDoesNotConflict(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	first := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	abutting := &Booking{
		PractitionerID: practID, PatientName: "Bob",
		StartTime: at(t, "2024-01-08T10:50:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, abutting); err != nil {
		t.Errorf("abutting booking must be allowed, got %v", err)
	}
}

func TestCreate_CancelledFreesSlot(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	first := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replacement := &Booking{
		PractitionerID: practID, PatientName: "Bob",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, replacement); err != nil {
		t.Errorf("cancelled booking must not block, got %v", err)
	}
}

func TestCreate_RoomConflict(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	roomID := addRoom(dir)

	// Two different practitioners, same room, same time.
	first := &Booking{
		PractitionerID: addPractitioner(dir), RoomID: &roomID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &Booking{
		PractitionerID: addPractitioner(dir), RoomID: &roomID, PatientName: "Bob",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, second); !errors.Is(err, ErrConflict) {
		t.Errorf("expected room conflict, got %v", err)
	}
}

func TestCreate_UnknownPractitioner(t *testing.T) {
	svc, _, _ := newTestService()

	b := &Booking{
		PractitionerID: uuid.New(), PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(context.Background(), b); err == nil {
		t.Error("expected error for unknown practitioner")
	}
}

func TestReschedule(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	b := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Overlapping its own old time is fine: the booking excludes itself.
	moved, err := svc.Reschedule(ctx, b.ID, at(t, "2024-01-08T10:20:00Z"), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.StartTime.Equal(at(t, "2024-01-08T10:20:00Z")) {
		t.Errorf("start = %v, want 10:20", moved.StartTime)
	}
}

func TestReschedule_ConflictWithOther(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	first := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	second := &Booking{
		PractitionerID: practID, PatientName: "Bob",
		StartTime: at(t, "2024-01-08T14:00:00Z"), DurationMinutes: 50,
	}
	for _, b := range []*Booking{first, second} {
		if err := svc.Create(ctx, b); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if _, err := svc.Reschedule(ctx, second.ID, at(t, "2024-01-08T10:30:00Z"), 50); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestReschedule_CancelledRejected(t *testing.T) {
	svc, _, dir := newTestService()
	ctx := context.Background()
	practID := addPractitioner(dir)

	b := &Booking{
		PractitionerID: practID, PatientName: "Alice",
		StartTime: at(t, "2024-01-08T10:00:00Z"), DurationMinutes: 50,
	}
	if err := svc.Create(ctx, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Reschedule(ctx, b.ID, at(t, "2024-01-08T12:00:00Z"), 50); err == nil {
		t.Error("expected error rescheduling a cancelled booking")
	}
}

func TestBooking_Validate(t *testing.T) {
	valid := Booking{
		PractitionerID: uuid.New(), PatientName: "Alice",
		StartTime: time.Now(), DurationMinutes: 50, Status: StatusScheduled,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	b := valid
	b.DurationMinutes = 0
	if err := b.Validate(); err == nil {
		t.Error("expected error for zero duration")
	}

	b = valid
	b.Status = "pending"
	if err := b.Validate(); err == nil {
		t.Error("expected error for unknown status")
	}
}
