package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, practitioner_id, room_id, patient_name, start_time, duration_minutes,
	status, created_at, updated_at`

func (r *repoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PractitionerID, &b.RoomID, &b.PatientName, &b.StartTime,
		&b.DurationMinutes, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO booking (id, practitioner_id, room_id, patient_name, start_time, duration_minutes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.PractitionerID, b.RoomID, b.PatientName, b.StartTime, b.DurationMinutes, b.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
}

func (r *repoPG) UpdateTimes(ctx context.Context, id uuid.UUID, start time.Time, durationMinutes int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET start_time = $2, duration_minutes = $3, updated_at = NOW()
		WHERE id = $1`, id, start, durationMinutes)
	return err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) listRange(ctx context.Context, where string, args ...interface{}) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+bookingCols+` FROM booking WHERE `+where+` ORDER BY start_time`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func (r *repoPG) ListForPractitionerOnDay(ctx context.Context, practitionerID uuid.UUID, day time.Time) ([]*Booking, error) {
	from, to := dayBounds(day)
	return r.listRange(ctx, `practitioner_id = $1 AND start_time >= $2 AND start_time < $3`,
		practitionerID, from, to)
}

func (r *repoPG) ListForRoomOnDay(ctx context.Context, roomID uuid.UUID, day time.Time) ([]*Booking, error) {
	from, to := dayBounds(day)
	return r.listRange(ctx, `room_id = $1 AND start_time >= $2 AND start_time < $3`,
		roomID, from, to)
}

func (r *repoPG) ListForPractitionerInRange(ctx context.Context, practitionerID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	return r.listRange(ctx, `practitioner_id = $1 AND start_time >= $2 AND start_time < $3`,
		practitionerID, from, to)
}

func (r *repoPG) ListForRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	return r.listRange(ctx, `room_id = $1 AND start_time >= $2 AND start_time < $3`,
		roomID, from, to)
}

func (r *repoPG) ListForClinicInRange(ctx context.Context, clinicID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT b.id, b.practitioner_id, b.room_id, b.patient_name, b.start_time,
			b.duration_minutes, b.status, b.created_at, b.updated_at
		FROM booking b
		JOIN practitioner p ON p.id = b.practitioner_id
		WHERE p.clinic_id = $1 AND b.start_time >= $2 AND b.start_time < $3
		ORDER BY b.start_time`,
		clinicID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// AcquireDayLock takes a transaction-scoped advisory lock keyed by
// entity+date, serializing the conflict check with the write. Row locks
// alone cannot prevent two concurrent inserts into an empty day.
func (r *repoPG) AcquireDayLock(ctx context.Context, key string) error {
	_, err := r.conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	return err
}
