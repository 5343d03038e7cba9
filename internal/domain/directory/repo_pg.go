package directory

import (
	"context"

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

// =========== Clinic Repository ===========

type clinicRepoPG struct{ pool *pgxpool.Pool }

func NewClinicRepoPG(pool *pgxpool.Pool) ClinicRepository { return &clinicRepoPG{pool: pool} }

func (r *clinicRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const clinicCols = `id, name, address, phone, timezone, deleted_at, created_at, updated_at`

func (r *clinicRepoPG) scanClinic(row pgx.Row) (*Clinic, error) {
	var c Clinic
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.Phone, &c.Timezone,
		&c.DeletedAt, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *clinicRepoPG) Create(ctx context.Context, c *Clinic) error {
	c.ID = uuid.New()
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO clinic (id, name, address, phone, timezone)
		VALUES ($1,$2,$3,$4,$5)`,
		c.ID, c.Name, c.Address, c.Phone, c.Timezone)
	return err
}

func (r *clinicRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	return r.scanClinic(r.conn(ctx).QueryRow(ctx,
		`SELECT `+clinicCols+` FROM clinic WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *clinicRepoPG) Update(ctx context.Context, c *Clinic) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic SET name=$2, address=$3, phone=$4, timezone=$5, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Name, c.Address, c.Phone, c.Timezone)
	return err
}

func (r *clinicRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE clinic SET deleted_at=NOW(), updated_at=NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *clinicRepoPG) List(ctx context.Context, limit, offset int) ([]*Clinic, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM clinic WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+clinicCols+` FROM clinic WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Clinic
	for rows.Next() {
		c, err := r.scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

// =========== Practitioner Repository ===========

type practitionerRepoPG struct{ pool *pgxpool.Pool }

func NewPractitionerRepoPG(pool *pgxpool.Pool) PractitionerRepository {
	return &practitionerRepoPG{pool: pool}
}

func (r *practitionerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const practitionerCols = `id, clinic_id, name, specialty, email, session_duration,
	deleted_at, created_at, updated_at`

func (r *practitionerRepoPG) scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.ClinicID, &p.Name, &p.Specialty, &p.Email, &p.SessionDuration,
		&p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *practitionerRepoPG) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO practitioner (id, clinic_id, name, specialty, email, session_duration)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.ClinicID, p.Name, p.Specialty, p.Email, p.SessionDuration)
	return err
}

func (r *practitionerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	return r.scanPractitioner(r.conn(ctx).QueryRow(ctx,
		`SELECT `+practitionerCols+` FROM practitioner WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *practitionerRepoPG) Update(ctx context.Context, p *Practitioner) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE practitioner SET clinic_id=$2, name=$3, specialty=$4, email=$5,
			session_duration=$6, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		p.ID, p.ClinicID, p.Name, p.Specialty, p.Email, p.SessionDuration)
	return err
}

func (r *practitionerRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE practitioner SET deleted_at=NOW(), updated_at=NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *practitionerRepoPG) List(ctx context.Context, limit, offset int) ([]*Practitioner, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM practitioner WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+practitionerCols+` FROM practitioner WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Practitioner
	for rows.Next() {
		p, err := r.scanPractitioner(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *practitionerRepoPG) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Practitioner, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+practitionerCols+` FROM practitioner WHERE clinic_id = $1 AND deleted_at IS NULL ORDER BY name`,
		clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Practitioner
	for rows.Next() {
		p, err := r.scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

// =========== Room Repository ===========

type roomRepoPG struct{ pool *pgxpool.Pool }

func NewRoomRepoPG(pool *pgxpool.Pool) RoomRepository { return &roomRepoPG{pool: pool} }

func (r *roomRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const roomCols = `id, clinic_id, name, number, deleted_at, created_at, updated_at`

func (r *roomRepoPG) scanRoom(row pgx.Row) (*Room, error) {
	var rm Room
	err := row.Scan(&rm.ID, &rm.ClinicID, &rm.Name, &rm.Number,
		&rm.DeletedAt, &rm.CreatedAt, &rm.UpdatedAt)
	return &rm, err
}

func (r *roomRepoPG) Create(ctx context.Context, rm *Room) error {
	rm.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO room (id, clinic_id, name, number)
		VALUES ($1,$2,$3,$4)`,
		rm.ID, rm.ClinicID, rm.Name, rm.Number)
	return err
}

func (r *roomRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	return r.scanRoom(r.conn(ctx).QueryRow(ctx,
		`SELECT `+roomCols+` FROM room WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *roomRepoPG) Update(ctx context.Context, rm *Room) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE room SET name=$2, number=$3, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		rm.ID, rm.Name, rm.Number)
	return err
}

func (r *roomRepoPG) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE room SET deleted_at=NOW(), updated_at=NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *roomRepoPG) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]*Room, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+roomCols+` FROM room WHERE clinic_id = $1 AND deleted_at IS NULL ORDER BY name`,
		clinicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Room
	for rows.Next() {
		rm, err := r.scanRoom(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rm)
	}
	return items, nil
}
