package workinghours

import (
	"context"
	"encoding/json"
	"errors"

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

const whCols = `id, owner_kind, owner_id, weekly, overrides, session_duration, buffer,
	deleted_at, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*WorkingHours, error) {
	var wh WorkingHours
	var weekly, overrides []byte
	err := row.Scan(&wh.ID, &wh.OwnerKind, &wh.OwnerID, &weekly, &overrides,
		&wh.SessionDuration, &wh.Buffer, &wh.DeletedAt, &wh.CreatedAt, &wh.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weekly, &wh.Weekly); err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := json.Unmarshal(overrides, &wh.Overrides); err != nil {
			return nil, err
		}
	}
	return &wh, nil
}

func (r *repoPG) Get(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) (*WorkingHours, error) {
	wh, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+whCols+` FROM working_hours
		 WHERE owner_kind = $1 AND owner_id = $2 AND deleted_at IS NULL`,
		kind, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return wh, err
}

func (r *repoPG) Upsert(ctx context.Context, wh *WorkingHours) error {
	if wh.ID == uuid.Nil {
		wh.ID = uuid.New()
	}
	weekly, err := json.Marshal(wh.Weekly)
	if err != nil {
		return err
	}
	overrides, err := json.Marshal(wh.Overrides)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO working_hours (id, owner_kind, owner_id, weekly, overrides, session_duration, buffer)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (owner_kind, owner_id) WHERE deleted_at IS NULL
		DO UPDATE SET weekly = EXCLUDED.weekly, overrides = EXCLUDED.overrides,
			session_duration = EXCLUDED.session_duration, buffer = EXCLUDED.buffer,
			updated_at = NOW()`,
		wh.ID, wh.OwnerKind, wh.OwnerID, weekly, overrides, wh.SessionDuration, wh.Buffer)
	return err
}

func (r *repoPG) SoftDelete(ctx context.Context, kind OwnerKind, ownerID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE working_hours SET deleted_at = NOW(), updated_at = NOW()
		WHERE owner_kind = $1 AND owner_id = $2 AND deleted_at IS NULL`,
		kind, ownerID)
	return err
}
