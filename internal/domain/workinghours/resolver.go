package workinghours

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Resolver computes the effective schedule for one entity on one concrete
// date: date overrides win outright over the weekly pattern, and a closed
// clinic forces its practitioners closed. All methods are pure reads and
// safe for concurrent use.
type Resolver struct {
	repo   Repository
	logger zerolog.Logger
}

func NewResolver(repo Repository, logger zerolog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve returns the effective schedule for the owner on the given date.
// For practitioners, pass the employing clinic's id (nil when independent)
// so clinic closure can take precedence. A missing or malformed record
// resolves under the built-in default.
func (r *Resolver) Resolve(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, date time.Time, clinicID *uuid.UUID) (*EffectiveSchedule, error) {
	es, err := r.resolveOwn(ctx, kind, ownerID, date)
	if err != nil {
		return nil, err
	}

	// A closed clinic forces its practitioners closed, never the reverse.
	if kind == OwnerPractitioner && clinicID != nil && es.IsOpen {
		clinicES, err := r.resolveOwn(ctx, OwnerClinic, *clinicID, date)
		if err != nil {
			return nil, err
		}
		if !clinicES.IsOpen {
			return &EffectiveSchedule{
				IsOpen:          false,
				Reason:          clinicES.Reason,
				IsOverride:      clinicES.IsOverride,
				SessionDuration: es.SessionDuration,
				Buffer:          es.Buffer,
			}, nil
		}
	}
	return es, nil
}

// resolveOwn applies override-over-weekly precedence for one record,
// ignoring clinic linkage.
func (r *Resolver) resolveOwn(ctx context.Context, kind OwnerKind, ownerID uuid.UUID, date time.Time) (*EffectiveSchedule, error) {
	rec, err := r.repo.Get(ctx, kind, ownerID)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = DefaultRecord(kind, ownerID)
	case err != nil:
		return nil, err
	default:
		if verr := rec.Validate(); verr != nil {
			r.logger.Warn().
				Str("owner_kind", string(kind)).
				Str("owner_id", ownerID.String()).
				Err(verr).
				Msg("malformed working hours record, resolving under default schedule")
			rec = DefaultRecord(kind, ownerID)
		}
	}

	if o, ok := rec.Overrides[date.Format(DateLayout)]; ok {
		return &EffectiveSchedule{
			IsOpen:          o.IsOpen,
			Intervals:       o.Intervals,
			Reason:          o.Reason,
			IsOverride:      true,
			SessionDuration: rec.SessionDuration,
			Buffer:          rec.Buffer,
		}, nil
	}

	day := rec.Weekly[date.Weekday()]
	return &EffectiveSchedule{
		IsOpen:          day.IsOpen,
		Intervals:       day.Intervals,
		SessionDuration: rec.SessionDuration,
		Buffer:          rec.Buffer,
	}, nil
}
