package locks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists locks with bun. Mutations use conditional writes
// and check affected rows, so the database is the arbiter of every race.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository builds a bun-backed lock repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Get(ctx context.Context, entityID uuid.UUID) (*Lock, error) {
	lock := new(Lock)
	err := r.db.NewSelect().
		Model(lock).
		Where("cl.entity_id = ?", entityID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return lock, nil
}

func (r *BunRepository) Acquire(ctx context.Context, lock *Lock, now time.Time) (*Lock, bool, error) {
	if lock == nil || lock.EntityID == uuid.Nil {
		return nil, false, ErrEntityRequired
	}

	stored := lock.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}

	// The upsert only applies over a lapsed lock or the caller's own row.
	// Zero affected rows means a live competitor holds the entity.
	res, err := r.db.NewInsert().
		Model(stored).
		On("CONFLICT (entity_id) DO UPDATE").
		Set("id = EXCLUDED.id").
		Set("user_id = EXCLUDED.user_id").
		Set("session_id = EXCLUDED.session_id").
		Set("acquired_at = EXCLUDED.acquired_at").
		Set("expires_at = EXCLUDED.expires_at").
		Where("cl.expires_at <= ?", now).
		WhereOr("cl.user_id = EXCLUDED.user_id AND cl.session_id = EXCLUDED.session_id").
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		current, err := r.Get(ctx, lock.EntityID)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	return stored, true, nil
}

func (r *BunRepository) Extend(ctx context.Context, entityID, userID uuid.UUID, sessionID string, extra time.Duration, now time.Time) (*Lock, bool, error) {
	// Extension is additive on top of the stored expiry. Interval math in
	// SQL is dialect-specific, so this reads the row and swaps the expiry
	// with an equality guard on the value it read.
	current, err := r.Get(ctx, entityID)
	if err != nil {
		return nil, false, err
	}
	if current == nil || current.Expired(now) || !current.HeldBy(userID, sessionID) {
		return current, false, nil
	}

	res, err := r.db.NewUpdate().
		Model((*Lock)(nil)).
		Set("expires_at = ?", current.ExpiresAt.Add(extra)).
		Where("cl.entity_id = ?", entityID).
		Where("cl.user_id = ?", userID).
		Where("cl.session_id = ?", sessionID).
		Where("cl.expires_at = ?", current.ExpiresAt).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	current, err = r.Get(ctx, entityID)
	if err != nil {
		return nil, false, err
	}
	return current, affected > 0, nil
}

func (r *BunRepository) Release(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (bool, error) {
	res, err := r.db.NewDelete().
		Model((*Lock)(nil)).
		Where("cl.entity_id = ?", entityID).
		Where("cl.user_id = ?", userID).
		Where("cl.session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *BunRepository) ClearExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*Lock)(nil)).
		Where("cl.expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
