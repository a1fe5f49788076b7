package versions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository persists versions with bun. Number assignment happens inside
// the INSERT via a subquery so concurrent writers to the same entity cannot
// collide.
type BunRepository struct {
	db bun.IDB
}

// NewBunRepository builds a bun-backed version repository.
func NewBunRepository(db bun.IDB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, record *Version) (*Version, error) {
	if record == nil || record.EntityID == uuid.Nil {
		return nil, ErrEntityRequired
	}

	stored := record.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}

	query := r.db.NewInsert().
		Model(stored).
		Returning("number")
	if stored.Number == 0 {
		query = query.
			Value("number", "(SELECT COALESCE(MAX(number), 0) + 1 FROM content_versions WHERE entity_id = ?)", stored.EntityID)
	}
	if err := query.Scan(ctx, &stored.Number); err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *BunRepository) ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*Version, error) {
	var records []*Version
	err := r.db.NewSelect().
		Model(&records).
		Where("cv.entity_id = ?", entityID).
		Order("cv.number DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunRepository) GetByNumber(ctx context.Context, entityID uuid.UUID, number int) (*Version, error) {
	record := new(Version)
	err := r.db.NewSelect().
		Model(record).
		Where("cv.entity_id = ?", entityID).
		Where("cv.number = ?", number).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{EntityID: entityID, Number: number}
		}
		return nil, err
	}
	return record, nil
}

func (r *BunRepository) DeleteOlderThan(ctx context.Context, entityID uuid.UUID, cutoff time.Time, keepLatest int) (int, error) {
	// Keep the newest keepLatest numbers and always the newest one, even
	// when everything is past the cutoff.
	keep := r.db.NewSelect().
		Model((*Version)(nil)).
		Column("cv.id").
		Where("cv.entity_id = ?", entityID).
		Order("cv.number DESC").
		Limit(max(keepLatest, 1))

	res, err := r.db.NewDelete().
		Model((*Version)(nil)).
		Where("cv.entity_id = ?", entityID).
		Where("cv.created_at < ?", cutoff).
		Where("cv.id NOT IN (?)", keep).
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

func (r *BunRepository) EntityIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.NewSelect().
		Model((*Version)(nil)).
		ColumnExpr("DISTINCT cv.entity_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RunInTx runs fn against a transactional copy of the repository. It is only
// available when the repository wraps a root *bun.DB.
func (r *BunRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	db, ok := r.db.(*bun.DB)
	if !ok {
		return fn(ctx, r)
	}
	return db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &BunRepository{db: tx})
	})
}
