package versions

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores version records. Implementations must assign the next
// sequential number per entity atomically when a record arrives with
// Number == 0, so concurrent writers never produce duplicate numbers.
type Repository interface {
	// Create persists the version. When record.Number is zero the
	// repository assigns max(number)+1 for the entity. The stored record
	// is returned.
	Create(ctx context.Context, record *Version) (*Version, error)

	// ListByEntity returns all versions of the entity, newest first.
	ListByEntity(ctx context.Context, entityID uuid.UUID) ([]*Version, error)

	// GetByNumber returns one version of the entity by its number.
	GetByNumber(ctx context.Context, entityID uuid.UUID, number int) (*Version, error)

	// DeleteOlderThan removes versions of the entity created before
	// cutoff, excluding the keepLatest newest versions and never removing
	// the entity's sole remaining version. It returns how many records
	// were removed.
	DeleteOlderThan(ctx context.Context, entityID uuid.UUID, cutoff time.Time, keepLatest int) (int, error)

	// EntityIDs lists the distinct entities that have versions.
	EntityIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Transactional is implemented by repositories that can run several
// operations in a single transaction. Restore uses it to keep the safety
// snapshot and the restored version atomic.
type Transactional interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
