package locks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository stores lock rows. Every mutating operation is compare-and-swap:
// it succeeds only when the stored state still permits it, so two sessions
// racing for the same entity cannot both win.
type Repository interface {
	// Get returns the entity's lock row, expired or not, or nil when no
	// row exists.
	Get(ctx context.Context, entityID uuid.UUID) (*Lock, error)

	// Acquire installs the lock unless a live lock held by a different
	// user or session exists at now. A lapsed lock or the caller's own
	// lock is replaced. On success the stored lock is returned with
	// ok=true; on conflict the competing lock is returned with ok=false.
	Acquire(ctx context.Context, lock *Lock, now time.Time) (*Lock, bool, error)

	// Extend adds extra to the current expiry, not from now, when the
	// lock is live and held by the given user and session. ok=false means
	// the CAS did not apply.
	Extend(ctx context.Context, entityID, userID uuid.UUID, sessionID string, extra time.Duration, now time.Time) (*Lock, bool, error)

	// Release removes the lock when held by the given user and session.
	// ok=false means no matching row was removed.
	Release(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (bool, error)

	// ClearExpired removes every lapsed lock row and returns how many
	// were removed.
	ClearExpired(ctx context.Context, now time.Time) (int, error)
}
