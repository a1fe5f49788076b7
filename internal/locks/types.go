package locks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Lock is an advisory edit lock on a content entity. At most one live lock
// exists per entity; expiry is lazy, so an expired row may linger until a
// sweep or a competing acquire replaces it.
type Lock struct {
	bun.BaseModel `bun:"table:content_locks,alias:cl"`

	ID         uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	EntityID   uuid.UUID `bun:"entity_id,notnull,type:uuid"  json:"entity_id"`
	UserID     uuid.UUID `bun:"user_id,notnull,type:uuid"    json:"user_id"`
	SessionID  string    `bun:"session_id,notnull"           json:"session_id"`
	AcquiredAt time.Time `bun:"acquired_at,notnull"          json:"acquired_at"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"           json:"expires_at"`
}

// Expired reports whether the lock has lapsed at the given instant.
func (l *Lock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// HeldBy reports whether the lock belongs to the given user and session.
// Both must match; the same user in another browser tab is a different
// holder.
func (l *Lock) HeldBy(userID uuid.UUID, sessionID string) bool {
	return l.UserID == userID && l.SessionID == sessionID
}

// Clone copies the lock.
func (l *Lock) Clone() *Lock {
	if l == nil {
		return nil
	}
	copied := *l
	return &copied
}

// Status describes the lock state of an entity as seen by one caller.
type Status struct {
	Locked    bool          `json:"locked"`
	Mine      bool          `json:"mine"`
	Holder    uuid.UUID     `json:"holder,omitempty"`
	ExpiresAt time.Time     `json:"expires_at,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"`
}
