package locks

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrLocked indicates the entity is held by someone else.
	ErrLocked = errors.New("locks: entity locked by another user")
	// ErrNotHeld indicates the caller does not hold the lock it tried to
	// extend or release.
	ErrNotHeld = errors.New("locks: lock not held by caller")
	// ErrEntityRequired indicates the entity id was missing.
	ErrEntityRequired = errors.New("locks: entity id required")
	// ErrHolderRequired indicates the user id or session id was missing.
	ErrHolderRequired = errors.New("locks: user id and session id required")
	// ErrRepositoryRequired indicates the service was constructed without
	// a repository.
	ErrRepositoryRequired = errors.New("locks: repository required")
)

// ConflictError reports a failed acquire or extend together with the current
// holder, so callers can surface who is editing and for how much longer.
type ConflictError struct {
	EntityID  uuid.UUID
	Holder    uuid.UUID
	ExpiresAt time.Time
	Remaining time.Duration
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("locks: entity %s locked by %s until %s",
		e.EntityID, e.Holder, e.ExpiresAt.Format(time.RFC3339))
}

func (e *ConflictError) Unwrap() error {
	return ErrLocked
}
