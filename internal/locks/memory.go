package locks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used in tests and ephemeral
// setups.
type MemoryRepository struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*Lock
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{locks: make(map[uuid.UUID]*Lock)}
}

func (r *MemoryRepository) Get(_ context.Context, entityID uuid.UUID) (*Lock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks[entityID].Clone(), nil
}

func (r *MemoryRepository) Acquire(_ context.Context, lock *Lock, now time.Time) (*Lock, bool, error) {
	if lock == nil || lock.EntityID == uuid.Nil {
		return nil, false, ErrEntityRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.locks[lock.EntityID]
	if current != nil && !current.Expired(now) && !current.HeldBy(lock.UserID, lock.SessionID) {
		return current.Clone(), false, nil
	}
	stored := lock.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.locks[stored.EntityID] = stored
	return stored.Clone(), true, nil
}

func (r *MemoryRepository) Extend(_ context.Context, entityID, userID uuid.UUID, sessionID string, extra time.Duration, now time.Time) (*Lock, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.locks[entityID]
	if current == nil || current.Expired(now) || !current.HeldBy(userID, sessionID) {
		return current.Clone(), false, nil
	}
	current.ExpiresAt = current.ExpiresAt.Add(extra)
	return current.Clone(), true, nil
}

func (r *MemoryRepository) Release(_ context.Context, entityID, userID uuid.UUID, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.locks[entityID]
	if current == nil || !current.HeldBy(userID, sessionID) {
		return false, nil
	}
	delete(r.locks, entityID)
	return true, nil
}

func (r *MemoryRepository) ClearExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for entityID, lock := range r.locks {
		if lock.Expired(now) {
			delete(r.locks, entityID)
			removed++
		}
	}
	return removed, nil
}
