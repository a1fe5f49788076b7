package versions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used in tests and ephemeral
// setups.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Version
	byOwner map[uuid.UUID][]uuid.UUID
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*Version),
		byOwner: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *MemoryRepository) Create(_ context.Context, record *Version) (*Version, error) {
	if record == nil || record.EntityID == uuid.Nil {
		return nil, ErrEntityRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := record.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.Number == 0 {
		stored.Number = r.nextNumberLocked(stored.EntityID)
	}
	r.byID[stored.ID] = stored
	r.byOwner[stored.EntityID] = append(r.byOwner[stored.EntityID], stored.ID)
	return stored.Clone(), nil
}

func (r *MemoryRepository) nextNumberLocked(entityID uuid.UUID) int {
	next := 1
	for _, id := range r.byOwner[entityID] {
		if record := r.byID[id]; record != nil && record.Number >= next {
			next = record.Number + 1
		}
	}
	return next
}

func (r *MemoryRepository) ListByEntity(_ context.Context, entityID uuid.UUID) ([]*Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Version, 0, len(r.byOwner[entityID]))
	for _, id := range r.byOwner[entityID] {
		if record := r.byID[id]; record != nil {
			records = append(records, record.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Number > records[j].Number
	})
	return records, nil
}

func (r *MemoryRepository) GetByNumber(_ context.Context, entityID uuid.UUID, number int) (*Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.byOwner[entityID] {
		if record := r.byID[id]; record != nil && record.Number == number {
			return record.Clone(), nil
		}
	}
	return nil, &NotFoundError{EntityID: entityID, Number: number}
}

func (r *MemoryRepository) DeleteOlderThan(_ context.Context, entityID uuid.UUID, cutoff time.Time, keepLatest int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]*Version, 0, len(r.byOwner[entityID]))
	for _, id := range r.byOwner[entityID] {
		if record := r.byID[id]; record != nil {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Number > records[j].Number
	})

	removed := 0
	for idx, record := range records {
		if idx < keepLatest {
			continue
		}
		if len(records)-removed <= 1 {
			break
		}
		if !record.CreatedAt.Before(cutoff) {
			continue
		}
		delete(r.byID, record.ID)
		removed++
	}
	if removed > 0 {
		kept := r.byOwner[entityID][:0]
		for _, id := range r.byOwner[entityID] {
			if _, ok := r.byID[id]; ok {
				kept = append(kept, id)
			}
		}
		r.byOwner[entityID] = kept
	}
	return removed, nil
}

func (r *MemoryRepository) EntityIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.byOwner))
	for id, members := range r.byOwner {
		if len(members) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids, nil
}

// RunInTx satisfies Transactional. The in-memory store has no transactions;
// the callback runs against the repository directly.
func (r *MemoryRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, r)
}
