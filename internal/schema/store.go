package schema

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/allanasp/haspen-cms-sub001/internal/identity"
)

// Record is the persisted form of a component schema. The primary key is
// derived from the tenant/name pair, so saving the same schema twice lands on
// the same row.
type Record struct {
	bun.BaseModel `bun:"table:component_schemas,alias:cs"`

	ID         uuid.UUID        `bun:",pk,type:uuid"          json:"id"`
	Tenant     string           `bun:"tenant,notnull"         json:"tenant"`
	Name       string           `bun:"name,notnull"           json:"name"`
	Definition *ComponentSchema `bun:"definition,type:jsonb"  json:"definition"`
	CreatedAt  time.Time        `bun:"created_at,nullzero"    json:"created_at"`
	UpdatedAt  time.Time        `bun:"updated_at,nullzero"    json:"updated_at"`
}

// Clone copies the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Definition = r.Definition.Clone()
	return &clone
}

// Store persists component schema records per tenant.
type Store interface {
	Save(ctx context.Context, record *Record) (*Record, error)
	Get(ctx context.Context, tenant, name string) (*Record, error)
	List(ctx context.Context, tenant string) ([]*Record, error)
	Delete(ctx context.Context, tenant, name string) error
}

func normalizeRecord(record *Record) *Record {
	stored := record.Clone()
	stored.Tenant = normalizeTenant(stored.Tenant)
	stored.Name = NormalizeName(stored.Name)
	if stored.ID == uuid.Nil {
		stored.ID = identity.ComponentSchemaUUID(stored.Tenant, stored.Name)
	}
	return stored
}

// MemoryStore is an in-memory Store used in tests and ephemeral setups.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[uuid.UUID]*Record)}
}

func (s *MemoryStore) Save(_ context.Context, record *Record) (*Record, error) {
	if record == nil || strings.TrimSpace(record.Name) == "" {
		return nil, ErrSchemaNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := normalizeRecord(record)
	if existing, ok := s.records[stored.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	}
	s.records[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Get(_ context.Context, tenant, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id := identity.ComponentSchemaUUID(normalizeTenant(tenant), NormalizeName(name))
	record, ok := s.records[id]
	if !ok {
		return nil, ErrComponentNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context, tenant string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant = normalizeTenant(tenant)
	records := make([]*Record, 0)
	for _, record := range s.records {
		if record.Tenant == tenant {
			records = append(records, record.Clone())
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

func (s *MemoryStore) Delete(_ context.Context, tenant, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, identity.ComponentSchemaUUID(normalizeTenant(tenant), NormalizeName(name)))
	return nil
}

// LoadRegistry hydrates the registry with every stored schema of the tenant.
// Stored schemas are trusted; they were validated when saved.
func LoadRegistry(ctx context.Context, store Store, registry *Registry, tenant string) error {
	records, err := store.List(ctx, tenant)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.Definition == nil {
			continue
		}
		if err := registry.Register(tenant, record.Definition, true); err != nil {
			return err
		}
	}
	return nil
}
