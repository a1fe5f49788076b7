package schema

import (
	"context"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/allanasp/haspen-cms-sub001/internal/identity"
)

func newRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(r *Record) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Record, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Record) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

// BunStore persists schema records with go-repository-bun. The deterministic
// primary key lets pair lookups go through GetByID and the optional cache.
type BunStore struct {
	repo repository.Repository[*Record]
}

// NewBunStore builds a bun-backed schema store without caching.
func NewBunStore(db *bun.DB) *BunStore {
	return NewBunStoreWithCache(db, nil, nil)
}

// NewBunStoreWithCache builds a bun-backed schema store with an optional
// cache layer.
func NewBunStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunStore {
	base := newRecordRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunStore{repo: base}
}

func (s *BunStore) Save(ctx context.Context, record *Record) (*Record, error) {
	if record == nil || strings.TrimSpace(record.Name) == "" {
		return nil, ErrSchemaNameRequired
	}
	stored := normalizeRecord(record)
	saved, err := s.repo.Upsert(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("schema store error: %w", err)
	}
	return saved, nil
}

func (s *BunStore) Get(ctx context.Context, tenant, name string) (*Record, error) {
	id := identity.ComponentSchemaUUID(normalizeTenant(tenant), NormalizeName(name))
	record, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, fmt.Errorf("schema store error: %w", err)
	}
	return record, nil
}

func (s *BunStore) List(ctx context.Context, tenant string) ([]*Record, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.tenant = ?", normalizeTenant(tenant)).
				Order("name ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("schema store error: %w", err)
	}
	return records, nil
}

func (s *BunStore) Delete(ctx context.Context, tenant, name string) error {
	id := identity.ComponentSchemaUUID(normalizeTenant(tenant), NormalizeName(name))
	if err := s.repo.Delete(ctx, &Record{ID: id}); err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil
		}
		return fmt.Errorf("schema store error: %w", err)
	}
	return nil
}
