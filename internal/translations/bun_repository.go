package translations

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/allanasp/haspen-cms-sub001/internal/identity"
)

func newLinkRepository(db *bun.DB) repository.Repository[*TranslationLink] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*TranslationLink]{
		NewRecord: func() *TranslationLink { return &TranslationLink{} },
		GetID: func(l *TranslationLink) uuid.UUID {
			return l.ID
		},
		SetID: func(l *TranslationLink, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(l *TranslationLink) string {
			if l == nil {
				return ""
			}
			return l.ID.String()
		},
	})
}

// BunRepository persists translation links with go-repository-bun. The
// primary key is derived from the source/language pair, so lookups by pair
// go straight through GetByID and the optional cache layer.
type BunRepository struct {
	repo repository.Repository[*TranslationLink]
}

// NewBunRepository builds a bun-backed link repository without caching.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache builds a bun-backed link repository with an
// optional cache layer.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunRepository {
	base := newLinkRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunRepository{repo: base}
}

func (r *BunRepository) Create(ctx context.Context, link *TranslationLink) (*TranslationLink, error) {
	if link == nil || link.SourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}
	stored := link.Clone()
	stored.Language = NormalizeLanguage(stored.Language)
	if stored.ID == uuid.Nil {
		stored.ID = identity.TranslationLinkUUID(stored.SourceID, stored.Language)
	}
	if _, err := r.repo.GetByID(ctx, stored.ID.String()); err == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrLinkExists, stored.SourceID, stored.Language)
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, fmt.Errorf("translation link repository error: %w", err)
	}
	created, err := r.repo.Create(ctx, stored)
	if err != nil {
		return nil, mapRepositoryError(err, stored.SourceID, stored.Language)
	}
	return created, nil
}

func (r *BunRepository) Update(ctx context.Context, link *TranslationLink) (*TranslationLink, error) {
	if link == nil || link.SourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}
	stored := link.Clone()
	stored.Language = NormalizeLanguage(stored.Language)
	if stored.ID == uuid.Nil {
		stored.ID = identity.TranslationLinkUUID(stored.SourceID, stored.Language)
	}
	updated, err := r.repo.Update(ctx, stored)
	if err != nil {
		return nil, mapRepositoryError(err, stored.SourceID, stored.Language)
	}
	return updated, nil
}

func (r *BunRepository) Get(ctx context.Context, sourceID uuid.UUID, language string) (*TranslationLink, error) {
	language = NormalizeLanguage(language)
	id := identity.TranslationLinkUUID(sourceID, language)
	link, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, sourceID, language)
	}
	return link, nil
}

func (r *BunRepository) ListBySource(ctx context.Context, sourceID uuid.UUID) ([]*TranslationLink, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.source_id = ?", sourceID).
				Order("language ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("translation link repository error: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Delete(ctx context.Context, sourceID uuid.UUID, language string) error {
	id := identity.TranslationLinkUUID(sourceID, NormalizeLanguage(language))
	if err := r.repo.Delete(ctx, &TranslationLink{ID: id}); err != nil {
		return mapRepositoryError(err, sourceID, language)
	}
	return nil
}

func mapRepositoryError(err error, sourceID uuid.UUID, language string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &LinkNotFoundError{SourceID: sourceID, Language: language}
	}
	return fmt.Errorf("translation link repository error: %w", err)
}
