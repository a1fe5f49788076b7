package translations

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/identity"
)

// MemoryRepository is an in-memory Repository used in tests and ephemeral
// setups.
type MemoryRepository struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*TranslationLink
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{links: make(map[uuid.UUID]*TranslationLink)}
}

func (r *MemoryRepository) Create(_ context.Context, link *TranslationLink) (*TranslationLink, error) {
	if link == nil || link.SourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := link.Clone()
	stored.Language = NormalizeLanguage(stored.Language)
	if stored.ID == uuid.Nil {
		stored.ID = identity.TranslationLinkUUID(stored.SourceID, stored.Language)
	}
	if _, exists := r.links[stored.ID]; exists {
		return nil, ErrLinkExists
	}
	r.links[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, link *TranslationLink) (*TranslationLink, error) {
	if link == nil || link.SourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := link.Clone()
	stored.Language = NormalizeLanguage(stored.Language)
	if stored.ID == uuid.Nil {
		stored.ID = identity.TranslationLinkUUID(stored.SourceID, stored.Language)
	}
	if _, exists := r.links[stored.ID]; !exists {
		return nil, &LinkNotFoundError{SourceID: stored.SourceID, Language: stored.Language}
	}
	r.links[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryRepository) Get(_ context.Context, sourceID uuid.UUID, language string) (*TranslationLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	language = NormalizeLanguage(language)
	link, ok := r.links[identity.TranslationLinkUUID(sourceID, language)]
	if !ok {
		return nil, &LinkNotFoundError{SourceID: sourceID, Language: language}
	}
	return link.Clone(), nil
}

func (r *MemoryRepository) ListBySource(_ context.Context, sourceID uuid.UUID) ([]*TranslationLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]*TranslationLink, 0)
	for _, link := range r.links {
		if link.SourceID == sourceID {
			links = append(links, link.Clone())
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].Language < links[j].Language
	})
	return links, nil
}

func (r *MemoryRepository) Delete(_ context.Context, sourceID uuid.UUID, language string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.links, identity.TranslationLinkUUID(sourceID, NormalizeLanguage(language)))
	return nil
}
