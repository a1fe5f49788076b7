package translations

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores translation links. A link is addressed by its source
// entity and language code; implementations derive the primary key from that
// pair so the same pair always maps to the same row.
type Repository interface {
	Create(ctx context.Context, link *TranslationLink) (*TranslationLink, error)
	Update(ctx context.Context, link *TranslationLink) (*TranslationLink, error)
	Get(ctx context.Context, sourceID uuid.UUID, language string) (*TranslationLink, error)
	ListBySource(ctx context.Context, sourceID uuid.UUID) ([]*TranslationLink, error)
	Delete(ctx context.Context, sourceID uuid.UUID, language string) error
}
