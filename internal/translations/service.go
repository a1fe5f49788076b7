package translations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

// CreateInput captures everything needed to link a language variant to its
// source entity.
type CreateInput struct {
	SourceID  uuid.UUID
	Language  string
	Source    *contenttree.Tree
	Variant   *contenttree.Tree
	CreatedBy uuid.UUID
}

// Service tracks structural parity and completion between a source content
// tree and its language variants. It never validates trees; callers run the
// content tree validator before handing trees in.
type Service interface {
	// Create links a variant to its source, capturing the source's block
	// fingerprints as the drift baseline.
	Create(ctx context.Context, input CreateInput) (*TranslationLink, error)
	// Check recomputes completion and sync state for one language against
	// the current source and variant trees, persists the result on the
	// link, and returns it.
	Check(ctx context.Context, sourceID uuid.UUID, language string, source, variant *contenttree.Tree) (*Status, error)
	// Sync rebuilds the variant to mirror the source's structure, keeping
	// the variant's translated leaf values where block ids still match.
	// The link's fingerprint baseline moves to the current source.
	Sync(ctx context.Context, sourceID uuid.UUID, language string, source, variant *contenttree.Tree, fields []string) (*contenttree.Tree, error)
	// Drift reports which source blocks were added, removed, or changed
	// since the link's baseline was last captured.
	Drift(ctx context.Context, sourceID uuid.UUID, language string, source *contenttree.Tree) (*Drift, error)
	// Statuses returns the stored sync state of every language variant of
	// the source, keyed by language.
	Statuses(ctx context.Context, sourceID uuid.UUID) (map[string]*Status, error)
	// Remove drops the link for one language.
	Remove(ctx context.Context, sourceID uuid.UUID, language string) error
}

type service struct {
	repo   Repository
	clock  func() time.Time
	logger interfaces.Logger
}

// ServiceOption configures the translation service.
type ServiceOption func(*service)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a translation service backed by the given repository.
func NewService(repo Repository, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	svc := &service{
		repo:  repo,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*TranslationLink, error) {
	if input.SourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}
	language := NormalizeLanguage(input.Language)
	if language == "" {
		return nil, ErrLanguageRequired
	}
	if input.Source == nil {
		return nil, ErrTreeRequired
	}

	now := s.clock().UTC()
	link := &TranslationLink{
		SourceID:     input.SourceID,
		Language:     language,
		Fingerprints: Fingerprints(input.Source),
		Completion:   CompletionPercentage(input.Source, input.Variant),
		NeedsSync:    NeedsSync(input.Source, input.Variant),
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.repo.Create(ctx, link)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("translation link created",
			"source_id", created.SourceID.String(),
			"language", created.Language,
			"completion", created.Completion,
		)
	}
	return created, nil
}

func (s *service) Check(ctx context.Context, sourceID uuid.UUID, language string, source, variant *contenttree.Tree) (*Status, error) {
	if source == nil {
		return nil, ErrTreeRequired
	}
	link, err := s.repo.Get(ctx, sourceID, language)
	if err != nil {
		return nil, err
	}

	link.Completion = CompletionPercentage(source, variant)
	link.NeedsSync = NeedsSync(source, variant)
	link.UpdatedAt = s.clock().UTC()
	updated, err := s.repo.Update(ctx, link)
	if err != nil {
		return nil, err
	}
	return statusOf(updated), nil
}

func (s *service) Sync(ctx context.Context, sourceID uuid.UUID, language string, source, variant *contenttree.Tree, fields []string) (*contenttree.Tree, error) {
	if source == nil {
		return nil, ErrTreeRequired
	}
	link, err := s.repo.Get(ctx, sourceID, language)
	if err != nil {
		return nil, err
	}

	merged := SyncStructure(source, variant, fields)

	link.Fingerprints = Fingerprints(source)
	link.Completion = CompletionPercentage(source, merged)
	link.NeedsSync = false
	link.UpdatedAt = s.clock().UTC()
	if _, err := s.repo.Update(ctx, link); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("translation structure synced",
			"source_id", sourceID.String(),
			"language", link.Language,
			"completion", link.Completion,
		)
	}
	return merged, nil
}

func (s *service) Drift(ctx context.Context, sourceID uuid.UUID, language string, source *contenttree.Tree) (*Drift, error) {
	if source == nil {
		return nil, ErrTreeRequired
	}
	link, err := s.repo.Get(ctx, sourceID, language)
	if err != nil {
		return nil, err
	}
	return DetectDrift(link.Fingerprints, source), nil
}

func (s *service) Statuses(ctx context.Context, sourceID uuid.UUID) (map[string]*Status, error) {
	if sourceID == uuid.Nil {
		return nil, ErrSourceRequired
	}
	links, err := s.repo.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	statuses := make(map[string]*Status, len(links))
	for _, link := range links {
		statuses[link.Language] = statusOf(link)
	}
	return statuses, nil
}

func (s *service) Remove(ctx context.Context, sourceID uuid.UUID, language string) error {
	err := s.repo.Delete(ctx, sourceID, language)
	if err != nil && !errors.Is(err, ErrLinkNotFound) {
		return err
	}
	return nil
}

func statusOf(link *TranslationLink) *Status {
	return &Status{
		Language:             link.Language,
		CompletionPercentage: link.Completion,
		NeedsSync:            link.NeedsSync,
		LastUpdated:          link.UpdatedAt,
	}
}
