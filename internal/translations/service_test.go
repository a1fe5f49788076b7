package translations_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/translations"
)

func newTestService(t *testing.T) translations.Service {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc, err := translations.NewService(translations.NewMemoryRepository(),
		translations.WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateCapturesBaseline(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	source := sourceTree()
	sourceID := uuid.New()

	link, err := svc.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: " ES ",
		Source:   source,
		Variant:  nil,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.Language != "es" {
		t.Fatalf("expected normalized language es, got %q", link.Language)
	}
	if len(link.Fingerprints) != 3 {
		t.Fatalf("expected fingerprints for 3 blocks, got %d", len(link.Fingerprints))
	}
	if link.Completion != 0 {
		t.Fatalf("a missing variant must start at 0%%, got %v", link.Completion)
	}
	if !link.NeedsSync {
		t.Fatal("a missing variant must need sync")
	}

	if _, err := svc.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "es",
		Source:   source,
	}); !errors.Is(err, translations.ErrLinkExists) {
		t.Fatalf("expected ErrLinkExists, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, translations.CreateInput{Language: "es", Source: sourceTree()}); !errors.Is(err, translations.ErrSourceRequired) {
		t.Fatalf("expected ErrSourceRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, translations.CreateInput{SourceID: uuid.New(), Source: sourceTree()}); !errors.Is(err, translations.ErrLanguageRequired) {
		t.Fatalf("expected ErrLanguageRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, translations.CreateInput{SourceID: uuid.New(), Language: "es"}); !errors.Is(err, translations.ErrTreeRequired) {
		t.Fatalf("expected ErrTreeRequired, got %v", err)
	}
}

func TestCheckUpdatesStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	source := sourceTree()
	sourceID := uuid.New()

	if _, err := svc.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "de",
		Source:   source,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	status, err := svc.Check(ctx, sourceID, "de", source, source.Clone())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status.CompletionPercentage != 100 {
		t.Fatalf("expected 100%%, got %v", status.CompletionPercentage)
	}
	if status.NeedsSync {
		t.Fatal("matching id sets must not need sync")
	}
	if status.LastUpdated.IsZero() {
		t.Fatal("expected last updated to be set")
	}
}

func TestCheckUnknownLink(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Check(context.Background(), uuid.New(), "fr", sourceTree(), nil)
	if !errors.Is(err, translations.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestSyncRebuildsVariantAndClearsDrift(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	source := sourceTree()
	sourceID := uuid.New()

	variant := &contenttree.Tree{Body: []*contenttree.Block{
		block("hero-1", "hero", map[string]any{"headline": "Willkommen"}),
	}}
	if _, err := svc.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "de",
		Source:   source,
		Variant:  variant,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The source grows a block after linking.
	edited := source.Clone()
	edited.Body = append(edited.Body, block("hero-2", "hero", map[string]any{"headline": "Again"}))

	drift, err := svc.Drift(ctx, sourceID, "de", edited)
	if err != nil {
		t.Fatalf("drift: %v", err)
	}
	if len(drift.Added) != 1 || drift.Added[0] != "hero-2" {
		t.Fatalf("expected hero-2 added, got %v", drift.Added)
	}

	merged, err := svc.Sync(ctx, sourceID, "de", edited, variant, nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(merged.Body) != 3 {
		t.Fatalf("expected 3 top-level blocks after sync, got %d", len(merged.Body))
	}
	if merged.Body[0].Fields["headline"] != "Willkommen" {
		t.Fatalf("translation must survive the sync, got %v", merged.Body[0].Fields["headline"])
	}

	drift, err = svc.Drift(ctx, sourceID, "de", edited)
	if err != nil {
		t.Fatalf("drift after sync: %v", err)
	}
	if !drift.Empty() {
		t.Fatalf("sync must move the baseline, still drifting: %+v", drift)
	}

	statuses, err := svc.Statuses(ctx, sourceID)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if statuses["de"] == nil || statuses["de"].NeedsSync {
		t.Fatalf("expected a synced de status, got %+v", statuses["de"])
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sourceID := uuid.New()

	if _, err := svc.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "fr",
		Source:   sourceTree(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Remove(ctx, sourceID, "fr"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(ctx, sourceID, "fr"); err != nil {
		t.Fatalf("second remove must not fail: %v", err)
	}

	statuses, err := svc.Statuses(ctx, sourceID)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	if len(statuses) != 0 {
		t.Fatalf("expected no statuses, got %d", len(statuses))
	}
}
