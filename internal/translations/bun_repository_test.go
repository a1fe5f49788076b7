package translations_test

import (
	"context"
	"errors"
	"testing"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/translations"
	"github.com/allanasp/haspen-cms-sub001/pkg/testsupport"
	"github.com/google/uuid"
)

func newBunLinkService(t *testing.T) translations.Service {
	t.Helper()

	db, err := testsupport.NewTestDB(context.Background())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	service, err := translations.NewService(translations.NewBunRepository(db))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestBunLinkLifecycle(t *testing.T) {
	service := newBunLinkService(t)
	ctx := context.Background()

	source := sourceTree()
	variant := &contenttree.Tree{Body: []*contenttree.Block{
		block("hero-1", "hero", map[string]any{
			"headline": "Willkommen",
			"subtitle": "",
		}),
	}}

	sourceID := uuid.New()
	link, err := service.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "DE",
		Source:   source,
		Variant:  variant,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if link.Language != "de" {
		t.Fatalf("language must be normalized, got %q", link.Language)
	}
	if len(link.Fingerprints) != 3 {
		t.Fatalf("expected fingerprints for 3 source blocks, got %d", len(link.Fingerprints))
	}

	if _, err := service.Create(ctx, translations.CreateInput{
		SourceID: sourceID,
		Language: "de",
		Source:   source,
		Variant:  variant,
	}); !errors.Is(err, translations.ErrLinkExists) {
		t.Fatalf("duplicate link must be rejected, got %v", err)
	}

	status, err := service.Check(ctx, sourceID, "de", source, variant)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.CompletionPercentage != 25 {
		t.Fatalf("expected 25%% completion, got %v", status.CompletionPercentage)
	}
	if !status.NeedsSync {
		t.Fatalf("variant misses two source blocks, sync expected: %+v", status)
	}

	statuses, err := service.Statuses(ctx, sourceID)
	if err != nil {
		t.Fatalf("Statuses: %v", err)
	}
	if len(statuses) != 1 || statuses["de"] == nil {
		t.Fatalf("expected stored status for de, got %+v", statuses)
	}
	if statuses["de"].CompletionPercentage != 25 {
		t.Fatalf("Check must persist completion: %+v", statuses["de"])
	}

	synced, err := service.Sync(ctx, sourceID, "de", source, variant, nil)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(synced.Body) != len(source.Body) {
		t.Fatalf("sync must mirror source structure: %d blocks", len(synced.Body))
	}
	if synced.Body[0].Fields["headline"] != "Willkommen" {
		t.Fatalf("sync lost the translated headline: %v", synced.Body[0].Fields)
	}

	drift, err := service.Drift(ctx, sourceID, "de", source)
	if err != nil {
		t.Fatalf("Drift: %v", err)
	}
	if !drift.Empty() {
		t.Fatalf("baseline moved on sync, drift should be empty: %+v", drift)
	}

	if err := service.Remove(ctx, sourceID, "de"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := service.Remove(ctx, sourceID, "de"); err != nil {
		t.Fatalf("Remove must be idempotent: %v", err)
	}
	if _, err := service.Statuses(ctx, sourceID); err != nil {
		t.Fatalf("Statuses after removal: %v", err)
	}
}
