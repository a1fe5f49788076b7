package versions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/allanasp/haspen-cms-sub001/internal/versions"
	"github.com/allanasp/haspen-cms-sub001/pkg/testsupport"
	"github.com/google/uuid"
)

func newBunService(t *testing.T, opts ...versions.ServiceOption) versions.Service {
	t.Helper()

	db, err := testsupport.NewTestDB(context.Background())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	service, err := versions.NewService(versions.NewBunRepository(db), opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestBunCreateAssignsSequentialNumbers(t *testing.T) {
	service := newBunService(t)
	ctx := context.Background()

	entityA := uuid.New()
	entityB := uuid.New()

	for want := 1; want <= 3; want++ {
		created, err := service.Create(ctx, versions.CreateInput{
			EntityID: entityA,
			Snapshot: versions.Snapshot{Content: map[string]any{"rev": want}},
		})
		if err != nil {
			t.Fatalf("create %d: %v", want, err)
		}
		if created.Number != want {
			t.Fatalf("create %d: got number %d", want, created.Number)
		}
	}

	created, err := service.Create(ctx, versions.CreateInput{
		EntityID: entityB,
		Snapshot: versions.Snapshot{Content: map[string]any{"rev": 1}},
	})
	if err != nil {
		t.Fatalf("create for second entity: %v", err)
	}
	if created.Number != 1 {
		t.Fatalf("numbering must be per entity, got %d", created.Number)
	}

	history, err := service.List(ctx, entityA)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(history) != 3 || history[0].Number != 3 {
		t.Fatalf("expected 3 versions newest first, got %+v", history)
	}
}

func TestBunRestoreWritesSafetyAndRestoredVersions(t *testing.T) {
	service := newBunService(t)
	ctx := context.Background()

	entity := uuid.New()
	for i := 1; i <= 3; i++ {
		if _, err := service.Create(ctx, versions.CreateInput{
			EntityID: entity,
			Snapshot: versions.Snapshot{Content: map[string]any{"title": i}},
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	result, err := service.Restore(ctx, entity, 1,
		versions.Snapshot{Content: map[string]any{"title": 3}}, uuid.New())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if result.SafetyVersion.Number != 4 || result.RestoredVersion.Number != 5 {
		t.Fatalf("unexpected numbers: safety=%d restored=%d",
			result.SafetyVersion.Number, result.RestoredVersion.Number)
	}
	if result.SafetyVersion.Reason != "before restoring to version 1" {
		t.Fatalf("unexpected safety reason %q", result.SafetyVersion.Reason)
	}
	if result.RestoredVersion.Reason != "restored to version 1" {
		t.Fatalf("unexpected restore reason %q", result.RestoredVersion.Reason)
	}

	restored, err := service.Get(ctx, entity, 5)
	if err != nil {
		t.Fatalf("Get restored: %v", err)
	}
	if restored.Content["title"] != float64(1) {
		t.Fatalf("restored copy carries wrong content: %v", restored.Content)
	}
}

func TestBunGetScopedToEntity(t *testing.T) {
	service := newBunService(t)
	ctx := context.Background()

	entity := uuid.New()
	if _, err := service.Create(ctx, versions.CreateInput{
		EntityID: entity,
		Snapshot: versions.Snapshot{Content: map[string]any{"n": 1}},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := uuid.New()
	_, err := service.Get(ctx, other, 1)
	if !errors.Is(err, versions.ErrVersionNotFound) {
		t.Fatalf("expected ErrVersionNotFound, got %v", err)
	}
	var notFound *versions.NotFoundError
	if !errors.As(err, &notFound) || notFound.EntityID != other || notFound.Number != 1 {
		t.Fatalf("expected typed not-found error, got %v", err)
	}
}

func TestBunPruneRespectsRetentionPolicy(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	service := newBunService(t,
		versions.WithClock(func() time.Time { return now }),
		versions.WithRetention(24*time.Hour, 1),
	)
	ctx := context.Background()

	entity := uuid.New()
	for i := 1; i <= 3; i++ {
		if _, err := service.Create(ctx, versions.CreateInput{
			EntityID: entity,
			Snapshot: versions.Snapshot{Content: map[string]any{"n": i}},
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	now = now.Add(48 * time.Hour)

	removed, err := service.Prune(ctx, entity)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 versions pruned, got %d", removed)
	}

	remaining, err := service.List(ctx, entity)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].Number != 3 {
		t.Fatalf("expected only the newest version to survive, got %+v", remaining)
	}
}
