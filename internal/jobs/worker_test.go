package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/jobs"
	"github.com/allanasp/haspen-cms-sub001/internal/locks"
	"github.com/allanasp/haspen-cms-sub001/internal/versions"
)

type failingSweeper struct{}

func (failingSweeper) Sweep(context.Context) (int, error) {
	return 0, errors.New("sweep boom")
}

func TestProcessSweepsLocksAndPrunesVersions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	lockService, err := locks.NewService(locks.NewMemoryRepository(), locks.WithClock(clock))
	if err != nil {
		t.Fatalf("lock service: %v", err)
	}
	versionService, err := versions.NewService(versions.NewMemoryRepository(),
		versions.WithClock(clock),
		versions.WithRetention(24*time.Hour, 1),
	)
	if err != nil {
		t.Fatalf("version service: %v", err)
	}

	if _, err := lockService.Acquire(ctx, uuid.New(), uuid.New(), "session"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	entity := uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := versionService.Create(ctx, versions.CreateInput{
			EntityID: entity,
			Snapshot: versions.Snapshot{Content: map[string]any{"body": i}},
		}); err != nil {
			t.Fatalf("create version: %v", err)
		}
	}

	now = now.Add(30 * 24 * time.Hour)
	audit := jobs.NewInMemoryAuditRecorder()
	worker := jobs.NewWorker(lockService, versionService,
		jobs.WithClock(clock),
		jobs.WithAuditRecorder(audit),
	)

	report, err := worker.Process(ctx)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if report.LocksCleared != 1 {
		t.Fatalf("expected 1 cleared lock, got %d", report.LocksCleared)
	}
	if report.VersionsPruned != 2 {
		t.Fatalf("expected 2 pruned versions, got %d", report.VersionsPruned)
	}
	if report.EntitiesVisited != 1 {
		t.Fatalf("expected 1 entity visited, got %d", report.EntitiesVisited)
	}

	events := audit.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].Action != "sweep" || events[1].Action != "prune" {
		t.Fatalf("unexpected audit actions: %s, %s", events[0].Action, events[1].Action)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	ctx := context.Background()
	lockService, err := locks.NewService(locks.NewMemoryRepository())
	if err != nil {
		t.Fatalf("lock service: %v", err)
	}
	versionService, err := versions.NewService(versions.NewMemoryRepository())
	if err != nil {
		t.Fatalf("version service: %v", err)
	}
	worker := jobs.NewWorker(lockService, versionService)

	for i := 0; i < 2; i++ {
		report, err := worker.Process(ctx)
		if err != nil {
			t.Fatalf("process: %v", err)
		}
		if report.LocksCleared != 0 || report.VersionsPruned != 0 {
			t.Fatalf("an empty store must be a no-op, got %+v", report)
		}
	}
}

func TestProcessContinuesAfterSweepFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	versionService, err := versions.NewService(versions.NewMemoryRepository(),
		versions.WithClock(clock),
		versions.WithRetention(24*time.Hour, 1),
	)
	if err != nil {
		t.Fatalf("version service: %v", err)
	}
	entity := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := versionService.Create(ctx, versions.CreateInput{
			EntityID: entity,
			Snapshot: versions.Snapshot{Content: map[string]any{"body": i}},
		}); err != nil {
			t.Fatalf("create version: %v", err)
		}
	}
	now = now.Add(30 * 24 * time.Hour)

	worker := jobs.NewWorker(failingSweeper{}, versionService, jobs.WithClock(clock))
	report, err := worker.Process(ctx)
	if err == nil {
		t.Fatal("expected the sweep failure to surface")
	}
	if report.VersionsPruned != 1 {
		t.Fatalf("pruning must still run after a sweep failure, got %d", report.VersionsPruned)
	}
}
