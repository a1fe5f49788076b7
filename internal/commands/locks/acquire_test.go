package lockscmd

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/commands"
	"github.com/allanasp/haspen-cms-sub001/internal/locks"
)

func newLockService(t *testing.T) locks.Service {
	t.Helper()
	svc, err := locks.NewService(locks.NewMemoryRepository())
	if err != nil {
		t.Fatalf("lock service: %v", err)
	}
	return svc
}

func TestAcquireLockHandlerExecutesService(t *testing.T) {
	service := newLockService(t)
	logger := commands.CommandLogger(nil, "locks")
	handler := NewAcquireLockHandler(service, logger)

	entity := uuid.New()
	user := uuid.New()
	msg := AcquireLockCommand{EntityID: entity, UserID: user, SessionID: "session-a"}

	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	status, err := service.Status(context.Background(), entity, user, "session-a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Locked || !status.Mine {
		t.Fatalf("expected the handler to take the lock, got %+v", status)
	}
}

func TestAcquireLockHandlerRejectsInvalidMessage(t *testing.T) {
	handler := NewAcquireLockHandler(newLockService(t), nil)

	err := handler.Execute(context.Background(), AcquireLockCommand{})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected a validation category, got %v", err)
	}
}

func TestAcquireLockHandlerWrapsConflicts(t *testing.T) {
	service := newLockService(t)
	handler := NewAcquireLockHandler(service, nil)
	entity := uuid.New()

	if err := handler.Execute(context.Background(), AcquireLockCommand{
		EntityID: entity, UserID: uuid.New(), SessionID: "first",
	}); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	err := handler.Execute(context.Background(), AcquireLockCommand{
		EntityID: entity, UserID: uuid.New(), SessionID: "second",
	})
	if err == nil {
		t.Fatal("expected a conflict")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected a command category, got %v", err)
	}
}

func TestExtendLockHandlerAddsTime(t *testing.T) {
	service := newLockService(t)
	handler := NewExtendLockHandler(service, nil)
	entity := uuid.New()
	user := uuid.New()

	acquired, err := service.Acquire(context.Background(), entity, user, "session-a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := handler.Execute(context.Background(), ExtendLockCommand{
		EntityID: entity, UserID: user, SessionID: "session-a", Extra: 10 * time.Minute,
	}); err != nil {
		t.Fatalf("extend: %v", err)
	}

	status, err := service.Status(context.Background(), entity, user, "session-a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if want := acquired.ExpiresAt.Add(10 * time.Minute); !status.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, status.ExpiresAt)
	}
}

func TestReleaseLockHandlerDropsLock(t *testing.T) {
	service := newLockService(t)
	handler := NewReleaseLockHandler(service, nil)
	entity := uuid.New()
	user := uuid.New()

	if _, err := service.Acquire(context.Background(), entity, user, "session-a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := handler.Execute(context.Background(), ReleaseLockCommand{
		EntityID: entity, UserID: user, SessionID: "session-a",
	}); err != nil {
		t.Fatalf("release: %v", err)
	}

	status, err := service.Status(context.Background(), entity, user, "session-a")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Locked {
		t.Fatal("expected the lock to be gone")
	}
}
