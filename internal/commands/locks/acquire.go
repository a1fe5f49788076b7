package lockscmd

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/commands"
	"github.com/allanasp/haspen-cms-sub001/internal/locks"
	"github.com/allanasp/haspen-cms-sub001/internal/logging"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

const acquireLockMessageType = "cms.locks.acquire"

// AcquireLockCommand requests an exclusive edit lock on an entity.
type AcquireLockCommand struct {
	EntityID  uuid.UUID `json:"entity_id"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
}

// Type implements command.Message.
func (AcquireLockCommand) Type() string { return acquireLockMessageType }

// Validate ensures the command carries the required identifiers.
func (m AcquireLockCommand) Validate() error {
	errs := validation.Errors{}
	if m.EntityID == uuid.Nil {
		errs["entity_id"] = validation.NewError("cms.locks.acquire.entity_id_required", "entity_id is required")
	}
	if m.UserID == uuid.Nil {
		errs["user_id"] = validation.NewError("cms.locks.acquire.user_id_required", "user_id is required")
	}
	if strings.TrimSpace(m.SessionID) == "" {
		errs["session_id"] = validation.NewError("cms.locks.acquire.session_id_required", "session_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AcquireLockHandler takes edit locks via the lock service.
type AcquireLockHandler struct {
	service locks.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[AcquireLockCommand]
}

// AcquireLockOption customises the acquire handler.
type AcquireLockOption func(*AcquireLockHandler)

// AcquireLockWithTimeout overrides the default execution timeout.
func AcquireLockWithTimeout(timeout time.Duration) AcquireLockOption {
	return func(h *AcquireLockHandler) {
		h.timeout = timeout
	}
}

// NewAcquireLockHandler constructs a handler wired to the provided lock service.
func NewAcquireLockHandler(service locks.Service, logger interfaces.Logger, opts ...AcquireLockOption) *AcquireLockHandler {
	handler := &AcquireLockHandler{
		service: service,
		logger:  commands.EnsureLogger(logger),
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	handler.inner = commands.NewHandler(handler.run,
		commands.WithLogger[AcquireLockCommand](handler.logger),
		commands.WithTimeout[AcquireLockCommand](handler.timeout),
		commands.WithOperation[AcquireLockCommand]("locks.acquire"),
	)
	return handler
}

// Execute satisfies command.Commander[AcquireLockCommand].
func (h *AcquireLockHandler) Execute(ctx context.Context, msg AcquireLockCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *AcquireLockHandler) run(ctx context.Context, msg AcquireLockCommand) error {
	lock, err := h.service.Acquire(ctx, msg.EntityID, msg.UserID, msg.SessionID)
	if err != nil {
		return err
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "locks.acquire",
		"entity_id":  msg.EntityID,
		"user_id":    msg.UserID,
		"expires_at": lock.ExpiresAt,
	}).Info("locks.command.acquire.completed")
	return nil
}
