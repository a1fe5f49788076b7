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

const releaseLockMessageType = "cms.locks.release"

// ReleaseLockCommand drops a lock the caller holds.
type ReleaseLockCommand struct {
	EntityID  uuid.UUID `json:"entity_id"`
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
}

// Type implements command.Message.
func (ReleaseLockCommand) Type() string { return releaseLockMessageType }

// Validate ensures the command carries the required identifiers.
func (m ReleaseLockCommand) Validate() error {
	errs := validation.Errors{}
	if m.EntityID == uuid.Nil {
		errs["entity_id"] = validation.NewError("cms.locks.release.entity_id_required", "entity_id is required")
	}
	if m.UserID == uuid.Nil {
		errs["user_id"] = validation.NewError("cms.locks.release.user_id_required", "user_id is required")
	}
	if strings.TrimSpace(m.SessionID) == "" {
		errs["session_id"] = validation.NewError("cms.locks.release.session_id_required", "session_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ReleaseLockHandler releases held locks via the lock service.
type ReleaseLockHandler struct {
	service locks.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[ReleaseLockCommand]
}

// ReleaseLockOption customises the release handler.
type ReleaseLockOption func(*ReleaseLockHandler)

// ReleaseLockWithTimeout overrides the default execution timeout.
func ReleaseLockWithTimeout(timeout time.Duration) ReleaseLockOption {
	return func(h *ReleaseLockHandler) {
		h.timeout = timeout
	}
}

// NewReleaseLockHandler constructs a handler wired to the provided lock service.
func NewReleaseLockHandler(service locks.Service, logger interfaces.Logger, opts ...ReleaseLockOption) *ReleaseLockHandler {
	handler := &ReleaseLockHandler{
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
		commands.WithLogger[ReleaseLockCommand](handler.logger),
		commands.WithTimeout[ReleaseLockCommand](handler.timeout),
		commands.WithOperation[ReleaseLockCommand]("locks.release"),
	)
	return handler
}

// Execute satisfies command.Commander[ReleaseLockCommand].
func (h *ReleaseLockHandler) Execute(ctx context.Context, msg ReleaseLockCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *ReleaseLockHandler) run(ctx context.Context, msg ReleaseLockCommand) error {
	if err := h.service.Release(ctx, msg.EntityID, msg.UserID, msg.SessionID); err != nil {
		return err
	}

	logging.WithFields(h.logger, map[string]any{
		"operation": "locks.release",
		"entity_id": msg.EntityID,
		"user_id":   msg.UserID,
	}).Info("locks.command.release.completed")
	return nil
}
