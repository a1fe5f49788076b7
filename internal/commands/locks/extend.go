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

const extendLockMessageType = "cms.locks.extend"

// ExtendLockCommand requests more time on a lock the caller already holds.
type ExtendLockCommand struct {
	EntityID  uuid.UUID     `json:"entity_id"`
	UserID    uuid.UUID     `json:"user_id"`
	SessionID string        `json:"session_id"`
	Extra     time.Duration `json:"extra"`
}

// Type implements command.Message.
func (ExtendLockCommand) Type() string { return extendLockMessageType }

// Validate ensures the command carries the required identifiers.
func (m ExtendLockCommand) Validate() error {
	errs := validation.Errors{}
	if m.EntityID == uuid.Nil {
		errs["entity_id"] = validation.NewError("cms.locks.extend.entity_id_required", "entity_id is required")
	}
	if m.UserID == uuid.Nil {
		errs["user_id"] = validation.NewError("cms.locks.extend.user_id_required", "user_id is required")
	}
	if strings.TrimSpace(m.SessionID) == "" {
		errs["session_id"] = validation.NewError("cms.locks.extend.session_id_required", "session_id is required")
	}
	if m.Extra < 0 {
		errs["extra"] = validation.NewError("cms.locks.extend.extra_invalid", "extra must not be negative")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExtendLockHandler extends held locks via the lock service.
type ExtendLockHandler struct {
	service locks.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[ExtendLockCommand]
}

// ExtendLockOption customises the extend handler.
type ExtendLockOption func(*ExtendLockHandler)

// ExtendLockWithTimeout overrides the default execution timeout.
func ExtendLockWithTimeout(timeout time.Duration) ExtendLockOption {
	return func(h *ExtendLockHandler) {
		h.timeout = timeout
	}
}

// NewExtendLockHandler constructs a handler wired to the provided lock service.
func NewExtendLockHandler(service locks.Service, logger interfaces.Logger, opts ...ExtendLockOption) *ExtendLockHandler {
	handler := &ExtendLockHandler{
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
		commands.WithLogger[ExtendLockCommand](handler.logger),
		commands.WithTimeout[ExtendLockCommand](handler.timeout),
		commands.WithOperation[ExtendLockCommand]("locks.extend"),
	)
	return handler
}

// Execute satisfies command.Commander[ExtendLockCommand].
func (h *ExtendLockHandler) Execute(ctx context.Context, msg ExtendLockCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *ExtendLockHandler) run(ctx context.Context, msg ExtendLockCommand) error {
	lock, err := h.service.Extend(ctx, msg.EntityID, msg.UserID, msg.SessionID, msg.Extra)
	if err != nil {
		return err
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "locks.extend",
		"entity_id":  msg.EntityID,
		"user_id":    msg.UserID,
		"expires_at": lock.ExpiresAt,
	}).Info("locks.command.extend.completed")
	return nil
}
