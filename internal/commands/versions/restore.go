package versionscmd

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/commands"
	"github.com/allanasp/haspen-cms-sub001/internal/logging"
	"github.com/allanasp/haspen-cms-sub001/internal/versions"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

const restoreVersionMessageType = "cms.versions.restore"

// RestoreVersionCommand requests that a historical version be restored. The
// caller supplies the entity's live state so the pre-restore snapshot can be
// captured; the restored snapshot is delivered through OnRestore.
type RestoreVersionCommand struct {
	EntityID   uuid.UUID         `json:"entity_id"`
	Version    int               `json:"version"`
	Current    versions.Snapshot `json:"current"`
	RestoredBy uuid.UUID         `json:"restored_by"`

	// OnRestore receives the restore outcome so the owning service can
	// apply the snapshot to the live entity. Optional.
	OnRestore func(*versions.RestoreResult) `json:"-"`
}

// Type implements command.Message.
func (RestoreVersionCommand) Type() string { return restoreVersionMessageType }

// Validate ensures the command carries the required identifiers.
func (m RestoreVersionCommand) Validate() error {
	errs := validation.Errors{}
	if m.EntityID == uuid.Nil {
		errs["entity_id"] = validation.NewError("cms.versions.restore.entity_id_required", "entity_id is required")
	}
	if m.Version <= 0 {
		errs["version"] = validation.NewError("cms.versions.restore.version_invalid", "version must be greater than zero")
	}
	if m.RestoredBy == uuid.Nil {
		errs["restored_by"] = validation.NewError("cms.versions.restore.restored_by_required", "restored_by is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RestoreVersionHandler restores historical versions via the version service.
type RestoreVersionHandler struct {
	service versions.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[RestoreVersionCommand]
}

// RestoreVersionOption customises the restore handler.
type RestoreVersionOption func(*RestoreVersionHandler)

// RestoreVersionWithTimeout overrides the default execution timeout.
func RestoreVersionWithTimeout(timeout time.Duration) RestoreVersionOption {
	return func(h *RestoreVersionHandler) {
		h.timeout = timeout
	}
}

// NewRestoreVersionHandler constructs a handler wired to the provided version service.
func NewRestoreVersionHandler(service versions.Service, logger interfaces.Logger, opts ...RestoreVersionOption) *RestoreVersionHandler {
	handler := &RestoreVersionHandler{
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
		commands.WithLogger[RestoreVersionCommand](handler.logger),
		commands.WithTimeout[RestoreVersionCommand](handler.timeout),
		commands.WithOperation[RestoreVersionCommand]("versions.restore"),
	)
	return handler
}

// Execute satisfies command.Commander[RestoreVersionCommand].
func (h *RestoreVersionHandler) Execute(ctx context.Context, msg RestoreVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *RestoreVersionHandler) run(ctx context.Context, msg RestoreVersionCommand) error {
	result, err := h.service.Restore(ctx, msg.EntityID, msg.Version, msg.Current, msg.RestoredBy)
	if err != nil {
		return err
	}
	if msg.OnRestore != nil {
		msg.OnRestore(result)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":   "versions.restore",
		"entity_id":   msg.EntityID,
		"version":     msg.Version,
		"restored_by": msg.RestoredBy,
	}).Info("versions.command.restore.completed")
	return nil
}
