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

const createVersionMessageType = "cms.versions.create"

// CreateVersionCommand snapshots an entity's current content and metadata.
type CreateVersionCommand struct {
	EntityID  uuid.UUID         `json:"entity_id"`
	Snapshot  versions.Snapshot `json:"snapshot"`
	Reason    string            `json:"reason"`
	CreatedBy uuid.UUID         `json:"created_by"`
}

// Type implements command.Message.
func (CreateVersionCommand) Type() string { return createVersionMessageType }

// Validate ensures the command carries the required identifiers.
func (m CreateVersionCommand) Validate() error {
	errs := validation.Errors{}
	if m.EntityID == uuid.Nil {
		errs["entity_id"] = validation.NewError("cms.versions.create.entity_id_required", "entity_id is required")
	}
	if m.CreatedBy == uuid.Nil {
		errs["created_by"] = validation.NewError("cms.versions.create.created_by_required", "created_by is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateVersionHandler records snapshots via the version service.
type CreateVersionHandler struct {
	service versions.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[CreateVersionCommand]
}

// CreateVersionOption customises the create handler.
type CreateVersionOption func(*CreateVersionHandler)

// CreateVersionWithTimeout overrides the default execution timeout.
func CreateVersionWithTimeout(timeout time.Duration) CreateVersionOption {
	return func(h *CreateVersionHandler) {
		h.timeout = timeout
	}
}

// NewCreateVersionHandler constructs a handler wired to the provided version service.
func NewCreateVersionHandler(service versions.Service, logger interfaces.Logger, opts ...CreateVersionOption) *CreateVersionHandler {
	handler := &CreateVersionHandler{
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
		commands.WithLogger[CreateVersionCommand](handler.logger),
		commands.WithTimeout[CreateVersionCommand](handler.timeout),
		commands.WithOperation[CreateVersionCommand]("versions.create"),
	)
	return handler
}

// Execute satisfies command.Commander[CreateVersionCommand].
func (h *CreateVersionHandler) Execute(ctx context.Context, msg CreateVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *CreateVersionHandler) run(ctx context.Context, msg CreateVersionCommand) error {
	created, err := h.service.Create(ctx, versions.CreateInput{
		EntityID:  msg.EntityID,
		Snapshot:  msg.Snapshot,
		Reason:    msg.Reason,
		CreatedBy: msg.CreatedBy,
	})
	if err != nil {
		return err
	}

	logging.WithFields(h.logger, map[string]any{
		"operation": "versions.create",
		"entity_id": msg.EntityID,
		"number":    created.Number,
	}).Info("versions.command.create.completed")
	return nil
}
