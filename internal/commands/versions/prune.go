package versionscmd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/internal/commands"
	"github.com/allanasp/haspen-cms-sub001/internal/logging"
	"github.com/allanasp/haspen-cms-sub001/internal/versions"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

const pruneVersionsMessageType = "cms.versions.prune"

// PruneVersionsCommand applies the retention policy to one entity, or to
// every entity with history when EntityID is left zero.
type PruneVersionsCommand struct {
	EntityID uuid.UUID `json:"entity_id"`
}

// Type implements command.Message.
func (PruneVersionsCommand) Type() string { return pruneVersionsMessageType }

// Validate implements command.Message. Pruning has no required fields.
func (PruneVersionsCommand) Validate() error { return nil }

// PruneVersionsHandler sweeps version history via the version service.
type PruneVersionsHandler struct {
	service versions.Service
	logger  interfaces.Logger
	timeout time.Duration
	inner   *commands.Handler[PruneVersionsCommand]
}

// PruneVersionsOption customises the prune handler.
type PruneVersionsOption func(*PruneVersionsHandler)

// PruneVersionsWithTimeout overrides the default execution timeout.
func PruneVersionsWithTimeout(timeout time.Duration) PruneVersionsOption {
	return func(h *PruneVersionsHandler) {
		h.timeout = timeout
	}
}

// NewPruneVersionsHandler constructs a handler wired to the provided version service.
func NewPruneVersionsHandler(service versions.Service, logger interfaces.Logger, opts ...PruneVersionsOption) *PruneVersionsHandler {
	handler := &PruneVersionsHandler{
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
		commands.WithLogger[PruneVersionsCommand](handler.logger),
		commands.WithTimeout[PruneVersionsCommand](handler.timeout),
		commands.WithOperation[PruneVersionsCommand]("versions.prune"),
	)
	return handler
}

// Execute satisfies command.Commander[PruneVersionsCommand].
func (h *PruneVersionsHandler) Execute(ctx context.Context, msg PruneVersionsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func (h *PruneVersionsHandler) run(ctx context.Context, msg PruneVersionsCommand) error {
	removed := 0
	if msg.EntityID != uuid.Nil {
		count, err := h.service.Prune(ctx, msg.EntityID)
		if err != nil {
			return err
		}
		removed = count
	} else {
		report, err := h.service.PruneAll(ctx)
		if err != nil {
			return err
		}
		removed = report.Removed
	}

	logging.WithFields(h.logger, map[string]any{
		"operation": "versions.prune",
		"entity_id": msg.EntityID,
		"removed":   removed,
	}).Info("versions.command.prune.completed")
	return nil
}
