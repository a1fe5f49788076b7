package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/allanasp/haspen-cms-sub001/internal/versions"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

// LockSweeper clears expired edit locks.
type LockSweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// VersionPruner applies the version retention policy.
type VersionPruner interface {
	PruneAll(ctx context.Context) (*versions.PruneReport, error)
}

// Report summarizes one maintenance pass.
type Report struct {
	LocksCleared    int
	VersionsPruned  int
	EntitiesVisited int
	RanAt           time.Time
}

// Worker runs the periodic maintenance the content core needs: sweeping
// lapsed locks and pruning version history. Both tasks are idempotent, so
// running the worker inline, on a timer, or from several processes at once
// is safe.
type Worker struct {
	locks    LockSweeper
	versions VersionPruner
	audit    AuditRecorder
	now      func() time.Time
	logger   interfaces.Logger
}

type Option func(*Worker)

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(w *Worker) {
		w.audit = recorder
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Worker) {
		if clock != nil {
			w.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func NewWorker(locks LockSweeper, versions VersionPruner, opts ...Option) *Worker {
	w := &Worker{
		locks:    locks,
		versions: versions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process runs one maintenance pass. Lock sweeping and version pruning are
// independent; a failure in one does not stop the other, and both errors are
// reported together.
func (w *Worker) Process(ctx context.Context) (*Report, error) {
	report := &Report{RanAt: w.now().UTC()}
	var errs []error

	if w.locks != nil {
		cleared, err := w.locks.Sweep(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			report.LocksCleared = cleared
			if cleared > 0 {
				w.recordAudit(ctx, AuditEvent{
					EntityType: "lock",
					Action:     "sweep",
					OccurredAt: report.RanAt,
					Metadata:   map[string]any{"cleared": cleared},
				})
			}
		}
	}

	if w.versions != nil {
		outcome, err := w.versions.PruneAll(ctx)
		if err != nil {
			errs = append(errs, err)
		} else if outcome != nil {
			report.VersionsPruned = outcome.Removed
			report.EntitiesVisited = outcome.Entities
			if outcome.Removed > 0 {
				w.recordAudit(ctx, AuditEvent{
					EntityType: "version",
					Action:     "prune",
					OccurredAt: report.RanAt,
					Metadata: map[string]any{
						"removed":  outcome.Removed,
						"entities": outcome.Entities,
					},
				})
			}
		}
	}

	if w.logger != nil {
		w.logger.Debug("maintenance pass finished",
			"locks_cleared", report.LocksCleared,
			"versions_pruned", report.VersionsPruned,
			"errors", len(errs),
		)
	}
	return report, errors.Join(errs...)
}

func (w *Worker) recordAudit(ctx context.Context, event AuditEvent) {
	if w.audit == nil {
		return
	}
	if err := w.audit.Record(ctx, event); err != nil && w.logger != nil {
		w.logger.Warn("audit record failed", "error", err)
	}
}
