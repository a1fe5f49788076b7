package versions

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

const (
	// DefaultRetentionHorizon is how long a version is kept before it
	// becomes eligible for pruning.
	DefaultRetentionHorizon = 90 * 24 * time.Hour
	// DefaultKeepLatest is how many of the newest versions survive a
	// prune regardless of age.
	DefaultKeepLatest = 10
)

// CreateInput captures everything needed to record a new version.
type CreateInput struct {
	EntityID  uuid.UUID
	Snapshot  Snapshot
	Reason    string
	CreatedBy uuid.UUID
}

// RestoreResult carries the outcome of a restore: the snapshot the caller
// should apply to the live entity, plus the two versions the restore wrote.
type RestoreResult struct {
	Snapshot        Snapshot
	SafetyVersion   *Version
	RestoredVersion *Version
}

// PruneReport summarizes one prune run.
type PruneReport struct {
	Entities int
	Removed  int
}

// Service manages the immutable version history of content entities.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Version, error)
	List(ctx context.Context, entityID uuid.UUID) ([]*Version, error)
	Get(ctx context.Context, entityID uuid.UUID, number int) (*Version, error)
	Compare(ctx context.Context, entityID uuid.UUID, numberA, numberB int) (*Diff, error)
	Restore(ctx context.Context, entityID uuid.UUID, number int, current Snapshot, restoredBy uuid.UUID) (*RestoreResult, error)
	Prune(ctx context.Context, entityID uuid.UUID) (int, error)
	PruneAll(ctx context.Context) (*PruneReport, error)
}

type service struct {
	repo       Repository
	clock      func() time.Time
	ids        func() uuid.UUID
	horizon    time.Duration
	keepLatest int
	logger     interfaces.Logger
}

// ServiceOption configures the version service.
type ServiceOption func(*service)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator overrides version id generation.
func WithIDGenerator(gen func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// WithRetention overrides the prune policy. Non-positive values keep the
// defaults.
func WithRetention(horizon time.Duration, keepLatest int) ServiceOption {
	return func(s *service) {
		if horizon > 0 {
			s.horizon = horizon
		}
		if keepLatest > 0 {
			s.keepLatest = keepLatest
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds a version service backed by the given repository.
func NewService(repo Repository, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	svc := &service{
		repo:       repo,
		clock:      time.Now,
		ids:        uuid.New,
		horizon:    DefaultRetentionHorizon,
		keepLatest: DefaultKeepLatest,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*Version, error) {
	return s.create(ctx, s.repo, input)
}

func (s *service) create(ctx context.Context, repo Repository, input CreateInput) (*Version, error) {
	if input.EntityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	snapshot := input.Snapshot.Clone()
	record := &Version{
		ID:        s.ids(),
		EntityID:  input.EntityID,
		Content:   snapshot.Content,
		Metadata:  snapshot.Metadata,
		Reason:    input.Reason,
		CreatedBy: input.CreatedBy,
		CreatedAt: s.clock().UTC(),
	}
	created, err := repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Debug("version created",
			"entity_id", created.EntityID.String(),
			"number", created.Number,
		)
	}
	return created, nil
}

func (s *service) List(ctx context.Context, entityID uuid.UUID) ([]*Version, error) {
	if entityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	records, err := s.repo.ListByEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Number > records[j].Number
	})
	return records, nil
}

func (s *service) Get(ctx context.Context, entityID uuid.UUID, number int) (*Version, error) {
	if entityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	return s.repo.GetByNumber(ctx, entityID, number)
}

func (s *service) Compare(ctx context.Context, entityID uuid.UUID, numberA, numberB int) (*Diff, error) {
	if entityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	versionA, err := s.repo.GetByNumber(ctx, entityID, numberA)
	if err != nil {
		return nil, err
	}
	versionB, err := s.repo.GetByNumber(ctx, entityID, numberB)
	if err != nil {
		return nil, err
	}
	diff := &Diff{
		EntityID: entityID,
		VersionA: numberA,
		VersionB: numberB,
		Fields: map[string]FieldDiff{
			"content":     diffField(versionA.Content, versionB.Content),
			"title":       diffField(versionA.Metadata.Title, versionB.Metadata.Title),
			"description": diffField(versionA.Metadata.Description, versionB.Metadata.Description),
			"tags":        diffField(versionA.Metadata.Tags, versionB.Metadata.Tags),
		},
	}
	return diff, nil
}

func diffField(a, b any) FieldDiff {
	return FieldDiff{
		Changed: !reflect.DeepEqual(a, b),
		ValueA:  a,
		ValueB:  b,
	}
}

// Restore captures the current live state as a safety version, then records a
// fresh version holding the target's snapshot. Both writes happen in one
// transaction when the repository supports it. The caller applies the
// returned snapshot to the live entity; publish state is untouched because
// snapshots never carry it.
func (s *service) Restore(ctx context.Context, entityID uuid.UUID, number int, current Snapshot, restoredBy uuid.UUID) (*RestoreResult, error) {
	if entityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	target, err := s.repo.GetByNumber(ctx, entityID, number)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{Snapshot: target.Snapshot()}

	write := func(ctx context.Context, repo Repository) error {
		safety, err := s.create(ctx, repo, CreateInput{
			EntityID:  entityID,
			Snapshot:  current,
			Reason:    fmt.Sprintf("before restoring to version %d", number),
			CreatedBy: restoredBy,
		})
		if err != nil {
			return err
		}
		restored, err := s.create(ctx, repo, CreateInput{
			EntityID:  entityID,
			Snapshot:  target.Snapshot(),
			Reason:    fmt.Sprintf("restored to version %d", number),
			CreatedBy: restoredBy,
		})
		if err != nil {
			return err
		}
		result.SafetyVersion = safety
		result.RestoredVersion = restored
		return nil
	}

	if tx, ok := s.repo.(Transactional); ok {
		err = tx.RunInTx(ctx, write)
	} else {
		err = write(ctx, s.repo)
	}
	if err != nil {
		return nil, &RestoreIntegrityError{EntityID: entityID, Number: number, Err: err}
	}

	if s.logger != nil {
		s.logger.Info("version restored",
			"entity_id", entityID.String(),
			"number", number,
			"new_number", result.RestoredVersion.Number,
		)
	}
	return result, nil
}

// Prune removes versions of one entity that fall outside the retention
// policy: older than the horizon, not among the newest keepLatest, and never
// the entity's last remaining version.
func (s *service) Prune(ctx context.Context, entityID uuid.UUID) (int, error) {
	if entityID == uuid.Nil {
		return 0, ErrEntityRequired
	}
	cutoff := s.clock().UTC().Add(-s.horizon)
	removed, err := s.repo.DeleteOlderThan(ctx, entityID, cutoff, s.keepLatest)
	if err != nil {
		return 0, err
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("versions pruned",
			"entity_id", entityID.String(),
			"removed", removed,
		)
	}
	return removed, nil
}

// PruneAll runs the prune policy across every entity with versions.
func (s *service) PruneAll(ctx context.Context) (*PruneReport, error) {
	ids, err := s.repo.EntityIDs(ctx)
	if err != nil {
		return nil, err
	}
	report := &PruneReport{Entities: len(ids)}
	for _, id := range ids {
		removed, err := s.Prune(ctx, id)
		if err != nil {
			return report, err
		}
		report.Removed += removed
	}
	return report, nil
}
