package locks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

// DefaultTTL is how long an acquired lock lives without being extended.
const DefaultTTL = 5 * time.Minute

// Service manages advisory edit locks over content entities.
type Service interface {
	// Acquire takes the lock for the user and session, refreshing it when
	// the caller already holds it. A live competing lock yields a
	// ConflictError.
	Acquire(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (*Lock, error)
	// Extend adds extra on top of the current expiry of a lock the caller
	// holds, so repeated extension cannot push the deadline further than
	// the holder actually earned. A non-positive extra extends by the
	// configured TTL. ErrNotHeld is returned when the lock lapsed or
	// belongs to a different session; a live competing lock yields a
	// ConflictError.
	Extend(ctx context.Context, entityID, userID uuid.UUID, sessionID string, extra time.Duration) (*Lock, error)
	// Release drops a lock the caller holds. Releasing a lock that is
	// already gone is not an error.
	Release(ctx context.Context, entityID, userID uuid.UUID, sessionID string) error
	// Status reports the entity's lock state from the caller's viewpoint.
	Status(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (*Status, error)
	// IsLockedByOther reports whether a live lock held by someone other
	// than the caller exists.
	IsLockedByOther(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (bool, error)
	// Sweep removes every lapsed lock row.
	Sweep(ctx context.Context) (int, error)
}

type service struct {
	repo   Repository
	clock  func() time.Time
	ttl    time.Duration
	logger interfaces.Logger
}

// ServiceOption configures the lock service.
type ServiceOption func(*service)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTTL overrides the lock lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *service) {
		if ttl > 0 {
			s.ttl = ttl
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

// NewService builds a lock service backed by the given repository.
func NewService(repo Repository, opts ...ServiceOption) (Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	svc := &service{
		repo:  repo,
		clock: time.Now,
		ttl:   DefaultTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func validateHolder(entityID, userID uuid.UUID, sessionID string) error {
	if entityID == uuid.Nil {
		return ErrEntityRequired
	}
	if userID == uuid.Nil || strings.TrimSpace(sessionID) == "" {
		return ErrHolderRequired
	}
	return nil
}

func (s *service) Acquire(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (*Lock, error) {
	if err := validateHolder(entityID, userID, sessionID); err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	lock := &Lock{
		ID:         uuid.New(),
		EntityID:   entityID,
		UserID:     userID,
		SessionID:  sessionID,
		AcquiredAt: now,
		ExpiresAt:  now.Add(s.ttl),
	}
	stored, ok, err := s.repo.Acquire(ctx, lock, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.conflict(entityID, stored, now)
	}
	if s.logger != nil {
		s.logger.Debug("lock acquired",
			"entity_id", entityID.String(),
			"user_id", userID.String(),
			"expires_at", stored.ExpiresAt,
		)
	}
	return stored, nil
}

func (s *service) Extend(ctx context.Context, entityID, userID uuid.UUID, sessionID string, extra time.Duration) (*Lock, error) {
	if err := validateHolder(entityID, userID, sessionID); err != nil {
		return nil, err
	}
	if extra <= 0 {
		extra = s.ttl
	}
	now := s.clock().UTC()
	current, ok, err := s.repo.Extend(ctx, entityID, userID, sessionID, extra, now)
	if err != nil {
		return nil, err
	}
	if ok {
		return current, nil
	}
	if current != nil && !current.Expired(now) && !current.HeldBy(userID, sessionID) {
		return nil, s.conflict(entityID, current, now)
	}
	return nil, ErrNotHeld
}

func (s *service) Release(ctx context.Context, entityID, userID uuid.UUID, sessionID string) error {
	if err := validateHolder(entityID, userID, sessionID); err != nil {
		return err
	}
	released, err := s.repo.Release(ctx, entityID, userID, sessionID)
	if err != nil {
		return err
	}
	if released && s.logger != nil {
		s.logger.Debug("lock released",
			"entity_id", entityID.String(),
			"user_id", userID.String(),
		)
	}
	return nil
}

func (s *service) Status(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (*Status, error) {
	if entityID == uuid.Nil {
		return nil, ErrEntityRequired
	}
	current, err := s.repo.Get(ctx, entityID)
	if err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	if current == nil || current.Expired(now) {
		return &Status{}, nil
	}
	return &Status{
		Locked:    true,
		Mine:      current.HeldBy(userID, sessionID),
		Holder:    current.UserID,
		ExpiresAt: current.ExpiresAt,
		Remaining: current.ExpiresAt.Sub(now),
	}, nil
}

func (s *service) IsLockedByOther(ctx context.Context, entityID, userID uuid.UUID, sessionID string) (bool, error) {
	status, err := s.Status(ctx, entityID, userID, sessionID)
	if err != nil {
		return false, err
	}
	return status.Locked && !status.Mine, nil
}

func (s *service) Sweep(ctx context.Context) (int, error) {
	removed, err := s.repo.ClearExpired(ctx, s.clock().UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 && s.logger != nil {
		s.logger.Debug("expired locks cleared", "removed", removed)
	}
	return removed, nil
}

func (s *service) conflict(entityID uuid.UUID, current *Lock, now time.Time) error {
	conflict := &ConflictError{EntityID: entityID}
	if current != nil {
		conflict.Holder = current.UserID
		conflict.ExpiresAt = current.ExpiresAt
		conflict.Remaining = current.ExpiresAt.Sub(now)
	}
	return conflict
}
