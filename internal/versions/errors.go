package versions

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrVersionNotFound indicates the requested version number does not
	// exist for the entity.
	ErrVersionNotFound = errors.New("versions: version not found")
	// ErrEntityRequired indicates the owning entity id was missing.
	ErrEntityRequired = errors.New("versions: entity id required")
	// ErrRepositoryRequired indicates the service was constructed without
	// a repository.
	ErrRepositoryRequired = errors.New("versions: repository required")
)

// NotFoundError reports a missing version for a specific entity and number.
type NotFoundError struct {
	EntityID uuid.UUID
	Number   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("versions: version %d not found for entity %s", e.Number, e.EntityID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrVersionNotFound
}

// RestoreIntegrityError reports that a restore could not capture the safety
// snapshot or write the restored version atomically.
type RestoreIntegrityError struct {
	EntityID uuid.UUID
	Number   int
	Err      error
}

func (e *RestoreIntegrityError) Error() string {
	return fmt.Sprintf("versions: restore of entity %s to version %d failed: %v", e.EntityID, e.Number, e.Err)
}

func (e *RestoreIntegrityError) Unwrap() error {
	return e.Err
}
