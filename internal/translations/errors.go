package translations

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrSourceRequired indicates the source entity id was missing.
	ErrSourceRequired = errors.New("translations: source entity id required")
	// ErrLanguageRequired indicates the language code was missing.
	ErrLanguageRequired = errors.New("translations: language code required")
	// ErrTreeRequired indicates a nil content tree was supplied.
	ErrTreeRequired = errors.New("translations: content tree required")
	// ErrLinkNotFound indicates no link exists for the source/language pair.
	ErrLinkNotFound = errors.New("translations: translation link not found")
	// ErrLinkExists indicates a link for the source/language pair already
	// exists.
	ErrLinkExists = errors.New("translations: translation link already exists")
	// ErrRepositoryRequired indicates the service was constructed without
	// a repository.
	ErrRepositoryRequired = errors.New("translations: repository required")
)

// LinkNotFoundError reports a missing link for a specific source and language.
type LinkNotFoundError struct {
	SourceID uuid.UUID
	Language string
}

func (e *LinkNotFoundError) Error() string {
	return fmt.Sprintf("translations: no %s link for source %s", e.Language, e.SourceID)
}

func (e *LinkNotFoundError) Unwrap() error {
	return ErrLinkNotFound
}
