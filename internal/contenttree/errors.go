package contenttree

import (
	"errors"
	"fmt"
)

var (
	ErrBodyMissing        = errors.New("contenttree: body is missing or not a list")
	ErrBlockMalformed     = errors.New("contenttree: body entry is not a block object")
	ErrUnknownComponent   = errors.New("contenttree: component not found")
	ErrDuplicateBlockID   = errors.New("contenttree: duplicate block id")
	ErrBlockIDRequired    = errors.New("contenttree: block id is required")
	ErrMaxDepthExceeded   = errors.New("contenttree: maximum nesting depth exceeded")
	ErrComponentNotNested = errors.New("contenttree: component may not be nested")
)

// UnknownComponentError marks a block whose component reference does not
// resolve in the tenant's schema set. Validation of that subtree halts, the
// rest of the tree is still checked.
type UnknownComponentError struct {
	Component string
}

func (e *UnknownComponentError) Error() string {
	if e == nil || e.Component == "" {
		return ErrUnknownComponent.Error()
	}
	return fmt.Sprintf("%s: %q", ErrUnknownComponent.Error(), e.Component)
}

func (e *UnknownComponentError) Unwrap() error {
	return ErrUnknownComponent
}
