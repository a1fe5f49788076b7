package schema

import "errors"

var (
	ErrSchemaNameRequired    = errors.New("schema: component name is required")
	ErrSchemaEmpty           = errors.New("schema: component must declare at least one field")
	ErrSchemaInvalid         = errors.New("schema: component definition is invalid")
	ErrSchemaExists          = errors.New("schema: component already registered")
	ErrComponentNotFound     = errors.New("schema: component not found")
	ErrDescriptorUnavailable = errors.New("schema: constraint descriptor unavailable")
)
