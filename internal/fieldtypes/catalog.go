package fieldtypes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a supported field type.
type Kind string

const (
	KindText        Kind = "text"
	KindTextarea    Kind = "textarea"
	KindRichtext    Kind = "richtext"
	KindMarkdown    Kind = "markdown"
	KindNumber      Kind = "number"
	KindBoolean     Kind = "boolean"
	KindEmail       Kind = "email"
	KindURL         Kind = "url"
	KindDate        Kind = "date"
	KindDatetime    Kind = "datetime"
	KindSelect      Kind = "select"
	KindMultiselect Kind = "multiselect"
	KindAsset       Kind = "asset"
	KindTable       Kind = "table"
	KindBlocks      Kind = "blocks"
)

var ErrUnknownFieldType = errors.New("fieldtypes: unknown field type")

// SelectOption is one entry of a select/multiselect option set.
type SelectOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Constraints carries the type-specific limits a field definition may declare.
// Which keys a given kind accepts is described by the kind's descriptor.
type Constraints struct {
	MinLength          *int           `json:"min_length,omitempty"`
	MaxLength          *int           `json:"max_length,omitempty"`
	Minimum            *float64       `json:"minimum,omitempty"`
	Maximum            *float64       `json:"maximum,omitempty"`
	Options            []SelectOption `json:"options,omitempty"`
	ComponentWhitelist []string       `json:"component_whitelist,omitempty"`
	MinimumChildren    *int           `json:"minimum_children,omitempty"`
	MaximumChildren    *int           `json:"maximum_children,omitempty"`
}

// Validator checks a tagged value against a field's constraints.
type Validator func(value Value, constraints Constraints) error

// Definition describes one registered field type: its validator plus a
// JSON-schema descriptor of the constraint properties the kind accepts.
type Definition struct {
	Kind       Kind
	Validate   Validator
	Descriptor map[string]any
}

// Catalog is the immutable registry of field types. It is constructed once at
// process start via New and never mutated afterwards; overrides are applied as
// construction options instead of late registration.
type Catalog struct {
	types map[Kind]Definition
}

// CatalogOption customises the catalog during construction.
type CatalogOption func(map[Kind]Definition)

// WithType registers (or overwrites) a full type definition.
func WithType(def Definition) CatalogOption {
	return func(types map[Kind]Definition) {
		kind := Kind(strings.TrimSpace(string(def.Kind)))
		if kind == "" || def.Validate == nil {
			return
		}
		def.Kind = kind
		if def.Descriptor == nil {
			def.Descriptor = baseDescriptor()
		}
		types[kind] = def
	}
}

// WithValidatorOverride swaps the validator of an already registered kind,
// keeping its descriptor.
func WithValidatorOverride(kind Kind, validator Validator) CatalogOption {
	return func(types map[Kind]Definition) {
		if validator == nil {
			return
		}
		def, ok := types[kind]
		if !ok {
			return
		}
		def.Validate = validator
		types[kind] = def
	}
}

// New builds a catalog populated with the built-in types, then applies any
// construction options. The returned catalog is read-only.
func New(opts ...CatalogOption) *Catalog {
	types := builtinTypes()
	for _, opt := range opts {
		if opt != nil {
			opt(types)
		}
	}
	return &Catalog{types: types}
}

// Known reports whether the kind is registered.
func (c *Catalog) Known(kind Kind) bool {
	_, ok := c.types[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (c *Catalog) Kinds() []Kind {
	out := make([]Kind, 0, len(c.types))
	for kind := range c.types {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate dispatches the value to the kind's validator.
func (c *Catalog) Validate(kind Kind, value Value, constraints Constraints) error {
	def, ok := c.types[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFieldType, kind)
	}
	return def.Validate(value, constraints)
}

// Descriptor returns the JSON-schema descriptor for the constraint properties
// the kind accepts. The schema validator compiles this to check component
// schema definitions themselves.
func (c *Catalog) Descriptor(kind Kind) (map[string]any, error) {
	def, ok := c.types[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFieldType, kind)
	}
	return cloneDescriptor(def.Descriptor), nil
}

// IsContainer reports whether a kind holds nested content blocks rather than
// leaf values.
func IsContainer(kind Kind) bool {
	return kind == KindBlocks
}

func cloneDescriptor(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneDescriptor(typed)
		case []any:
			cloned := make([]any, len(typed))
			for i, entry := range typed {
				if nested, ok := entry.(map[string]any); ok {
					cloned[i] = cloneDescriptor(nested)
					continue
				}
				cloned[i] = entry
			}
			out[key] = cloned
		default:
			out[key] = value
		}
	}
	return out
}
