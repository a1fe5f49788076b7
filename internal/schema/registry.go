package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	slug "github.com/goliatone/go-slug"
)

// Registry stores component schemas keyed by slug-normalized technical name,
// scoped per tenant. It is the schema catalog handed to the content tree
// validator. Registration validates the definition first, so a malformed
// schema never becomes resolvable.
type Registry struct {
	validator *Validator

	mu      sync.RWMutex
	tenants map[string]map[string]*ComponentSchema
}

// NewRegistry constructs an empty registry backed by the supplied validator.
func NewRegistry(validator *Validator) *Registry {
	return &Registry{
		validator: validator,
		tenants:   make(map[string]map[string]*ComponentSchema),
	}
}

// NormalizeName produces the canonical technical-name key for lookups.
func NormalizeName(name string) string {
	candidate := strings.TrimSpace(name)
	if candidate == "" {
		return ""
	}
	normalizer := slug.Default()
	normalized, err := normalizer.Normalize(candidate)
	if err != nil || normalized == "" {
		return strings.ToLower(candidate)
	}
	return normalized
}

// Register validates and stores a schema under the tenant scope. Overwrite
// controls whether an existing schema with the same name may be replaced.
func (r *Registry) Register(tenant string, schema *ComponentSchema, overwrite bool) error {
	if schema == nil {
		return ErrSchemaInvalid
	}
	key := NormalizeName(schema.Name)
	if key == "" {
		return ErrSchemaNameRequired
	}
	if errs := r.validator.ValidateDefinition(schema); len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, errs)
	}

	scope := normalizeTenant(tenant)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tenants[scope] == nil {
		r.tenants[scope] = make(map[string]*ComponentSchema)
	}
	if _, exists := r.tenants[scope][key]; exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrSchemaExists, key)
	}
	r.tenants[scope][key] = schema.Clone()
	return nil
}

// Resolve returns the schema registered under the technical name, or
// ErrComponentNotFound.
func (r *Registry) Resolve(tenant, name string) (*ComponentSchema, error) {
	key := NormalizeName(name)
	if key == "" {
		return nil, ErrComponentNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scope, ok := r.tenants[normalizeTenant(tenant)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, key)
	}
	schema, ok := scope[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, key)
	}
	return schema.Clone(), nil
}

// List returns the tenant's schemas sorted by technical name.
func (r *Registry) List(tenant string) []*ComponentSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scope := r.tenants[normalizeTenant(tenant)]
	out := make([]*ComponentSchema, 0, len(scope))
	for _, schema := range scope {
		out = append(out, schema.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return NormalizeName(out[i].Name) < NormalizeName(out[j].Name)
	})
	return out
}

// Remove drops a schema from the tenant scope; removing an unknown name is a
// no-op.
func (r *Registry) Remove(tenant, name string) {
	key := NormalizeName(name)
	if key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if scope, ok := r.tenants[normalizeTenant(tenant)]; ok {
		delete(scope, key)
	}
}

func normalizeTenant(tenant string) string {
	trimmed := strings.ToLower(strings.TrimSpace(tenant))
	if trimmed == "" {
		return "default"
	}
	return trimmed
}
