package schema_test

import (
	"errors"
	"testing"

	"github.com/allanasp/haspen-cms-sub001/internal/schema"
)

func newRegistry() *schema.Registry {
	return schema.NewRegistry(newValidator())
}

func TestRegisterAndResolve(t *testing.T) {
	r := newRegistry()
	if err := r.Register("acme", heroSchema(), false); err != nil {
		t.Fatalf("Register: %v", err)
	}

	resolved, err := r.Resolve("acme", "hero")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Name != "hero" || len(resolved.Fields) != 2 {
		t.Fatalf("unexpected schema: %+v", resolved)
	}

	// Resolution hands out clones; mutating the result must not leak back.
	resolved.Fields[0].Name = "mutated"
	again, err := r.Resolve("acme", "hero")
	if err != nil {
		t.Fatalf("Resolve after mutation: %v", err)
	}
	if again.Fields[0].Name != "title" {
		t.Fatalf("registry leaked a shared schema: %+v", again.Fields[0])
	}
}

func TestRegisterRejectsInvalidDefinition(t *testing.T) {
	r := newRegistry()
	err := r.Register("acme", &schema.ComponentSchema{Name: "broken"}, false)
	if !errors.Is(err, schema.ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if _, err := r.Resolve("acme", "broken"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("invalid schema must not become resolvable, got %v", err)
	}
}

func TestRegisterDuplicateNeedsOverwrite(t *testing.T) {
	r := newRegistry()
	if err := r.Register("acme", heroSchema(), false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register("acme", heroSchema(), false); !errors.Is(err, schema.ErrSchemaExists) {
		t.Fatalf("expected ErrSchemaExists, got %v", err)
	}

	replacement := heroSchema()
	replacement.DisplayName = "Hero v2"
	if err := r.Register("acme", replacement, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	resolved, err := r.Resolve("acme", "hero")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.DisplayName != "Hero v2" {
		t.Fatalf("overwrite did not replace schema: %+v", resolved)
	}
}

func TestResolveNormalizesNames(t *testing.T) {
	r := newRegistry()
	s := heroSchema()
	s.Name = "Hero Banner"
	if err := r.Register("acme", s, false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Resolve("acme", "  hero banner "); err != nil {
		t.Fatalf("normalized lookup failed: %v", err)
	}
	if _, err := r.Resolve("acme", "hero-banner"); err != nil {
		t.Fatalf("slug lookup failed: %v", err)
	}
}

func TestRegistryTenantsAreIsolated(t *testing.T) {
	r := newRegistry()
	if err := r.Register("acme", heroSchema(), false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := r.Resolve("other", "hero"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("tenant scopes must not bleed, got %v", err)
	}
}

func TestRegistryListSortsByName(t *testing.T) {
	r := newRegistry()
	for _, name := range []string{"teaser", "hero", "quote"} {
		s := heroSchema()
		s.Name = name
		if err := r.Register("acme", s, false); err != nil {
			t.Fatalf("Register %s: %v", name, err)
		}
	}
	listed := r.List("acme")
	if len(listed) != 3 {
		t.Fatalf("expected 3 schemas, got %d", len(listed))
	}
	for i, want := range []string{"hero", "quote", "teaser"} {
		if listed[i].Name != want {
			t.Fatalf("position %d: got %s, want %s", i, listed[i].Name, want)
		}
	}
}

func TestRegistryRemove(t *testing.T) {
	r := newRegistry()
	if err := r.Register("acme", heroSchema(), false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	r.Remove("acme", "hero")
	if _, err := r.Resolve("acme", "hero"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("expected removal, got %v", err)
	}
	r.Remove("acme", "never-registered")
}

func TestRegisterReservesMaxInstancesAndRootFlags(t *testing.T) {
	r := newRegistry()
	max := 1
	s := heroSchema()
	s.Root = true
	s.Nestable = false
	s.MaxInstances = &max
	if err := r.Register("acme", s, false); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resolved, err := r.Resolve("acme", "hero")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !resolved.Root || resolved.Nestable || resolved.MaxInstances == nil || *resolved.MaxInstances != 1 {
		t.Fatalf("structural flags lost in round trip: %+v", resolved)
	}
}
