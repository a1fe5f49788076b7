package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/allanasp/haspen-cms-sub001/internal/schema"
)

func TestMemoryStoreSaveAssignsDeterministicID(t *testing.T) {
	store := schema.NewMemoryStore()
	ctx := context.Background()

	first, err := store.Save(ctx, &schema.Record{Tenant: "Acme", Name: "Hero", Definition: heroSchema()})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.Tenant != "acme" || first.Name != "hero" {
		t.Fatalf("expected normalized tenant and name, got %s/%s", first.Tenant, first.Name)
	}

	second, err := store.Save(ctx, &schema.Record{Tenant: "acme", Name: "hero", Definition: heroSchema()})
	if err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("same tenant/name pair must map to the same row: %s vs %s", first.ID, second.ID)
	}
}

func TestMemoryStoreGetAndDelete(t *testing.T) {
	store := schema.NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Save(ctx, &schema.Record{Tenant: "acme", Name: "hero", Definition: heroSchema()}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := store.Get(ctx, "acme", "hero")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record.Definition == nil || record.Definition.Name != "hero" {
		t.Fatalf("unexpected record: %+v", record)
	}

	if _, err := store.Get(ctx, "acme", "missing"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("expected ErrComponentNotFound, got %v", err)
	}

	if err := store.Delete(ctx, "acme", "hero"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "acme", "hero"); !errors.Is(err, schema.ErrComponentNotFound) {
		t.Fatalf("expected removal, got %v", err)
	}
	if err := store.Delete(ctx, "acme", "hero"); err != nil {
		t.Fatalf("Delete must be idempotent, got %v", err)
	}
}

func TestMemoryStoreListScopedToTenant(t *testing.T) {
	store := schema.NewMemoryStore()
	ctx := context.Background()

	seed := func(tenant, name string) {
		s := heroSchema()
		s.Name = name
		if _, err := store.Save(ctx, &schema.Record{Tenant: tenant, Name: name, Definition: s}); err != nil {
			t.Fatalf("Save %s/%s: %v", tenant, name, err)
		}
	}
	seed("acme", "teaser")
	seed("acme", "hero")
	seed("other", "hero")

	records, err := store.List(ctx, "acme")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "hero" || records[1].Name != "teaser" {
		t.Fatalf("expected name-sorted records, got %s, %s", records[0].Name, records[1].Name)
	}
}

func TestMemoryStoreRejectsNamelessRecord(t *testing.T) {
	store := schema.NewMemoryStore()
	if _, err := store.Save(context.Background(), &schema.Record{Tenant: "acme"}); !errors.Is(err, schema.ErrSchemaNameRequired) {
		t.Fatalf("expected ErrSchemaNameRequired, got %v", err)
	}
}

func TestLoadRegistryHydratesStoredSchemas(t *testing.T) {
	store := schema.NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"hero", "teaser"} {
		s := heroSchema()
		s.Name = name
		if _, err := store.Save(ctx, &schema.Record{Tenant: "acme", Name: name, Definition: s}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}
	// Records without a definition are skipped, not fatal.
	if _, err := store.Save(ctx, &schema.Record{Tenant: "acme", Name: "empty"}); err != nil {
		t.Fatalf("Save empty: %v", err)
	}

	registry := newRegistry()
	if err := schema.LoadRegistry(ctx, store, registry, "acme"); err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	for _, name := range []string{"hero", "teaser"} {
		if _, err := registry.Resolve("acme", name); err != nil {
			t.Fatalf("Resolve %s after hydration: %v", name, err)
		}
	}
}
