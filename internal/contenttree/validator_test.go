package contenttree_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
	"github.com/allanasp/haspen-cms-sub001/internal/schema"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func testRegistry(t *testing.T) (*schema.Validator, *schema.Registry) {
	t.Helper()

	validator := schema.NewValidator(fieldtypes.New())
	registry := schema.NewRegistry(validator)

	register := func(s *schema.ComponentSchema) {
		if err := registry.Register("acme", s, false); err != nil {
			t.Fatalf("register %s: %v", s.Name, err)
		}
	}

	register(&schema.ComponentSchema{
		Name: "page",
		Root: true,
		Fields: []schema.Field{
			{Name: "title", FieldDefinition: schema.FieldDefinition{Type: fieldtypes.KindText, Required: true}},
			{Name: "count", FieldDefinition: schema.FieldDefinition{
				Type:        fieldtypes.KindNumber,
				Constraints: fieldtypes.Constraints{Maximum: floatPtr(100)},
			}},
			{Name: "body", FieldDefinition: schema.FieldDefinition{Type: fieldtypes.KindBlocks}},
		},
	})
	register(&schema.ComponentSchema{
		Name:     "grid",
		Nestable: true,
		Fields: []schema.Field{
			{Name: "columns", FieldDefinition: schema.FieldDefinition{
				Type: fieldtypes.KindBlocks,
				Constraints: fieldtypes.Constraints{
					ComponentWhitelist: []string{"card"},
					MinimumChildren:    intPtr(1),
					MaximumChildren:    intPtr(3),
				},
			}},
		},
	})
	register(&schema.ComponentSchema{
		Name:     "card",
		Nestable: true,
		Fields: []schema.Field{
			{Name: "label", FieldDefinition: schema.FieldDefinition{Type: fieldtypes.KindText}},
		},
	})
	register(&schema.ComponentSchema{
		Name:         "banner",
		Nestable:     true,
		MaxInstances: intPtr(1),
		Fields: []schema.Field{
			{Name: "message", FieldDefinition: schema.FieldDefinition{Type: fieldtypes.KindText}},
		},
	})

	return validator, registry
}

func newTreeValidator(t *testing.T, opts ...contenttree.ValidatorOption) *contenttree.Validator {
	t.Helper()
	validator, registry := testRegistry(t)
	return contenttree.NewValidator(validator, registry, opts...)
}

func block(uid, component string, fields map[string]any) map[string]any {
	out := map[string]any{"_uid": uid, "component": component}
	for key, value := range fields {
		out[key] = value
	}
	return out
}

func card(uid, label string) map[string]any {
	return block(uid, "card", map[string]any{"label": label})
}

func parse(t *testing.T, raw map[string]any) *contenttree.Tree {
	t.Helper()
	tree, err := contenttree.ParseTree(raw)
	if err != nil {
		t.Fatalf("ParseTree: %v", err)
	}
	return tree
}

func TestParseTree(t *testing.T) {
	if _, err := contenttree.ParseTree(nil); !errors.Is(err, contenttree.ErrBodyMissing) {
		t.Fatalf("nil raw: expected ErrBodyMissing, got %v", err)
	}
	if _, err := contenttree.ParseTree(map[string]any{}); !errors.Is(err, contenttree.ErrBodyMissing) {
		t.Fatalf("absent body: expected ErrBodyMissing, got %v", err)
	}
	if _, err := contenttree.ParseTree(map[string]any{"body": "nope"}); !errors.Is(err, contenttree.ErrBodyMissing) {
		t.Fatalf("scalar body: expected ErrBodyMissing, got %v", err)
	}
	if _, err := contenttree.ParseTree(map[string]any{"body": []any{"nope"}}); !errors.Is(err, contenttree.ErrBlockMalformed) {
		t.Fatalf("scalar entry: expected ErrBlockMalformed, got %v", err)
	}

	tree, err := contenttree.ParseTree(map[string]any{"body": nil})
	if err != nil || len(tree.Body) != 0 {
		t.Fatalf("null body should parse empty, got %v/%v", tree, err)
	}

	tree = parse(t, map[string]any{"body": []any{
		block("a", "page", map[string]any{"title": "Home"}),
	}})
	if len(tree.Body) != 1 || tree.Body[0].UID != "a" || tree.Body[0].Component != "page" {
		t.Fatalf("unexpected parse: %+v", tree.Body)
	}
	if tree.Body[0].Fields["title"] != "Home" {
		t.Fatalf("field values lost: %+v", tree.Body[0].Fields)
	}
}

func TestValidateAcceptsWellFormedTree(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "page", map[string]any{
			"title": "Home",
			"count": float64(10),
			"body": []any{
				block("g1", "grid", map[string]any{
					"columns": []any{card("c1", "One"), card("c2", "Two")},
				}),
			},
		}),
	}})

	result := v.Validate("acme", tree)
	if !result.Valid() {
		t.Fatalf("expected valid tree, got %v", result)
	}
}

func TestValidateReportsFieldErrorsPerBlockPath(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "page", map[string]any{"count": float64(150)}),
	}})

	result := v.Validate("acme", tree)
	errs := result["body[0]"]
	if errs == nil {
		t.Fatalf("expected errors at body[0], got %v", result)
	}
	if err := errs["title"]; err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required title error, got %v", errs)
	}
	if errs["count"] == nil {
		t.Fatalf("expected maximum error for count, got %v", errs)
	}
}

func TestValidateRejectsDuplicateBlockIDsAcrossLevels(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "page", map[string]any{
			"title": "Home",
			"body": []any{
				block("g1", "grid", map[string]any{
					"columns": []any{card("p1", "Clash")},
				}),
			},
		}),
	}})

	result := v.Validate("acme", tree)
	err := result["body[0].body[0].columns[0]"]["_uid"]
	if !errors.Is(err, contenttree.ErrDuplicateBlockID) {
		t.Fatalf("expected duplicate id error, got %v", result)
	}
	if !strings.Contains(err.Error(), "body[0]") {
		t.Fatalf("duplicate error should name the prior path, got %v", err)
	}
}

func TestValidateRequiresBlockIDs(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("", "page", map[string]any{"title": "Home"}),
	}})

	result := v.Validate("acme", tree)
	if !errors.Is(result["body[0]"]["_uid"], contenttree.ErrBlockIDRequired) {
		t.Fatalf("expected missing id error, got %v", result)
	}
}

func TestValidateUnknownComponentStillWalksChildren(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "mystery", map[string]any{
			"slots": []any{
				block("p1", "card", map[string]any{"label": "Clash"}),
			},
		}),
	}})

	result := v.Validate("acme", tree)

	var unknown *contenttree.UnknownComponentError
	if !errors.As(result["body[0]"]["component"], &unknown) || unknown.Component != "mystery" {
		t.Fatalf("expected unknown component error, got %v", result)
	}
	// Field validation is skipped under an unknown schema, but nested ids are
	// still checked.
	if !errors.Is(result["body[0].slots[0]"]["_uid"], contenttree.ErrDuplicateBlockID) {
		t.Fatalf("expected duplicate id under unknown component, got %v", result)
	}
}

func TestValidateEnforcesComponentWhitelist(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("g1", "grid", map[string]any{
			"columns": []any{block("b1", "banner", map[string]any{"message": "hi"})},
		}),
	}})

	result := v.Validate("acme", tree)
	err := result["body[0]"]["columns"]
	if err == nil || !strings.Contains(err.Error(), "not allowed") {
		t.Fatalf("expected whitelist error, got %v", result)
	}
}

func TestValidateEnforcesChildCounts(t *testing.T) {
	v := newTreeValidator(t)

	tree := parse(t, map[string]any{"body": []any{
		block("g1", "grid", map[string]any{
			"columns": []any{card("c1", "1"), card("c2", "2"), card("c3", "3"), card("c4", "4")},
		}),
	}})
	result := v.Validate("acme", tree)
	if err := result["body[0]"]["columns"]; err == nil || !strings.Contains(err.Error(), "at most") {
		t.Fatalf("expected max children error, got %v", result)
	}

	tree = parse(t, map[string]any{"body": []any{
		block("g1", "grid", map[string]any{"columns": []any{}}),
	}})
	result = v.Validate("acme", tree)
	if err := result["body[0]"]["columns"]; err == nil || !strings.Contains(err.Error(), "at least") {
		t.Fatalf("expected min children error, got %v", result)
	}
}

func TestValidateEnforcesMaxInstances(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("b1", "banner", map[string]any{"message": "one"}),
		block("b2", "banner", map[string]any{"message": "two"}),
	}})

	result := v.Validate("acme", tree)
	if result["body[0]"] != nil {
		t.Fatalf("first instance is within budget, got %v", result["body[0]"])
	}
	if err := result["body[1]"]["component"]; err == nil || !strings.Contains(err.Error(), "limit of 1") {
		t.Fatalf("expected instance budget error, got %v", result)
	}
}

func TestValidateRejectsNestedRootComponent(t *testing.T) {
	v := newTreeValidator(t)
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "page", map[string]any{
			"title": "Home",
			"body": []any{
				block("p2", "page", map[string]any{"title": "Nested"}),
			},
		}),
	}})

	result := v.Validate("acme", tree)
	if !errors.Is(result["body[0].body[0]"]["component"], contenttree.ErrComponentNotNested) {
		t.Fatalf("expected nesting rejection, got %v", result)
	}
}

func TestValidateCapsNestingDepth(t *testing.T) {
	v := newTreeValidator(t, contenttree.WithMaxDepth(2))

	deepCard := card("c1", "leaf")
	inner := block("g2", "grid", map[string]any{"columns": []any{deepCard}})
	tree := parse(t, map[string]any{"body": []any{
		block("p1", "page", map[string]any{
			"title": "Home",
			"body":  []any{block("g1", "grid", map[string]any{"columns": []any{inner}})},
		}),
	}})

	result := v.Validate("acme", tree)
	found := false
	for path, errs := range result {
		if errors.Is(errs["_uid"], contenttree.ErrMaxDepthExceeded) {
			found = true
			if !strings.HasPrefix(path, "body[0].body[0]") {
				t.Fatalf("depth error at unexpected path %s", path)
			}
		}
	}
	if !found {
		t.Fatalf("expected depth cap error, got %v", result)
	}
}

func TestValidateNilTreeIsValid(t *testing.T) {
	v := newTreeValidator(t)
	if result := v.Validate("acme", nil); !result.Valid() {
		t.Fatalf("nil tree should be valid, got %v", result)
	}
}

func TestTreeRoundTripAndClone(t *testing.T) {
	raw := map[string]any{"body": []any{
		block("p1", "page", map[string]any{
			"title": "Home",
			"body":  []any{card("c1", "One")},
		}),
	}}
	tree := parse(t, raw)

	clone := tree.Clone()
	clone.Body[0].Fields["title"] = "Changed"
	if tree.Body[0].Fields["title"] != "Home" {
		t.Fatalf("clone shares field maps with the original")
	}

	round := tree.ToMap()
	body, ok := round["body"].([]any)
	if !ok || len(body) != 1 {
		t.Fatalf("unexpected round trip: %v", round)
	}
	first, ok := body[0].(map[string]any)
	if !ok || first["_uid"] != "p1" || first["component"] != "page" {
		t.Fatalf("unexpected block map: %v", body[0])
	}
}

func TestIsBlockList(t *testing.T) {
	if !contenttree.IsBlockList([]any{card("c1", "x")}) {
		t.Fatal("list of block maps should be detected")
	}
	if contenttree.IsBlockList([]any{}) {
		t.Fatal("empty list is not block shaped")
	}
	if contenttree.IsBlockList([]any{"text"}) {
		t.Fatal("scalar entries are not block shaped")
	}
	if contenttree.IsBlockList([]any{map[string]any{"component": "card"}}) {
		t.Fatal("entries without _uid are not block shaped")
	}
	if contenttree.IsBlockList("plain value") {
		t.Fatal("non-list values are not block shaped")
	}
}
