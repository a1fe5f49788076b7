package schema

import (
	"encoding/json"

	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
)

// ConditionOperator enumerates the comparison operators a visibility
// condition may use.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpGreater     ConditionOperator = "greater_than"
	OpGreaterEq   ConditionOperator = "greater_equal"
	OpLess        ConditionOperator = "less_than"
	OpLessEq      ConditionOperator = "less_equal"
	OpEmpty       ConditionOperator = "empty"
	OpNotEmpty    ConditionOperator = "not_empty"
	OpIsTrue      ConditionOperator = "is_true"
	OpIsFalse     ConditionOperator = "is_false"
)

// NeedsValue reports whether the operator requires a right-hand comparison value.
func (op ConditionOperator) NeedsValue() bool {
	switch op {
	case OpEmpty, OpNotEmpty, OpIsTrue, OpIsFalse:
		return false
	default:
		return true
	}
}

func knownOperator(op ConditionOperator) bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpGreater, OpGreaterEq, OpLess, OpLessEq,
		OpEmpty, OpNotEmpty, OpIsTrue, OpIsFalse:
		return true
	default:
		return false
	}
}

// Condition gates a field's visibility on a sibling field's value.
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value,omitempty"`
}

// FieldDefinition declares the type, requiredness, constraints, and
// visibility conditions of one component field.
type FieldDefinition struct {
	Type         fieldtypes.Kind `json:"type"`
	Required     bool            `json:"required,omitempty"`
	Translatable bool            `json:"translatable,omitempty"`
	Description  string          `json:"description,omitempty"`
	Default      any             `json:"default,omitempty"`

	fieldtypes.Constraints

	Conditions []Condition `json:"conditions,omitempty"`
}

// Field pairs a name with its definition; field order is significant and
// preserved from the authored schema.
type Field struct {
	Name string `json:"name"`
	FieldDefinition
}

// ComponentSchema describes a reusable block type: its technical name, its
// ordered fields, and the structural flags governing where it may appear.
type ComponentSchema struct {
	Name         string  `json:"name"`
	DisplayName  string  `json:"display_name,omitempty"`
	Fields       []Field `json:"fields"`
	Root         bool    `json:"root,omitempty"`
	Nestable     bool    `json:"nestable,omitempty"`
	MaxInstances *int    `json:"max_instances,omitempty"`
}

// Field returns the definition for name and whether it exists.
func (s *ComponentSchema) Field(name string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field.FieldDefinition, true
		}
	}
	return FieldDefinition{}, false
}

// FieldNames returns the schema's field names in declaration order.
func (s *ComponentSchema) FieldNames() []string {
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// Clone deep-copies the schema so registry consumers can mutate safely.
func (s *ComponentSchema) Clone() *ComponentSchema {
	if s == nil {
		return nil
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		copied := *s
		return &copied
	}
	out := &ComponentSchema{}
	if err := json.Unmarshal(encoded, out); err != nil {
		copied := *s
		return &copied
	}
	return out
}
