package schema

import (
	"strconv"
	"strings"

	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
)

// Visible evaluates the field's conditions against the same data object the
// field belongs to. Conditions reference sibling fields only; every condition
// must hold (AND semantics). A field without conditions is always visible.
func Visible(def FieldDefinition, data map[string]any) bool {
	for _, condition := range def.Conditions {
		if !evaluate(condition, data) {
			return false
		}
	}
	return true
}

func evaluate(condition Condition, data map[string]any) bool {
	field := strings.TrimSpace(condition.Field)
	if field == "" {
		return false
	}
	left := fieldtypes.Of(data[field])

	switch condition.Operator {
	case OpEquals:
		return looseEqual(left, fieldtypes.Of(condition.Value))
	case OpNotEquals:
		return !looseEqual(left, fieldtypes.Of(condition.Value))
	case OpContains:
		return contains(left, fieldtypes.Of(condition.Value))
	case OpNotContains:
		return !contains(left, fieldtypes.Of(condition.Value))
	case OpGreater, OpGreaterEq, OpLess, OpLessEq:
		return ordered(condition.Operator, left, fieldtypes.Of(condition.Value))
	case OpEmpty:
		return left.IsEmpty()
	case OpNotEmpty:
		return !left.IsEmpty()
	case OpIsTrue:
		truth, ok := left.AsBool()
		return ok && truth
	case OpIsFalse:
		truth, ok := left.AsBool()
		return ok && !truth
	default:
		// Unknown operators never match; ValidateDefinition rejects them
		// before data ever reaches this path.
		return false
	}
}

// looseEqual compares across the scalar tags the way dynamic payloads expect:
// numbers compare numerically even when one side arrives as a string, booleans
// honour the relaxed 0/1/"true"/"false" forms, everything else compares as text.
func looseEqual(left, right fieldtypes.Value) bool {
	if left.IsNull() || right.IsNull() {
		return left.IsNull() && right.IsNull()
	}
	if lb, ok := left.AsBool(); ok {
		if rb, rok := right.AsBool(); rok {
			return lb == rb
		}
	}
	if ln, ok := numeric(left); ok {
		if rn, rok := numeric(right); rok {
			return ln == rn
		}
	}
	return text(left) == text(right)
}

func contains(left, right fieldtypes.Value) bool {
	switch left.Kind() {
	case fieldtypes.ValueList:
		for _, entry := range left.List() {
			if looseEqual(fieldtypes.Of(entry), right) {
				return true
			}
		}
		return false
	case fieldtypes.ValueString:
		return strings.Contains(left.String(), text(right))
	default:
		return false
	}
}

func ordered(op ConditionOperator, left, right fieldtypes.Value) bool {
	ln, lok := numeric(left)
	rn, rok := numeric(right)
	if !lok || !rok {
		return false
	}
	switch op {
	case OpGreater:
		return ln > rn
	case OpGreaterEq:
		return ln >= rn
	case OpLess:
		return ln < rn
	case OpLessEq:
		return ln <= rn
	default:
		return false
	}
}

func numeric(value fieldtypes.Value) (float64, bool) {
	switch value.Kind() {
	case fieldtypes.ValueNumber:
		return value.Number(), true
	case fieldtypes.ValueString:
		var parsed float64
		var ok bool
		if trimmed := strings.TrimSpace(value.String()); trimmed != "" {
			if n, err := parseFloat(trimmed); err == nil {
				parsed, ok = n, true
			}
		}
		return parsed, ok
	default:
		return 0, false
	}
}

func text(value fieldtypes.Value) string {
	switch value.Kind() {
	case fieldtypes.ValueString:
		return value.String()
	case fieldtypes.ValueNumber:
		return formatFloat(value.Number())
	case fieldtypes.ValueBool:
		if value.Bool() {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
