package fieldtypes

import (
	"encoding/json"
	"strings"
)

// ValueKind tags the closed set of shapes a field value can take. Validators
// dispatch on the tag instead of ad-hoc runtime type assertions.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
	ValueList
	ValueObject
)

// String renders the kind label used in validation messages.
func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "boolean"
	case ValueList:
		return "list"
	case ValueObject:
		return "object"
	default:
		return "null"
	}
}

// Value is the closed sum type for dynamic field values. Construct it with Of;
// the zero Value is null.
type Value struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
	list    []any
	object  map[string]any
}

// Of normalizes a raw decoded value (typically from JSON) into a tagged Value.
// Integer variants collapse into the number tag; unsupported shapes fall back
// to their string rendering so validation can still report something useful.
func Of(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return typed
	case string:
		return Value{kind: ValueString, str: typed}
	case bool:
		return Value{kind: ValueBool, boolean: typed}
	case float64:
		return Value{kind: ValueNumber, num: typed}
	case float32:
		return Value{kind: ValueNumber, num: float64(typed)}
	case int:
		return Value{kind: ValueNumber, num: float64(typed)}
	case int32:
		return Value{kind: ValueNumber, num: float64(typed)}
	case int64:
		return Value{kind: ValueNumber, num: float64(typed)}
	case json.Number:
		if parsed, err := typed.Float64(); err == nil {
			return Value{kind: ValueNumber, num: parsed}
		}
		return Value{kind: ValueString, str: typed.String()}
	case []any:
		return Value{kind: ValueList, list: typed}
	case []string:
		list := make([]any, len(typed))
		for i, entry := range typed {
			list[i] = entry
		}
		return Value{kind: ValueList, list: list}
	case map[string]any:
		return Value{kind: ValueObject, object: typed}
	default:
		return Value{kind: ValueString, str: strings.TrimSpace(stringify(raw))}
	}
}

func stringify(raw any) string {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return strings.Trim(string(encoded), `"`)
}

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// IsEmpty reports whether the value counts as "empty" for required checks:
// null, the empty (or whitespace-only) string, or an empty collection.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValueNull:
		return true
	case ValueString:
		return strings.TrimSpace(v.str) == ""
	case ValueList:
		return len(v.list) == 0
	case ValueObject:
		return len(v.object) == 0
	default:
		return false
	}
}

// String returns the string payload; empty for other tags.
func (v Value) String() string { return v.str }

// Number returns the numeric payload; zero for other tags.
func (v Value) Number() float64 { return v.num }

// Bool returns the boolean payload; false for other tags.
func (v Value) Bool() bool { return v.boolean }

// List returns the list payload; nil for other tags.
func (v Value) List() []any { return v.list }

// Object returns the object payload; nil for other tags.
func (v Value) Object() map[string]any { return v.object }

// Raw re-materializes the dynamic value for callers that need the original
// decoded shape back (diffing, snapshots).
func (v Value) Raw() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueBool:
		return v.boolean
	case ValueList:
		return v.list
	case ValueObject:
		return v.object
	default:
		return nil
	}
}

// AsBool interprets the value using the relaxed boolean semantics accepted by
// boolean fields: true/false, 0/1, and the literal strings "0"/"1"/"true"/"false".
func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case ValueBool:
		return v.boolean, true
	case ValueNumber:
		if v.num == 0 {
			return false, true
		}
		if v.num == 1 {
			return true, true
		}
		return false, false
	case ValueString:
		switch strings.ToLower(strings.TrimSpace(v.str)) {
		case "0", "false":
			return false, true
		case "1", "true":
			return true, true
		}
		return false, false
	default:
		return false, false
	}
}
