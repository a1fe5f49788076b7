package fieldtypes

import (
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

var datetimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}

func builtinTypes() map[Kind]Definition {
	types := map[Kind]Definition{}

	register := func(def Definition) { types[def.Kind] = def }

	// text/textarea/richtext/markdown share the string validator family.
	for _, kind := range []Kind{KindText, KindTextarea, KindRichtext, KindMarkdown} {
		register(Definition{
			Kind:       kind,
			Validate:   validateString,
			Descriptor: stringDescriptor(),
		})
	}

	register(Definition{Kind: KindNumber, Validate: validateNumber, Descriptor: numberDescriptor()})
	register(Definition{Kind: KindBoolean, Validate: validateBoolean, Descriptor: baseDescriptor()})
	register(Definition{Kind: KindEmail, Validate: validateEmail, Descriptor: stringDescriptor()})
	register(Definition{Kind: KindURL, Validate: validateURL, Descriptor: stringDescriptor()})
	register(Definition{Kind: KindDate, Validate: validateDate, Descriptor: baseDescriptor()})
	register(Definition{Kind: KindDatetime, Validate: validateDatetime, Descriptor: baseDescriptor()})
	register(Definition{Kind: KindSelect, Validate: validateSelect, Descriptor: selectDescriptor()})
	register(Definition{Kind: KindMultiselect, Validate: validateMultiselect, Descriptor: selectDescriptor()})
	register(Definition{Kind: KindAsset, Validate: validateAsset, Descriptor: baseDescriptor()})
	register(Definition{Kind: KindTable, Validate: validateTable, Descriptor: baseDescriptor()})
	register(Definition{Kind: KindBlocks, Validate: validateBlocks, Descriptor: blocksDescriptor()})

	return types
}

func newFieldError(code, message string) error {
	return validation.NewError("cms.fieldtypes."+code, message)
}

func validateString(value Value, constraints Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueString {
		return newFieldError("string_expected", fmt.Sprintf("must be a string, got %s", value.Kind()))
	}
	length := len([]rune(value.String()))
	if constraints.MinLength != nil && length < *constraints.MinLength {
		return newFieldError("min_length", fmt.Sprintf("must be at least %d characters", *constraints.MinLength))
	}
	if constraints.MaxLength != nil && length > *constraints.MaxLength {
		return newFieldError("max_length", fmt.Sprintf("must be at most %d characters", *constraints.MaxLength))
	}
	return nil
}

func numericValue(value Value) (float64, bool) {
	switch value.Kind() {
	case ValueNumber:
		return value.Number(), true
	case ValueString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value.String()), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func validateNumber(value Value, constraints Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	num, ok := numericValue(value)
	if !ok {
		return newFieldError("number_expected", fmt.Sprintf("must be a number, got %s", value.Kind()))
	}
	if constraints.Minimum != nil && num < *constraints.Minimum {
		return newFieldError("minimum", fmt.Sprintf("must not be below %v", *constraints.Minimum))
	}
	if constraints.Maximum != nil && num > *constraints.Maximum {
		return newFieldError("maximum", fmt.Sprintf("exceeds %v", *constraints.Maximum))
	}
	return nil
}

func validateBoolean(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if _, ok := value.AsBool(); !ok {
		return newFieldError("boolean_expected", "must be a boolean or 0/1/\"true\"/\"false\"")
	}
	return nil
}

func validateEmail(value Value, constraints Constraints) error {
	if err := validateString(value, constraints); err != nil || value.IsEmpty() {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(value.String())); err != nil {
		return newFieldError("email", "must be a valid email address")
	}
	return nil
}

func validateURL(value Value, constraints Constraints) error {
	if err := validateString(value, constraints); err != nil || value.IsEmpty() {
		return err
	}
	parsed, err := url.Parse(strings.TrimSpace(value.String()))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return newFieldError("url", "must be an absolute URL")
	}
	return nil
}

func validateDate(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueString {
		return newFieldError("date_expected", "must be a date string (YYYY-MM-DD)")
	}
	if _, err := time.Parse(dateLayout, strings.TrimSpace(value.String())); err != nil {
		return newFieldError("date", "must be a valid date (YYYY-MM-DD)")
	}
	return nil
}

func validateDatetime(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueString {
		return newFieldError("datetime_expected", "must be a datetime string")
	}
	raw := strings.TrimSpace(value.String())
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return nil
		}
	}
	return newFieldError("datetime", "must be a valid datetime")
}

func optionValues(options []SelectOption) map[string]struct{} {
	out := make(map[string]struct{}, len(options))
	for _, option := range options {
		out[option.Value] = struct{}{}
	}
	return out
}

func validateSelect(value Value, constraints Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueString {
		return newFieldError("select_expected", "must be a single option value")
	}
	if len(constraints.Options) == 0 {
		return nil
	}
	if _, ok := optionValues(constraints.Options)[value.String()]; !ok {
		return newFieldError("select_option", fmt.Sprintf("%q is not an allowed option", value.String()))
	}
	return nil
}

func validateMultiselect(value Value, constraints Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueList {
		return newFieldError("multiselect_expected", "must be a list of option values")
	}
	allowed := optionValues(constraints.Options)
	for _, entry := range value.List() {
		selected := Of(entry)
		if selected.Kind() != ValueString {
			return newFieldError("multiselect_entry", "every selection must be a string")
		}
		if len(allowed) > 0 {
			if _, ok := allowed[selected.String()]; !ok {
				return newFieldError("select_option", fmt.Sprintf("%q is not an allowed option", selected.String()))
			}
		}
	}
	return nil
}

func validateAsset(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	switch value.Kind() {
	case ValueString:
		return nil
	case ValueObject:
		obj := value.Object()
		if !Of(obj["filename"]).IsEmpty() || !Of(obj["id"]).IsEmpty() {
			return nil
		}
		return newFieldError("asset_reference", "asset must carry a filename or id")
	default:
		return newFieldError("asset_expected", "must be an asset reference")
	}
}

func validateTable(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueObject {
		return newFieldError("table_expected", "must be a table object")
	}
	obj := value.Object()
	for _, section := range []string{"thead", "tbody"} {
		if raw, ok := obj[section]; ok {
			if Of(raw).Kind() != ValueList {
				return newFieldError("table_section", fmt.Sprintf("%s must be a list of rows", section))
			}
		}
	}
	return nil
}

// validateBlocks checks the structural shape only; component resolution,
// whitelist, and max-count enforcement happen at the content tree layer where
// the schema catalog is available.
func validateBlocks(value Value, _ Constraints) error {
	if value.IsEmpty() {
		return nil
	}
	if value.Kind() != ValueList {
		return newFieldError("blocks_expected", "must be a list of nested blocks")
	}
	for _, entry := range value.List() {
		if Of(entry).Kind() != ValueObject {
			return newFieldError("blocks_entry", "every nested block must be an object")
		}
	}
	return nil
}

func baseDescriptor() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"type":         map[string]any{"type": "string"},
			"required":     map[string]any{"type": "boolean"},
			"translatable": map[string]any{"type": "boolean"},
			"description":  map[string]any{"type": "string"},
			"default":      map[string]any{},
			"conditions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object"},
			},
		},
	}
}

func withProperties(extra map[string]any) map[string]any {
	descriptor := baseDescriptor()
	properties := descriptor["properties"].(map[string]any)
	for key, value := range extra {
		properties[key] = value
	}
	return descriptor
}

func stringDescriptor() map[string]any {
	return withProperties(map[string]any{
		"min_length": map[string]any{"type": "integer", "minimum": 0},
		"max_length": map[string]any{"type": "integer", "minimum": 0},
	})
}

func numberDescriptor() map[string]any {
	return withProperties(map[string]any{
		"minimum": map[string]any{"type": "number"},
		"maximum": map[string]any{"type": "number"},
	})
}

func selectDescriptor() map[string]any {
	return withProperties(map[string]any{
		"options": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":                 "object",
				"required":             []any{"name", "value"},
				"additionalProperties": false,
				"properties": map[string]any{
					"name":  map[string]any{"type": "string", "minLength": 1},
					"value": map[string]any{"type": "string", "minLength": 1},
				},
			},
		},
	})
}

func blocksDescriptor() map[string]any {
	return withProperties(map[string]any{
		"component_whitelist": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		},
		"minimum_children": map[string]any{"type": "integer", "minimum": 0},
		"maximum_children": map[string]any{"type": "integer", "minimum": 0},
	})
}
