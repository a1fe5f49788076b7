package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
)

// Validator checks component schema definitions against the field type catalog
// and validates data payloads against a schema. Definition checks compile the
// catalog's per-kind constraint descriptors with jsonschema once and cache the
// result; data validation is a pure computation.
type Validator struct {
	catalog *fieldtypes.Catalog

	mu       sync.Mutex
	compiled map[fieldtypes.Kind]*jsonschema.Schema
}

// NewValidator builds a schema validator over the supplied catalog.
func NewValidator(catalog *fieldtypes.Catalog) *Validator {
	return &Validator{
		catalog:  catalog,
		compiled: make(map[fieldtypes.Kind]*jsonschema.Schema),
	}
}

// ValidateDefinition verifies the component schema itself: every field must
// declare a known type, constraints must be well-formed for that type, and
// conditions must reference sibling fields with known operators. Errors are
// keyed by field name; schema-level issues use the "_schema" key. An empty
// (nil) result means the definition is acceptable.
func (v *Validator) ValidateDefinition(schema *ComponentSchema) validation.Errors {
	errs := validation.Errors{}
	if schema == nil {
		errs["_schema"] = ErrSchemaInvalid
		return errs
	}
	if strings.TrimSpace(schema.Name) == "" {
		errs["_schema"] = ErrSchemaNameRequired
	}
	if len(schema.Fields) == 0 {
		errs["_schema"] = ErrSchemaEmpty
		return errs
	}

	names := map[string]struct{}{}
	for _, field := range schema.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			errs["_schema"] = validation.NewError("cms.schema.field_name_required", "every field must declare a name")
			continue
		}
		if _, dup := names[name]; dup {
			errs[name] = validation.NewError("cms.schema.field_duplicate", "field is declared more than once")
			continue
		}
		names[name] = struct{}{}

		if err := v.validateFieldDefinition(name, field.FieldDefinition, names, schema); err != nil {
			errs[name] = err
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (v *Validator) validateFieldDefinition(name string, def FieldDefinition, _ map[string]struct{}, schema *ComponentSchema) error {
	if !v.catalog.Known(def.Type) {
		return fmt.Errorf("%w: %q", fieldtypes.ErrUnknownFieldType, def.Type)
	}

	if err := v.validateAgainstDescriptor(def); err != nil {
		return err
	}

	if def.MinLength != nil && def.MaxLength != nil && *def.MinLength > *def.MaxLength {
		return validation.NewError("cms.schema.length_bounds", "min_length must not exceed max_length")
	}
	if def.Minimum != nil && def.Maximum != nil && *def.Minimum > *def.Maximum {
		return validation.NewError("cms.schema.numeric_bounds", "minimum must not exceed maximum")
	}
	if def.MinimumChildren != nil && def.MaximumChildren != nil && *def.MinimumChildren > *def.MaximumChildren {
		return validation.NewError("cms.schema.children_bounds", "minimum_children must not exceed maximum_children")
	}

	if def.Type == fieldtypes.KindSelect || def.Type == fieldtypes.KindMultiselect {
		if len(def.Options) == 0 {
			return validation.NewError("cms.schema.options_required", "select fields need a non-empty option list")
		}
		for _, option := range def.Options {
			if strings.TrimSpace(option.Name) == "" || strings.TrimSpace(option.Value) == "" {
				return validation.NewError("cms.schema.option_malformed", "every option needs a name and a value")
			}
		}
	}

	for _, condition := range def.Conditions {
		ref := strings.TrimSpace(condition.Field)
		if ref == "" {
			return validation.NewError("cms.schema.condition_field_required", "condition must reference a sibling field")
		}
		if ref == name {
			return validation.NewError("cms.schema.condition_self_reference", "condition cannot reference its own field")
		}
		if _, ok := schema.Field(ref); !ok {
			return validation.NewError("cms.schema.condition_unknown_field", fmt.Sprintf("condition references unknown field %q", ref))
		}
		if !knownOperator(condition.Operator) {
			return validation.NewError("cms.schema.condition_operator", fmt.Sprintf("unknown condition operator %q", condition.Operator))
		}
		if condition.Operator.NeedsValue() && condition.Value == nil {
			return validation.NewError("cms.schema.condition_value_required", fmt.Sprintf("operator %q needs a comparison value", condition.Operator))
		}
	}

	return nil
}

// validateAgainstDescriptor round-trips the field definition through JSON and
// checks it with the compiled constraint descriptor for its kind, so a text
// field declaring select options (or any stray constraint key) is rejected.
func (v *Validator) validateAgainstDescriptor(def FieldDefinition) error {
	compiled, err := v.descriptorFor(def.Type)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(encoded, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}

	if err := compiled.Validate(raw); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return validation.NewError("cms.schema.constraints", leafMessage(validationErr))
		}
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

func (v *Validator) descriptorFor(kind fieldtypes.Kind) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if compiled, ok := v.compiled[kind]; ok {
		return compiled, nil
	}

	descriptor, err := v.catalog.Descriptor(kind)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(descriptor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorUnavailable, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("descriptor.json", bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorUnavailable, err)
	}
	compiled, err := compiler.Compile("descriptor.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorUnavailable, err)
	}

	v.compiled[kind] = compiled
	return compiled, nil
}

// ValidateData validates a data object against the schema. Field visibility is
// resolved first: invisible fields are skipped entirely. Visible required
// fields must carry a non-empty value; present values are dispatched to the
// catalog validator with the field's constraints. The result is nil exactly
// when the object satisfies the schema; it is always returned as data, never
// raised.
func (v *Validator) ValidateData(schema *ComponentSchema, data map[string]any) validation.Errors {
	if schema == nil {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}

	errs := validation.Errors{}
	for _, field := range schema.Fields {
		def := field.FieldDefinition
		if !Visible(def, data) {
			continue
		}

		value := fieldtypes.Of(data[field.Name])
		if value.IsEmpty() {
			if def.Required {
				errs[field.Name] = validation.NewError("cms.schema.required", "is required")
			}
			continue
		}

		if err := v.catalog.Validate(def.Type, value, def.Constraints); err != nil {
			errs[field.Name] = err
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func leafMessage(err *jsonschema.ValidationError) string {
	node := err
	for len(node.Causes) > 0 {
		node = node.Causes[0]
	}
	location := strings.TrimSpace(node.InstanceLocation)
	message := strings.TrimSpace(node.Message)
	if location == "" {
		return message
	}
	return fmt.Sprintf("%s: %s", location, message)
}
