package tools

import (
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// validator checks argument bags against a tool's declared input schema.
type validator struct {
	tool     string
	schema   *gojsonschema.Schema
	defaults map[string]any
}

func newValidator(tool Tool) (*validator, error) {
	in := tool.InputSchema()
	if in == nil {
		in = &jsonschema.Schema{Type: "object"}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(in))
	if err != nil {
		return nil, fmt.Errorf("compile input schema for %q: %w", tool.Name(), err)
	}

	v := &validator{tool: tool.Name(), schema: schema}
	if d, ok := tool.(Defaulter); ok {
		v.defaults = d.Defaults()
	}
	return v, nil
}

// validate returns a copy of input with declared defaults applied, or a
// *ValidationError naming every offending field.
func (v *validator) validate(input map[string]any) (map[string]any, error) {
	if input == nil {
		input = map[string]any{}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return nil, &ValidationError{Tool: v.tool, Fields: []FieldError{{Field: "(arguments)", Reason: err.Error()}}}
	}
	if !result.Valid() {
		fields := make([]FieldError, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			fields = append(fields, FieldError{Field: fieldName(desc), Reason: desc.Description()})
		}
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return nil, &ValidationError{Tool: v.tool, Fields: fields}
	}

	out := make(map[string]any, len(input)+len(v.defaults))
	for k, val := range input {
		out[k] = val
	}
	for k, val := range v.defaults {
		if _, ok := out[k]; !ok {
			out[k] = val
		}
	}
	return out, nil
}

// fieldName resolves the argument a gojsonschema error refers to. Errors
// about missing or unexpected properties are reported against the root, with
// the property name in the details.
func fieldName(desc gojsonschema.ResultError) string {
	switch desc.Type() {
	case "required", "additional_property_not_allowed":
		if p, ok := desc.Details()["property"].(string); ok {
			return p
		}
	}
	return desc.Field()
}
