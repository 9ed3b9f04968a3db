// Package openapi builds form documents from OpenAPI operation request
// bodies. Each importable operation yields one form whose fields mirror the
// request schema's top-level properties, letting API owners bootstrap a form
// in the builder instead of assembling fields by hand.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Options tweaks how documents are loaded and converted.
type Options struct {
	// ResolveReferences enables external ref resolution plus document
	// validation before conversion.
	ResolveReferences bool
	// AllowPartial accepts documents with no importable operations, yielding
	// an empty result instead of an error.
	AllowPartial bool
}

// Importer converts OpenAPI documents into form shapes.
type Importer struct {
	options Options
}

// New constructs an Importer.
func New(options Options) *Importer {
	return &Importer{options: options}
}

// Import parses a raw OpenAPI document (JSON or YAML) and returns one form
// shape per operation carrying an importable request body, keyed by
// operationId (or "method:path" for anonymous operations).
func (imp *Importer) Import(ctx context.Context, raw []byte) (map[string]model.FormShape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: imp.options.ResolveReferences,
	}

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if imp.options.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	shapes := make(map[string]model.FormShape)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			imp.collect(shapes, "POST", path, item.Post)
			imp.collect(shapes, "PUT", path, item.Put)
			imp.collect(shapes, "PATCH", path, item.Patch)
		}
	}

	if len(shapes) == 0 && !imp.options.AllowPartial {
		return nil, errors.New("openapi: no importable operations found")
	}
	return shapes, nil
}

func (imp *Importer) collect(target map[string]model.FormShape, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	schema := requestSchema(operation.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return
	}

	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}

	title := operation.Summary
	if title == "" {
		title = opID
	}

	shape := model.FormShape{
		Title:       title,
		Description: operation.Description,
		Fields:      convertProperties(schema),
		Settings:    model.DefaultSettings(),
	}
	target[opID] = shape
}

// requestSchema resolves the operation's request body schema, preferring
// JSON content.
func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// convertProperties turns top-level schema properties into palette fields in
// name order. Nested objects and arrays are flattened to a text input; the
// builder has no nested widget to map them onto.
func convertProperties(schema *openapi3.Schema) []model.Field {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	fields := make([]model.Field, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field := convertProperty(name, ref.Value)
		if _, ok := required[name]; ok {
			field.Required = true
		}
		fields = append(fields, field)
	}
	return fields
}

func convertProperty(name string, src *openapi3.Schema) model.Field {
	field := model.NewField(fieldTypeFor(src))
	field.ID = "field-" + name
	field.Label = labelFor(name)
	field.HelpText = src.Description
	field.Placeholder = ""
	field.Options = nil

	if len(src.Enum) > 0 {
		field.Type = model.FieldTypeSelect
		field.Options = stringifyEnum(src.Enum)
	}

	if v := convertValidation(src); v != nil {
		field.Validation = v
	}
	return field
}

func fieldTypeFor(src *openapi3.Schema) model.FieldType {
	switch firstSchemaType(src.Type) {
	case "integer", "number":
		return model.FieldTypeNumber
	case "boolean":
		return model.FieldTypeCheckbox
	case "string":
		switch src.Format {
		case "email":
			return model.FieldTypeEmail
		case "tel", "phone":
			return model.FieldTypePhone
		case "date", "date-time":
			return model.FieldTypeDate
		case "binary", "byte":
			return model.FieldTypeFile
		case "textarea":
			return model.FieldTypeTextarea
		}
		return model.FieldTypeText
	default:
		return model.FieldTypeText
	}
}

func convertValidation(src *openapi3.Schema) *model.Validation {
	v := &model.Validation{}
	used := false
	if src.MinLength != 0 {
		value := int(src.MinLength)
		v.MinLength = &value
		used = true
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		v.MaxLength = &value
		used = true
	}
	if src.Pattern != "" {
		v.Pattern = src.Pattern
		used = true
	}
	if src.Min != nil {
		value := *src.Min
		v.Min = &value
		used = true
	}
	if src.Max != nil {
		value := *src.Max
		v.Max = &value
		used = true
	}
	if !used {
		return nil
	}
	return v
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// labelFor derives a human label from a property name: snake_case and
// camelCase both become spaced words with an uppercase first letter.
func labelFor(name string) string {
	var b strings.Builder
	var prev rune
	for i, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
		case i > 0 && isUpper(r) && !isUpper(prev) && prev != ' ':
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	label := strings.TrimSpace(b.String())
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
