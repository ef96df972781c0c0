// Package openapi imports OpenAPI operations as form documents. Authors who
// already describe their backend with an OpenAPI spec get a runnable form for
// an operation's request body without writing a separate schema.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Importer converts OpenAPI documents into form documents.
type Importer struct {
	opts Options
}

// Options configures the import behaviour.
type Options struct {
	// Labeler derives human-friendly labels from property names. Defaults
	// to DefaultLabeler.
	Labeler func(name string) string

	// AllowExternalRefs permits resolving references outside the document.
	AllowExternalRefs bool
}

// New constructs an Importer.
func New(options Options) *Importer {
	if options.Labeler == nil {
		options.Labeler = DefaultLabeler
	}
	return &Importer{opts: options}
}

// Import loads the document and builds a form from the identified
// operation's request body. The form ID is the operation ID; fields map from
// the request schema's properties in sorted name order, the same ordering
// rule the rest of the pipeline relies on for stable output.
func (i *Importer) Import(ctx context.Context, doc schema.Document, operationID string) (schema.Form, error) {
	if err := ctx.Err(); err != nil {
		return schema.Form{}, err
	}
	if operationID == "" {
		return schema.Form{}, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: i.opts.AllowExternalRefs,
	}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return schema.Form{}, fmt.Errorf("openapi: load document: %w", err)
	}

	operation := findOperation(spec, operationID)
	if operation == nil {
		return schema.Form{}, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	body := requestSchema(operation.RequestBody)
	if body == nil {
		return schema.Form{}, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	form := schema.Form{
		ID:          operationID,
		Title:       firstNonEmpty(operation.Summary, i.opts.Labeler(operationID)),
		Description: operation.Description,
		Fields:      i.fieldsFromObject("", body),
	}
	if len(form.Fields) == 0 {
		return schema.Form{}, fmt.Errorf("openapi: operation %q produced no fields", operationID)
	}
	return form, nil
}

// ImportBytes is a convenience wrapper over Import for raw payloads.
func (i *Importer) ImportBytes(ctx context.Context, raw []byte, operationID string) (schema.Form, error) {
	doc, err := schema.NewDocument(schema.SourceFromFS("openapi.json"), raw)
	if err != nil {
		return schema.Form{}, err
	}
	return i.Import(ctx, doc, operationID)
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec == nil || spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
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

func (i *Importer) fieldsFromObject(prefix string, obj *openapi3.Schema) []schema.Field {
	if obj == nil || len(obj.Properties) == 0 {
		return nil
	}

	requiredSet := make(map[string]struct{}, len(obj.Required))
	for _, name := range obj.Required {
		requiredSet[name] = struct{}{}
	}

	names := make([]string, 0, len(obj.Properties))
	for name := range obj.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []schema.Field
	for _, name := range names {
		ref := obj.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		id := name
		if prefix != "" {
			id = prefix + "." + name
		}
		_, required := requiredSet[name]

		if prop.Type != nil && prop.Type.Is(openapi3.TypeObject) {
			// Nested objects flatten into dotted field IDs; the form model
			// has no nesting of its own.
			fields = append(fields, i.fieldsFromObject(id, prop)...)
			continue
		}

		if field, ok := i.fieldFrom(id, prop, required); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func (i *Importer) fieldFrom(id string, prop *openapi3.Schema, required bool) (schema.Field, bool) {
	field := schema.Field{
		ID:          id,
		Label:       i.opts.Labeler(id),
		Description: prop.Description,
		Required:    required,
	}
	if prop.Title != "" {
		field.Label = prop.Title
	}

	switch {
	case prop.Type == nil:
		field.Type = schema.FieldTypeShortText
	case prop.Type.Is(openapi3.TypeBoolean):
		field.Type = schema.FieldTypeBooleanChoice
	case prop.Type.Is(openapi3.TypeInteger), prop.Type.Is(openapi3.TypeNumber):
		field.Type = schema.FieldTypeNumericRating
		if prop.Min != nil {
			min := int(*prop.Min)
			field.MinRating = &min
		}
		if prop.Max != nil {
			max := int(*prop.Max)
			field.MaxRating = &max
		}
	case prop.Type.Is(openapi3.TypeArray):
		options := enumOptions(itemEnum(prop))
		if len(options) == 0 {
			// Free-form arrays have no closed-set representation.
			return schema.Field{}, false
		}
		field.Type = schema.FieldTypeDropdown
		field.Options = options
	case prop.Type.Is(openapi3.TypeString):
		field.Type = stringFieldType(prop)
		if options := enumOptions(prop.Enum); len(options) > 0 {
			field.Type = schema.FieldTypeSingleChoice
			field.Options = options
		}
		applyTextConstraints(&field, prop)
	default:
		field.Type = schema.FieldTypeShortText
	}

	return field, true
}

func stringFieldType(prop *openapi3.Schema) schema.FieldType {
	switch strings.ToLower(prop.Format) {
	case "email":
		return schema.FieldTypeEmail
	case "uri", "url":
		return schema.FieldTypeURL
	case "tel", "phone":
		return schema.FieldTypePhone
	case "textarea":
		return schema.FieldTypeLongText
	}
	if prop.MaxLength != nil && *prop.MaxLength > 120 {
		return schema.FieldTypeLongText
	}
	return schema.FieldTypeShortText
}

func applyTextConstraints(field *schema.Field, prop *openapi3.Schema) {
	if prop.Pattern != "" {
		field.Rules = &schema.ValidationRules{Pattern: prop.Pattern}
	}
	if prop.MinLength > 0 {
		min := int(prop.MinLength)
		field.MinLength = &min
	}
	if prop.MaxLength != nil {
		max := int(*prop.MaxLength)
		field.MaxLength = &max
	}
}

func itemEnum(prop *openapi3.Schema) []any {
	if prop.Items == nil || prop.Items.Value == nil {
		return nil
	}
	return prop.Items.Value.Enum
}

func enumOptions(enum []any) []string {
	if len(enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(enum))
	for _, item := range enum {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
