// Package jsonschema imports plain JSON Schema documents as form documents.
// It covers the common object-with-properties shape; schemas that describe
// their payloads with OpenAPI should go through pkg/openapi instead.
package jsonschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/humanize"
	"github.com/goliatone/go-formflow/pkg/schema"
)

// Importer converts JSON Schema documents into form documents.
type Importer struct {
	opts Options
}

// Options configures the import behaviour.
type Options struct {
	// Labeler derives human-friendly labels from property names. Defaults
	// to DefaultLabeler.
	Labeler func(name string) string

	// FormID overrides the derived form identifier.
	FormID string
}

// DefaultLabeler converts a property name into a human-friendly label.
func DefaultLabeler(name string) string {
	return humanize.Label(name)
}

// New constructs an Importer.
func New(options Options) *Importer {
	if options.Labeler == nil {
		options.Labeler = DefaultLabeler
	}
	return &Importer{opts: options}
}

// Import builds a form from the document's root object schema. Fields map
// from properties in sorted name order; nested objects flatten into dotted
// field IDs.
func (i *Importer) Import(doc schema.Document) (schema.Form, error) {
	return i.ImportBytes(doc.Raw())
}

// ImportBytes is Import for callers that already hold the raw document.
func (i *Importer) ImportBytes(raw []byte) (schema.Form, error) {
	if len(raw) == 0 {
		return schema.Form{}, errors.New("jsonschema: document is empty")
	}

	var payload map[string]any
	if err := yaml.Unmarshal(raw, &payload); err != nil {
		return schema.Form{}, fmt.Errorf("jsonschema: parse document: %w", err)
	}

	if kind := readString(payload, "type"); kind != "" && kind != "object" {
		return schema.Form{}, fmt.Errorf("jsonschema: root schema must be an object, got %q", kind)
	}

	form := schema.Form{
		ID:          i.formID(payload),
		Title:       readString(payload, "title"),
		Description: readString(payload, "description"),
		Fields:      i.fieldsFromObject("", payload),
	}
	if form.ID == "" {
		return schema.Form{}, errors.New("jsonschema: unable to derive form id; set Options.FormID")
	}
	if len(form.Fields) == 0 {
		return schema.Form{}, errors.New("jsonschema: schema has no usable properties")
	}
	return form, nil
}

func (i *Importer) formID(payload map[string]any) string {
	if i.opts.FormID != "" {
		return i.opts.FormID
	}
	if id := strings.TrimSpace(readString(payload, "$id")); id != "" {
		id = strings.TrimSuffix(id, "/")
		if idx := strings.LastIndexAny(id, "/#"); idx >= 0 {
			id = id[idx+1:]
		}
		return strings.TrimSuffix(id, ".json")
	}
	if title := readString(payload, "title"); title != "" {
		return strings.ToLower(strings.Join(strings.Fields(title), "-"))
	}
	return ""
}

func (i *Importer) fieldsFromObject(prefix string, payload map[string]any) []schema.Field {
	properties, ok := payload["properties"].(map[string]any)
	if !ok || len(properties) == 0 {
		return nil
	}

	requiredSet := make(map[string]struct{})
	if required, ok := payload["required"].([]any); ok {
		for _, name := range required {
			if s, ok := name.(string); ok {
				requiredSet[s] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []schema.Field
	for _, name := range names {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		id := name
		if prefix != "" {
			id = prefix + "." + name
		}
		_, required := requiredSet[name]

		if readString(prop, "type") == "object" {
			fields = append(fields, i.fieldsFromObject(id, prop)...)
			continue
		}

		if field, ok := i.fieldFrom(id, prop, required); ok {
			fields = append(fields, field)
		}
	}
	return fields
}

func (i *Importer) fieldFrom(id string, prop map[string]any, required bool) (schema.Field, bool) {
	field := schema.Field{
		ID:          id,
		Label:       i.opts.Labeler(id),
		Description: readString(prop, "description"),
		Required:    required,
	}
	if title := readString(prop, "title"); title != "" {
		field.Label = title
	}

	switch readString(prop, "type") {
	case "boolean":
		field.Type = schema.FieldTypeBooleanChoice
	case "integer", "number":
		field.Type = schema.FieldTypeNumericRating
		if min, ok := toInt(prop["minimum"]); ok {
			field.MinRating = &min
		}
		if max, ok := toInt(prop["maximum"]); ok {
			field.MaxRating = &max
		}
	case "array":
		options := enumOptions(itemEnum(prop))
		if len(options) == 0 {
			// Free-form arrays have no closed-set representation.
			return schema.Field{}, false
		}
		field.Type = schema.FieldTypeDropdown
		field.Options = options
	case "string", "":
		field.Type = stringFieldType(prop)
		if options := enumOptions(prop["enum"]); len(options) > 0 {
			field.Type = schema.FieldTypeSingleChoice
			field.Options = options
		}
		applyTextConstraints(&field, prop)
	default:
		field.Type = schema.FieldTypeShortText
	}

	return field, true
}

func stringFieldType(prop map[string]any) schema.FieldType {
	switch strings.ToLower(readString(prop, "format")) {
	case "email":
		return schema.FieldTypeEmail
	case "uri", "url":
		return schema.FieldTypeURL
	case "tel", "phone":
		return schema.FieldTypePhone
	case "textarea":
		return schema.FieldTypeLongText
	}
	if max, ok := toInt(prop["maxLength"]); ok && max > 120 {
		return schema.FieldTypeLongText
	}
	return schema.FieldTypeShortText
}

func applyTextConstraints(field *schema.Field, prop map[string]any) {
	if pattern := readString(prop, "pattern"); pattern != "" {
		field.Rules = &schema.ValidationRules{Pattern: pattern}
	}
	if min, ok := toInt(prop["minLength"]); ok && min > 0 {
		field.MinLength = &min
	}
	if max, ok := toInt(prop["maxLength"]); ok {
		field.MaxLength = &max
	}
}

func itemEnum(prop map[string]any) any {
	items, ok := prop["items"].(map[string]any)
	if !ok {
		return nil
	}
	return items["enum"]
}

func enumOptions(enum any) []string {
	list, ok := enum.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func readString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case uint64:
		return int(n), true
	default:
		return 0, false
	}
}
