// Package schema defines the declarative form document model and the
// normalization pass that prepares it for a respondent session. Documents are
// decoded from JSON or YAML, normalized exactly once, and treated as
// immutable afterwards.
package schema

// FieldType enumerates the closed set of field kinds the engine interprets.
type FieldType string

const (
	FieldTypeShortText     FieldType = "short-text"
	FieldTypeLongText      FieldType = "long-text"
	FieldTypeEmail         FieldType = "email"
	FieldTypePhone         FieldType = "phone"
	FieldTypeURL           FieldType = "url"
	FieldTypeSingleChoice  FieldType = "single-choice"
	FieldTypeDropdown      FieldType = "multi-select-dropdown"
	FieldTypeBooleanChoice FieldType = "boolean-choice"
	FieldTypeNumericRating FieldType = "numeric-rating"
	FieldTypeOpinionScale  FieldType = "opinion-scale"
	FieldTypeStatement     FieldType = "statement"
	FieldTypeLegalConsent  FieldType = "legal-consent"
	FieldTypeFileUpload    FieldType = "file-upload"
	FieldTypePageBreak     FieldType = "page-break"
	FieldTypeStartPage     FieldType = "start-page"
	FieldTypeEndPage       FieldType = "end-page"
)

// Operator names the comparison applied by a visibility condition.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorNotEquals   Operator = "notEquals"
	OperatorContains    Operator = "contains"
	OperatorGreaterThan Operator = "greaterThan"
	OperatorLessThan    Operator = "lessThan"
)

// Condition compares another field's current answer against a literal.
type Condition struct {
	FieldID  string   `json:"fieldId" yaml:"fieldId"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// ConditionalLogic gates a field's participation in validation and
// navigation. ShowWhen is OR-matched; HideWhen hides on any match and wins
// over ShowWhen.
type ConditionalLogic struct {
	ShowWhen []Condition `json:"showWhen,omitempty" yaml:"showWhen,omitempty"`
	HideWhen []Condition `json:"hideWhen,omitempty" yaml:"hideWhen,omitempty"`
}

// ValidationRules carries the author-tunable constraints beyond the type
// profile.
type ValidationRules struct {
	Pattern               string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	CustomMessage         string `json:"customMessage,omitempty" yaml:"customMessage,omitempty"`
	RequireScrollToAccept bool   `json:"requireScrollToAccept,omitempty" yaml:"requireScrollToAccept,omitempty"`
}

// Field models one question (or display block) inside a form document.
type Field struct {
	ID          string            `json:"id" yaml:"id"`
	Type        FieldType         `json:"type" yaml:"type"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string          `json:"options,omitempty" yaml:"options,omitempty"`
	MinRating   *int              `json:"minRating,omitempty" yaml:"minRating,omitempty"`
	MaxRating   *int              `json:"maxRating,omitempty" yaml:"maxRating,omitempty"`
	MinLength   *int              `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Rules       *ValidationRules  `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
	Conditional *ConditionalLogic `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
}

// Group is one step of a stepped form: an ordered slice of fields validated
// together before navigation advances.
type Group struct {
	ID     string  `json:"id" yaml:"id"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Settings carries presentation hints the engine preserves but does not
// interpret beyond the submit label.
type Settings struct {
	SubmitLabel  string `json:"submitLabel,omitempty" yaml:"submitLabel,omitempty"`
	ShowProgress bool   `json:"showProgress,omitempty" yaml:"showProgress,omitempty"`
}

// Form is a complete form document. Exactly one of Fields (flat,
// one-question-at-a-time) or Groups (stepped) drives navigation; when both
// are present Groups win and Fields is the flattened view.
type Form struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field        `json:"fields" yaml:"fields"`
	Groups      []Group        `json:"fieldGroups,omitempty" yaml:"fieldGroups,omitempty"`
	Theme       map[string]any `json:"theme,omitempty" yaml:"theme,omitempty"`
	Settings    Settings       `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// Grouped reports whether the form navigates step-by-step rather than
// question-by-question.
func (f Form) Grouped() bool {
	return len(f.Groups) > 0
}

// AllFields returns every field in declaration order regardless of grouping.
func (f Form) AllFields() []Field {
	if !f.Grouped() {
		return f.Fields
	}
	var out []Field
	for _, group := range f.Groups {
		out = append(out, group.Fields...)
	}
	return out
}

// FieldByID locates a field in declaration order.
func (f Form) FieldByID(id string) (Field, bool) {
	for _, field := range f.AllFields() {
		if field.ID == id {
			return field, true
		}
	}
	return Field{}, false
}
