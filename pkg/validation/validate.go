package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/value"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s().-]{5,}$`)
)

// ValidateField evaluates one field's current answer and returns the first
// failing rule, or nil when the answer is acceptable. Rules run in a fixed
// order and short-circuit: required, then the type-specific checks, so a
// field reports at most one error per call.
func ValidateField(field schema.Field, v value.Value) *Error {
	label := displayLabel(field)

	if isUnanswered(field, v) {
		if field.Required {
			return &Error{
				FieldID: field.ID,
				Kind:    KindRequired,
				Message: fmt.Sprintf("%s is required", label),
			}
		}
		// Optional empty answers are always valid.
		return nil
	}

	switch field.Type {
	case schema.FieldTypeEmail:
		if !emailPattern.MatchString(strings.TrimSpace(value.AsString(v))) {
			return formatError(field, "Please enter a valid email address")
		}
	case schema.FieldTypeURL:
		if !isAbsoluteHTTPURL(value.AsString(v)) {
			return formatError(field, "Please enter a valid URL")
		}
	case schema.FieldTypePhone:
		if !phonePattern.MatchString(strings.TrimSpace(value.AsString(v))) {
			return formatError(field, "Please enter a valid phone number")
		}
	case schema.FieldTypeShortText, schema.FieldTypeLongText:
		return validateText(field, value.AsString(v))
	case schema.FieldTypeSingleChoice, schema.FieldTypeDropdown:
		if !contains(field.Options, value.AsString(v)) {
			return formatError(field, "Please select one of the provided options")
		}
	case schema.FieldTypeNumericRating, schema.FieldTypeOpinionScale:
		return validateRating(field, v)
	case schema.FieldTypeLegalConsent:
		// A false boolean was already treated as unanswered above; anything
		// else that does not read as an accepted boolean is rejected here.
		if !value.AsBool(v) {
			return &Error{
				FieldID: field.ID,
				Kind:    KindRequired,
				Message: fmt.Sprintf("%s is required", label),
			}
		}
	}

	return nil
}

// ValidateMany evaluates a visibility-filtered field list against the value
// map. Fields hidden by conditional logic are skipped entirely, required or
// not. The result follows field declaration order regardless of which fields
// were touched first.
func ValidateMany(fields []schema.Field, values value.Map) List {
	var out List
	for _, field := range visibility.Filter(fields, values) {
		if err := ValidateField(field, values[field.ID]); err != nil {
			out = append(out, *err)
		}
	}
	return out
}

func validateText(field schema.Field, text string) *Error {
	if field.Rules != nil && field.Rules.Pattern != "" {
		re, err := compiled(field.Rules.Pattern)
		if err == nil && !re.MatchString(text) {
			message := strings.TrimSpace(field.Rules.CustomMessage)
			kind := KindCustom
			if message == "" {
				message = "Please match the requested format"
				kind = KindFormat
			}
			return &Error{FieldID: field.ID, Kind: kind, Message: message}
		}
		return nil
	}

	length := len([]rune(text))
	if field.MinLength != nil && length < *field.MinLength {
		return formatError(field, fmt.Sprintf("Minimum %d characters", *field.MinLength))
	}
	if field.MaxLength != nil && length > *field.MaxLength {
		return formatError(field, fmt.Sprintf("Maximum %d characters", *field.MaxLength))
	}
	return nil
}

// isUnanswered applies the per-type emptiness rule: nil and blank text are
// unanswered for every field, while a false boolean only counts as
// unanswered on consent fields, where declining is the same as not
// answering. A boolean-choice question answered "No" is answered.
func isUnanswered(field schema.Field, v value.Value) bool {
	if b, ok := v.(value.Bool); ok {
		return !bool(b) && field.Type == schema.FieldTypeLegalConsent
	}
	return value.IsEmpty(v)
}

func validateRating(field schema.Field, v value.Value) *Error {
	profile := schema.DefaultsFor(field.Type)
	min, max := profile.DefaultMinRating, profile.DefaultMaxRating
	if field.MinRating != nil {
		min = *field.MinRating
	}
	if field.MaxRating != nil {
		max = *field.MaxRating
	}

	rangeErr := &Error{
		FieldID: field.ID,
		Kind:    KindRange,
		Message: fmt.Sprintf("Please enter a value between %d and %d", min, max),
	}

	num, ok := value.AsNumber(v)
	if !ok {
		return rangeErr
	}
	if num < float64(min) || num > float64(max) {
		return rangeErr
	}
	return nil
}

func formatError(field schema.Field, message string) *Error {
	return &Error{FieldID: field.ID, Kind: KindFormat, Message: message}
}

func displayLabel(field schema.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

func isAbsoluteHTTPURL(raw string) bool {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return (scheme == "http" || scheme == "https") && parsed.Host != ""
}

func contains(options []string, candidate string) bool {
	for _, option := range options {
		if option == candidate {
			return true
		}
	}
	return false
}

var patternCache sync.Map // pattern string -> *regexp.Regexp

// compiled caches compiled patterns; a field list is re-validated on every
// transition attempt so repeated compilation would dominate.
func compiled(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
