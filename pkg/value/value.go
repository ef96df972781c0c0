// Package value defines the tagged value model carried by a form session.
// Each respondent answer is one of a small closed set of kinds so validators
// never have to guess at the dynamic shape of an untyped bag.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the sealed union of answer kinds a session can hold. Concrete
// kinds are Text, Number, and Bool.
type Value interface {
	isValue()
}

// Text holds free-text, choice, and upload answers.
type Text string

// Number holds rating and opinion-scale answers.
type Number float64

// Bool holds boolean-choice and legal-consent answers.
type Bool bool

func (Text) isValue()   {}
func (Number) isValue() {}
func (Bool) isValue()   {}

// Map associates field identifiers with their current answers. A nil entry
// and a missing entry are both "unanswered".
type Map map[string]Value

// Clone returns an independent copy of the map. Value kinds are immutable so
// a shallow copy suffices.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Of converts loosely typed input (JSON decoding, prompt drivers) into a
// Value. Unsupported shapes report false rather than guessing.
func Of(raw any) (Value, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case Value:
		return v, true
	case string:
		return Text(v), true
	case bool:
		return Bool(v), true
	case float64:
		return Number(v), true
	case float32:
		return Number(v), true
	case int:
		return Number(v), true
	case int64:
		return Number(v), true
	case int32:
		return Number(v), true
	case uint:
		return Number(v), true
	case uint64:
		return Number(v), true
	default:
		return nil, false
	}
}

// IsEmpty reports whether a value counts as unanswered: nil or
// whitespace-only text. Numbers and booleans are never empty; a zero rating
// or a "No" answer is still an answer. Consent fields treat false as
// unanswered, but that rule depends on the field type and lives in the
// validation package.
func IsEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Text:
		return strings.TrimSpace(string(t)) == ""
	default:
		return false
	}
}

// AsString renders a value for substring matching and equality against
// schema-supplied condition operands.
func AsString(v Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case Text:
		return string(t)
	case Number:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(t))
	default:
		return fmt.Sprint(v)
	}
}

// AsNumber attempts numeric coercion. Text parses when it looks like a
// number; anything else reports false.
func AsNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case Number:
		return float64(t), true
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsBool coerces a value to a boolean. Text accepts the strconv boolean
// spellings; non-empty unparseable text is true.
func AsBool(v Value) bool {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Text:
		parsed, err := strconv.ParseBool(strings.TrimSpace(string(t)))
		if err == nil {
			return parsed
		}
		return strings.TrimSpace(string(t)) != ""
	case Number:
		return t != 0
	default:
		return false
	}
}

// Plain lowers a Map into ordinary Go types for JSON serialization and
// submit payloads.
func Plain(m Map) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch t := v.(type) {
		case Text:
			out[k] = string(t)
		case Number:
			out[k] = float64(t)
		case Bool:
			out[k] = bool(t)
		case nil:
			out[k] = nil
		}
	}
	return out
}
