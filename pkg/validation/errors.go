// Package validation evaluates respondent answers against a field's
// constraint profile. Failures are values surfaced to the respondent, never
// Go errors: a form with invalid answers is a normal state, not a fault.
package validation

// Kind classifies a validation failure.
type Kind string

const (
	KindRequired Kind = "required"
	KindFormat   Kind = "format"
	KindRange    Kind = "range"
	KindCustom   Kind = "custom"
)

// Error describes a single field-level validation failure.
type Error struct {
	FieldID string `json:"fieldId"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// List is an ordered set of validation failures. Ordering always follows
// field declaration order, never touch order.
type List []Error

// ByField indexes the list by field ID for focus/scroll routing. The first
// error per field wins; ValidateMany only ever produces one per field.
func (l List) ByField() map[string]Error {
	if len(l) == 0 {
		return nil
	}
	out := make(map[string]Error, len(l))
	for _, e := range l {
		if _, ok := out[e.FieldID]; !ok {
			out[e.FieldID] = e
		}
	}
	return out
}

// First returns the leading error, used to pick the field to refocus after a
// blocked transition.
func (l List) First() (Error, bool) {
	if len(l) == 0 {
		return Error{}, false
	}
	return l[0], true
}

// Has reports whether the list contains an error for the field.
func (l List) Has(fieldID string) bool {
	for _, e := range l {
		if e.FieldID == fieldID {
			return true
		}
	}
	return false
}

// Messages flattens the list for display surfaces that only want text.
func (l List) Messages() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, len(l))
	for i, e := range l {
		out[i] = e.Message
	}
	return out
}
