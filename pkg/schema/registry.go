package schema

// ValueShape describes the answer kind a field expects, used by validators
// and prompt drivers to pick the right input surface.
type ValueShape string

const (
	ValueShapeText   ValueShape = "text"
	ValueShapeChoice ValueShape = "choice"
	ValueShapeNumber ValueShape = "number"
	ValueShapeBool   ValueShape = "bool"
	ValueShapeNone   ValueShape = "none"
)

// Profile is the constraint profile resolved for a field type: the expected
// value shape, baseline rating bounds, and whether the type is an input at
// all. Fallback marks profiles synthesised for unknown type tags so
// presentation layers can render a generic widget.
type Profile struct {
	Shape            ValueShape
	RequiredDefault  bool
	DefaultMinRating int
	DefaultMaxRating int
	Display          bool
	Fallback         bool
}

var profiles = map[FieldType]Profile{
	FieldTypeShortText:     {Shape: ValueShapeText},
	FieldTypeLongText:      {Shape: ValueShapeText},
	FieldTypeEmail:         {Shape: ValueShapeText},
	FieldTypePhone:         {Shape: ValueShapeText},
	FieldTypeURL:           {Shape: ValueShapeText},
	FieldTypeSingleChoice:  {Shape: ValueShapeChoice},
	FieldTypeDropdown:      {Shape: ValueShapeChoice},
	FieldTypeBooleanChoice: {Shape: ValueShapeBool},
	FieldTypeNumericRating: {Shape: ValueShapeNumber, DefaultMinRating: 1, DefaultMaxRating: 5},
	FieldTypeOpinionScale:  {Shape: ValueShapeNumber, DefaultMinRating: 1, DefaultMaxRating: 10},
	FieldTypeStatement:     {Shape: ValueShapeNone, Display: true},
	FieldTypeLegalConsent:  {Shape: ValueShapeBool},
	FieldTypeFileUpload:    {Shape: ValueShapeText},
	FieldTypePageBreak:     {Shape: ValueShapeNone, Display: true},
	FieldTypeStartPage:     {Shape: ValueShapeNone, Display: true},
	FieldTypeEndPage:       {Shape: ValueShapeNone, Display: true},
}

// DefaultsFor resolves the constraint profile for a field type. It is pure
// and total: unknown tags resolve to the free-text profile with Fallback set
// rather than failing the form.
func DefaultsFor(t FieldType) Profile {
	if profile, ok := profiles[t]; ok {
		return profile
	}
	return Profile{Shape: ValueShapeText, Fallback: true}
}

// IsChoice reports whether the field type selects from an options list.
func IsChoice(t FieldType) bool {
	return DefaultsFor(t).Shape == ValueShapeChoice
}

// IsRating reports whether the field type carries numeric rating bounds.
func IsRating(t FieldType) bool {
	return DefaultsFor(t).Shape == ValueShapeNumber
}

// IsDisplay reports whether the field renders content but collects no answer.
func IsDisplay(t FieldType) bool {
	return DefaultsFor(t).Display
}
