// Package visibility resolves conditional show/hide logic against the
// current answers. Evaluation is a pure function of the value map: any
// upstream answer change can flip a field, so results are never cached
// across mutations.
package visibility

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/value"
)

// Evaluator decides whether a field participates in validation and
// navigation. The rule-based implementation below is the default; sessions
// accept alternatives for callers with bespoke logic.
type Evaluator interface {
	Visible(field schema.Field, values value.Map) bool
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field schema.Field, values value.Map) bool

// Visible delegates to the underlying function.
func (fn EvaluatorFunc) Visible(field schema.Field, values value.Map) bool {
	return fn(field, values)
}

// Rules is the default Evaluator backed by the field's declared
// conditionalLogic.
type Rules struct{}

// New returns the default rule-based evaluator.
func New() Rules { return Rules{} }

// Visible implements Evaluator.
func (Rules) Visible(field schema.Field, values value.Map) bool {
	return Visible(field, values)
}

// Visible reports whether a field is currently shown. Fields without
// conditional logic are always visible. A non-empty showWhen list must have
// at least one satisfied condition (logical OR); a non-empty hideWhen list
// hides the field when any condition matches. Hide wins: it is evaluated
// after show so a field both shown and hidden ends up hidden.
func Visible(field schema.Field, values value.Map) bool {
	logic := field.Conditional
	if logic == nil {
		return true
	}

	if len(logic.ShowWhen) > 0 {
		shown := false
		for _, cond := range logic.ShowWhen {
			if Matches(cond, values) {
				shown = true
				break
			}
		}
		if !shown {
			return false
		}
	}

	for _, cond := range logic.HideWhen {
		if Matches(cond, values) {
			return false
		}
	}

	return true
}

// Filter returns the subset of fields that are currently visible, preserving
// declaration order.
func Filter(fields []schema.Field, values value.Map) []schema.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if Visible(field, values) {
			out = append(out, field)
		}
	}
	return out
}

// Matches evaluates a single condition. Malformed conditions (blank source
// field, unknown operator) and failed numeric coercions report false; a
// misconfigured schema must never crash a respondent session.
func Matches(cond schema.Condition, values value.Map) bool {
	if strings.TrimSpace(cond.FieldID) == "" {
		return false
	}
	current := values[cond.FieldID]

	switch cond.Operator {
	case schema.OperatorEquals:
		return looseEqual(current, cond.Value)
	case schema.OperatorNotEquals:
		return !looseEqual(current, cond.Value)
	case schema.OperatorContains:
		return strings.Contains(value.AsString(current), stringify(cond.Value))
	case schema.OperatorGreaterThan:
		got, ok := value.AsNumber(current)
		if !ok {
			return false
		}
		want, ok := numberify(cond.Value)
		if !ok {
			return false
		}
		return got > want
	case schema.OperatorLessThan:
		got, ok := value.AsNumber(current)
		if !ok {
			return false
		}
		want, ok := numberify(cond.Value)
		if !ok {
			return false
		}
		return got < want
	default:
		return false
	}
}

// looseEqual compares the current answer against the schema operand on their
// string forms so "5" matches 5 and true matches "true".
func looseEqual(current value.Value, operand any) bool {
	return value.AsString(current) == stringify(operand)
}

func stringify(operand any) string {
	v, ok := value.Of(operand)
	if !ok {
		return ""
	}
	return value.AsString(v)
}

func numberify(operand any) (float64, bool) {
	v, ok := value.Of(operand)
	if !ok {
		return 0, false
	}
	return value.AsNumber(v)
}
