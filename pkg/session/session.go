// Package session owns the runtime state of one respondent filling one form:
// the value map, navigation position, touched/completed tracking, and the
// submission handshake. A session is single-owner by design; every public
// operation runs to completion before the next is accepted, so no internal
// locking is needed.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/value"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Status tracks the session lifecycle. Submitted is terminal: no further
// mutation of the value map is accepted.
type Status string

const (
	StatusActive     Status = "active"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
)

// Direction records the last navigation movement so presentation layers can
// animate transitions.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
)

// Option customises session construction.
type Option func(*Session)

// WithEvaluator swaps the visibility evaluator. The default interprets the
// fields' declared conditionalLogic.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithSubmitter wires the external submit collaborator invoked after a clean
// full-form validation.
func WithSubmitter(submitter Submitter) Option {
	return func(s *Session) {
		s.submitter = submitter
	}
}

// WithFieldChangeHook registers a callback fired on every accepted SetValue.
func WithFieldChangeHook(hook func(fieldID string, v value.Value)) Option {
	return func(s *Session) {
		s.onFieldChange = hook
	}
}

// WithStepChangeHook registers a callback fired on every successful
// navigation movement.
func WithStepChangeHook(hook func(index int)) Option {
	return func(s *Session) {
		s.onStepChange = hook
	}
}

// WithValues seeds previously entered answers, e.g. when a collaborator
// restored a draft. Seeded answers are not marked touched.
func WithValues(values map[string]any) Option {
	return func(s *Session) {
		for fieldID, raw := range values {
			if v, ok := value.Of(raw); ok {
				s.values[fieldID] = v
			}
		}
	}
}

// Session is the form interpretation engine for one respondent. Construct
// with New, drive with SetValue/GoNext/GoPrevious/JumpTo/Submit, and read
// state through Snapshot.
type Session struct {
	id        string
	form      schema.Form
	scopes    [][]schema.Field
	fieldByID map[string]schema.Field

	position  int
	direction Direction
	status    Status

	values    value.Map
	touched   map[string]struct{}
	completed map[int]struct{}

	errors    validation.List
	submitErr string

	evaluator visibility.Evaluator
	submitter Submitter

	onFieldChange func(fieldID string, v value.Value)
	onStepChange  func(index int)
}

// New normalizes the form document and constructs a session positioned at
// the first scope. Normalization failures (duplicate or missing field IDs)
// are the only construction errors; they are authoring defects that must be
// rejected before a respondent starts, not mid-fill.
func New(form schema.Form, opts ...Option) (*Session, error) {
	normalized, err := schema.Normalize(form)
	if err != nil {
		return nil, fmt.Errorf("session: normalize form: %w", err)
	}

	s := &Session{
		id:        uuid.NewString(),
		form:      normalized,
		scopes:    buildScopes(normalized),
		fieldByID: indexFields(normalized),
		direction: DirectionForward,
		status:    StatusActive,
		values:    make(value.Map),
		touched:   make(map[string]struct{}),
		completed: make(map[int]struct{}),
		evaluator: visibility.New(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	if len(s.scopes) == 0 {
		return nil, errors.New("session: form has no scopes")
	}
	return s, nil
}

// buildScopes derives the navigation scopes: one group per scope for stepped
// forms, one field per scope for flat forms. The asymmetry (flat mode
// validates a single field per advance, grouped mode a whole step) is
// deliberate observed behaviour.
func buildScopes(form schema.Form) [][]schema.Field {
	if form.Grouped() {
		scopes := make([][]schema.Field, len(form.Groups))
		for i, group := range form.Groups {
			scopes[i] = group.Fields
		}
		return scopes
	}
	scopes := make([][]schema.Field, len(form.Fields))
	for i, field := range form.Fields {
		scopes[i] = []schema.Field{field}
	}
	return scopes
}

func indexFields(form schema.Form) map[string]schema.Field {
	out := make(map[string]schema.Field)
	for _, field := range form.AllFields() {
		out[field.ID] = field
	}
	return out
}

// ID returns the session identifier assigned at construction.
func (s *Session) ID() string {
	return s.id
}

// Form exposes the normalized form document driving this session.
func (s *Session) Form() schema.Form {
	return s.form
}

// Status reports the lifecycle state.
func (s *Session) Status() Status {
	return s.status
}

// Position reports the current scope index.
func (s *Session) Position() int {
	return s.position
}

// ScopeCount reports how many scopes the session navigates through.
func (s *Session) ScopeCount() int {
	return len(s.scopes)
}

// SetValue records a respondent answer and fires the field-change hook.
// Calls are no-ops once the session is submitting or submitted. Unknown
// field IDs and unsupported value shapes are rejected with an error since
// they indicate a wiring defect in the caller, not respondent input.
func (s *Session) SetValue(fieldID string, raw any) error {
	if s.status != StatusActive {
		return nil
	}
	if _, ok := s.fieldByID[fieldID]; !ok {
		return fmt.Errorf("session: unknown field %q", fieldID)
	}
	v, ok := value.Of(raw)
	if !ok {
		return fmt.Errorf("session: unsupported value type %T for field %q", raw, fieldID)
	}

	if v == nil {
		delete(s.values, fieldID)
	} else {
		s.values[fieldID] = v
	}
	s.touched[fieldID] = struct{}{}
	s.submitErr = ""

	if s.onFieldChange != nil {
		s.onFieldChange(fieldID, v)
	}
	return nil
}

// Value returns the current answer for a field.
func (s *Session) Value(fieldID string) (value.Value, bool) {
	v, ok := s.values[fieldID]
	return v, ok
}

// Values returns an independent copy of the value map.
func (s *Session) Values() value.Map {
	return s.values.Clone()
}

// scopeFields returns the declared fields of a scope index.
func (s *Session) scopeFields(index int) []schema.Field {
	if index < 0 || index >= len(s.scopes) {
		return nil
	}
	return s.scopes[index]
}

// visibleScope filters a scope down to the fields whose conditional logic
// currently shows them.
func (s *Session) visibleScope(index int) []schema.Field {
	fields := s.scopeFields(index)
	if len(fields) == 0 {
		return nil
	}
	out := make([]schema.Field, 0, len(fields))
	for _, field := range fields {
		if s.evaluator.Visible(field, s.values) {
			out = append(out, field)
		}
	}
	return out
}

// validateScope recomputes the error snapshot for a scope. Errors are always
// rebuilt from scratch on each attempt rather than patched incrementally,
// and the session's evaluator decides which fields participate.
func (s *Session) validateScope(index int) validation.List {
	return s.validateFields(s.visibleScope(index))
}

func (s *Session) validateFields(fields []schema.Field) validation.List {
	var out validation.List
	for _, field := range fields {
		if err := validation.ValidateField(field, s.values[field.ID]); err != nil {
			out = append(out, *err)
		}
	}
	return out
}

func (s *Session) markTouched(fields []schema.Field) {
	for _, field := range fields {
		s.touched[field.ID] = struct{}{}
	}
}
