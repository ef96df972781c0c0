package session

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/value"
)

// Submitter is the external collaborator that receives the value map after a
// clean full-form validation. The engine calls it exactly once per
// successful validation and never concurrently with itself.
type Submitter interface {
	Submit(ctx context.Context, values map[string]any) error
}

// SubmitterFunc adapts a function into a Submitter.
type SubmitterFunc func(ctx context.Context, values map[string]any) error

// Submit delegates to the underlying function.
func (fn SubmitterFunc) Submit(ctx context.Context, values map[string]any) error {
	return fn(ctx, values)
}

// Submit runs the full submission flow from the current scope: an explicit
// "Submit"/"Complete" action on the final scope. It validates the active
// scope first so Submit and the terminal GoNext behave identically.
func (s *Session) Submit(ctx context.Context) validation.List {
	if s.status != StatusActive {
		return nil
	}

	scope := s.visibleScope(s.position)
	s.errors = s.validateFields(scope)
	s.markTouched(scope)
	if len(s.errors) > 0 {
		return s.errors
	}
	s.completed[s.position] = struct{}{}
	return s.submit(ctx)
}

// SubmissionError returns the pending submission-level failure message, if
// any. Field-level errors never appear here; this is the banner surface.
func (s *Session) SubmissionError() string {
	return s.submitErr
}

// submit is the coordinator behind the terminal transition: touch every
// field, sweep the entire visible field set as a safety net, then hand the
// value map to the collaborator.
func (s *Session) submit(ctx context.Context) validation.List {
	all := s.form.AllFields()
	s.markTouched(all)

	visible := make([]schema.Field, 0, len(all))
	for _, field := range all {
		if s.evaluator.Visible(field, s.values) {
			visible = append(visible, field)
		}
	}

	sweep := s.validateFields(visible)
	if len(sweep) > 0 {
		s.errors = sweep
		s.revertToErrored(sweep)
		return sweep
	}

	s.errors = nil
	s.status = StatusSubmitting

	if ctx == nil {
		ctx = context.Background()
	}
	if s.submitter != nil {
		if err := s.submitter.Submit(ctx, s.Payload()); err != nil {
			// Preserve everything the respondent entered; the failure is a
			// banner, and retry is just another Submit call.
			s.status = StatusActive
			s.submitErr = err.Error()
			s.position = len(s.scopes) - 1
			return nil
		}
	}

	s.status = StatusSubmitted
	return nil
}

// revertToErrored moves the position to the last scope containing an errored
// field so the respondent lands where fixing is needed. Flat forms stay put:
// their scope is a single field and the sweep already names the culprits.
func (s *Session) revertToErrored(errs validation.List) {
	if !s.form.Grouped() {
		return
	}
	target := -1
	for i, scope := range s.scopes {
		for _, field := range scope {
			if errs.Has(field.ID) {
				target = i
			}
		}
	}
	if target >= 0 && target != s.position {
		s.position = target
		s.direction = DirectionBackward
		s.notifyStep()
	}
}

// Payload lowers the value map into plain Go types for the submit
// collaborator and serialization.
func (s *Session) Payload() map[string]any {
	return value.Plain(s.values)
}
