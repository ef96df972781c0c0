package session

import (
	"sort"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Snapshot is the read-only view a presentation layer renders from. It is a
// value copy: mutating it never feeds back into the session.
type Snapshot struct {
	SessionID string
	Status    Status
	Position  int
	Direction Direction

	// ScopeCount is the total number of scopes (steps for grouped forms,
	// questions for flat forms).
	ScopeCount int

	// VisibleFields is the active scope filtered through conditional logic.
	VisibleFields []schema.Field

	// Errors is the current scope-level error snapshot in declaration
	// order; ErrorsByField is the stable field-keyed lookup used to route
	// focus to the first invalid field.
	Errors        validation.List
	ErrorsByField map[string]validation.Error

	// CompletedSteps lists the scope indexes that passed validation at
	// least once, sorted ascending.
	CompletedSteps []int

	// Touched lists fields the respondent interacted with or that an
	// advancement attempt swept into validation.
	Touched map[string]bool

	// SubmissionError carries the banner-level failure from the submit
	// collaborator, empty when none is pending.
	SubmissionError string

	// Values is an independent copy of the answers in plain Go types.
	Values map[string]any
}

// Snapshot captures the current session state for rendering.
func (s *Session) Snapshot() Snapshot {
	completed := make([]int, 0, len(s.completed))
	for index := range s.completed {
		completed = append(completed, index)
	}
	sort.Ints(completed)

	touched := make(map[string]bool, len(s.touched))
	for fieldID := range s.touched {
		touched[fieldID] = true
	}

	return Snapshot{
		SessionID:       s.id,
		Status:          s.status,
		Position:        s.position,
		Direction:       s.direction,
		ScopeCount:      len(s.scopes),
		VisibleFields:   s.visibleScope(s.position),
		Errors:          append(validation.List(nil), s.errors...),
		ErrorsByField:   s.errors.ByField(),
		CompletedSteps:  completed,
		Touched:         touched,
		SubmissionError: s.submitErr,
		Values:          s.Payload(),
	}
}
