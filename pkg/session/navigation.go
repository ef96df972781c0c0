package session

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/validation"
)

// GoNext attempts to advance to the next scope. The active scope's visible
// fields are validated first; any failure blocks the move and is returned
// (and kept in the snapshot); navigation has no other blocking condition.
// Advancing past the last scope triggers the full-form submission
// sweep. "Submit on enter" style shortcuts must route through this method;
// there is no bypass of validation.
//
// A nil return means the session advanced, began submitting, or the call was
// ignored because the session is no longer active.
func (s *Session) GoNext(ctx context.Context) validation.List {
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
	s.submitErr = ""

	if s.position == len(s.scopes)-1 {
		return s.submit(ctx)
	}

	s.position++
	s.direction = DirectionForward
	s.notifyStep()
	return nil
}

// GoPrevious steps back one scope. It never validates: answers already
// entered are preserved and re-validated only on the next forward attempt.
// Below index zero the call is a no-op.
func (s *Session) GoPrevious() bool {
	if s.status != StatusActive {
		return false
	}
	if s.position == 0 {
		return false
	}
	s.position--
	s.direction = DirectionBackward
	s.errors = nil
	s.notifyStep()
	return true
}

// JumpTo moves directly to an arbitrary scope, as driven by a step indicator
// click. Backward jumps are always permitted. A forward jump requires every
// scope strictly before the target to have passed validation at least once;
// otherwise the jump is rejected exactly like a blocked GoNext, surfacing
// the current scope's errors. The boolean reports whether the position
// changed, so a rejection with a clean current scope (the block is
// positional, an uncompleted prefix) is still observable.
func (s *Session) JumpTo(index int) (validation.List, bool) {
	if s.status != StatusActive {
		return nil, false
	}
	if index < 0 || index >= len(s.scopes) || index == s.position {
		return nil, false
	}

	if index > s.position {
		for i := 0; i < index; i++ {
			if _, ok := s.completed[i]; !ok {
				scope := s.visibleScope(s.position)
				s.errors = s.validateFields(scope)
				s.markTouched(scope)
				return s.errors, false
			}
		}
	}

	if index > s.position {
		s.direction = DirectionForward
	} else {
		s.direction = DirectionBackward
	}
	s.position = index
	s.errors = nil
	s.notifyStep()
	return nil, true
}

func (s *Session) notifyStep() {
	if s.onStepChange != nil {
		s.onStepChange(s.position)
	}
}
