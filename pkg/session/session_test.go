package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/value"
)

func flatForm() schema.Form {
	return schema.Form{
		ID: "contact",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
			{ID: "email", Type: schema.FieldTypeEmail, Label: "Email", Required: true},
		},
	}
}

func groupedForm() schema.Form {
	return schema.Form{
		ID: "signup",
		Groups: []schema.Group{
			{ID: "who", Fields: []schema.Field{
				{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
				{ID: "email", Type: schema.FieldTypeEmail, Label: "Email", Required: true},
			}},
			{ID: "details", Fields: []schema.Field{
				{ID: "rating", Type: schema.FieldTypeNumericRating, Label: "Rating", Required: true},
			}},
		},
	}
}

// recordingSubmitter captures what the engine hands to the collaborator.
type recordingSubmitter struct {
	calls  int
	values map[string]any
	err    error
}

func (r *recordingSubmitter) Submit(_ context.Context, values map[string]any) error {
	r.calls++
	r.values = values
	return r.err
}

func TestGoNextBlocksOnRequiredField(t *testing.T) {
	t.Parallel()

	s, err := New(flatForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	errs := s.GoNext(context.Background())
	if len(errs) != 1 || errs[0].FieldID != "name" || errs[0].Kind != validation.KindRequired {
		t.Fatalf("expected one required error for name, got %#v", errs)
	}
	if s.Position() != 0 {
		t.Fatalf("blocked GoNext must not move, position = %d", s.Position())
	}

	if err := s.SetValue("name", "Test User"); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	if errs := s.GoNext(context.Background()); len(errs) != 0 {
		t.Fatalf("expected clean advance, got %#v", errs)
	}
	if s.Position() != 1 {
		t.Fatalf("position = %d, want 1", s.Position())
	}
}

func TestGoPreviousNeverValidates(t *testing.T) {
	t.Parallel()

	s, err := New(flatForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_ = s.SetValue("name", "Test User")
	_ = s.GoNext(context.Background())

	if !s.GoPrevious() {
		t.Fatalf("GoPrevious from index 1 should succeed")
	}
	if s.Position() != 0 {
		t.Fatalf("position = %d, want 0", s.Position())
	}
	if v, ok := s.Value("name"); !ok || v != value.Text("Test User") {
		t.Fatalf("previously entered value lost: %v (ok=%v)", v, ok)
	}

	if s.GoPrevious() {
		t.Fatalf("GoPrevious below index 0 must be a no-op")
	}
}

func TestFlatFormFullScenario(t *testing.T) {
	t.Parallel()

	submitter := &recordingSubmitter{}
	s, err := New(flatForm(), WithSubmitter(submitter))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	// Both empty: flat mode validates one field per scope, so only the
	// first question reports.
	errs := s.GoNext(ctx)
	if len(errs) != 1 || errs[0].FieldID != "name" {
		t.Fatalf("expected name error only, got %#v", errs)
	}

	_ = s.SetValue("name", "Test User")
	if errs := s.GoNext(ctx); len(errs) != 0 {
		t.Fatalf("expected advance to email scope, got %#v", errs)
	}

	_ = s.SetValue("email", "bad")
	errs = s.GoNext(ctx)
	if len(errs) != 1 || errs[0].Kind != validation.KindFormat {
		t.Fatalf("expected format block, got %#v", errs)
	}

	_ = s.SetValue("email", "a@b.com")
	if errs := s.GoNext(ctx); len(errs) != 0 {
		t.Fatalf("expected submission, got %#v", errs)
	}

	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %q, want submitted", s.Status())
	}
	if submitter.calls != 1 {
		t.Fatalf("submitter called %d times, want exactly 1", submitter.calls)
	}
	want := map[string]any{"name": "Test User", "email": "a@b.com"}
	if diff := cmp.Diff(want, submitter.values); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupedFormValidatesWholeStep(t *testing.T) {
	t.Parallel()

	s, err := New(groupedForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	errs := s.GoNext(context.Background())
	if len(errs) != 2 {
		t.Fatalf("grouped mode validates the full step, got %#v", errs)
	}
	if errs[0].FieldID != "name" || errs[1].FieldID != "email" {
		t.Fatalf("errors out of declaration order: %#v", errs)
	}
}

func TestSubmissionSweepRevertsToErroredGroup(t *testing.T) {
	t.Parallel()

	s, err := New(groupedForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	_ = s.SetValue("name", "Test User")
	_ = s.SetValue("rating", 4)
	_ = s.SetValue("email", "a@b.com")
	if errs := s.GoNext(ctx); len(errs) != 0 {
		t.Fatalf("step 0 should pass, got %#v", errs)
	}

	// Invalidate a step-0 field from step 1, then submit.
	_ = s.SetValue("email", "broken")
	errs := s.GoNext(ctx)
	if len(errs) != 1 || errs[0].FieldID != "email" {
		t.Fatalf("sweep should catch the stale email, got %#v", errs)
	}
	if s.Position() != 0 {
		t.Fatalf("session should revert to the errored group, position = %d", s.Position())
	}
	if s.Status() != StatusActive {
		t.Fatalf("no submission attempt may happen with errors, status = %q", s.Status())
	}
}

func TestHiddenRequiredFieldIsSkipped(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "conditional",
		Groups: []schema.Group{
			{ID: "only", Fields: []schema.Field{
				{ID: "role", Type: schema.FieldTypeSingleChoice, Label: "Role", Options: []string{"Engineer", "Other"}},
				{
					ID: "team", Type: schema.FieldTypeShortText, Label: "Team", Required: true,
					Conditional: &schema.ConditionalLogic{
						HideWhen: []schema.Condition{{FieldID: "role", Operator: schema.OperatorEquals, Value: "Other"}},
					},
				},
			}},
		},
	}

	s, err := New(form, WithSubmitter(&recordingSubmitter{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_ = s.SetValue("role", "Other")
	if errs := s.GoNext(context.Background()); len(errs) != 0 {
		t.Fatalf("hidden required field must not block, got %#v", errs)
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("single-step clean form should submit, status = %q", s.Status())
	}
}

func TestRequiredBooleanStepAcceptsNo(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "optin",
		Fields: []schema.Field{
			{ID: "subscribed", Type: schema.FieldTypeBooleanChoice, Label: "Subscribed", Required: true},
		},
	}

	s, err := New(form, WithSubmitter(&recordingSubmitter{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// "No" is an answer; only consent fields treat false as unanswered.
	if err := s.SetValue("subscribed", false); err != nil {
		t.Fatalf("SetValue returned error: %v", err)
	}
	if errs := s.GoNext(context.Background()); len(errs) != 0 {
		t.Fatalf("required boolean answered false must not block, got %#v", errs)
	}
	if s.Status() != StatusSubmitted {
		t.Fatalf("single-step form should submit, status = %q", s.Status())
	}
	if got := s.Payload()["subscribed"]; got != false {
		t.Fatalf("payload subscribed = %v, want false", got)
	}
}

func TestJumpToRequiresCompletedPrefix(t *testing.T) {
	t.Parallel()

	s, err := New(groupedForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	errs, moved := s.JumpTo(1)
	if len(errs) != 2 || moved {
		t.Fatalf("forward jump past an unvalidated step blocks like GoNext, got %#v moved=%v", errs, moved)
	}
	if s.Position() != 0 {
		t.Fatalf("rejected jump must not move, position = %d", s.Position())
	}

	_ = s.SetValue("name", "Test User")
	_ = s.SetValue("email", "a@b.com")
	if errs := s.GoNext(context.Background()); len(errs) != 0 {
		t.Fatalf("step 0 should pass, got %#v", errs)
	}

	if errs, moved := s.JumpTo(0); len(errs) != 0 || !moved {
		t.Fatalf("backward jump is always permitted, got %#v moved=%v", errs, moved)
	}
	if s.Position() != 0 {
		t.Fatalf("position = %d, want 0", s.Position())
	}

	if errs, moved := s.JumpTo(1); len(errs) != 0 || !moved {
		t.Fatalf("jump to a completed-prefix target should pass, got %#v moved=%v", errs, moved)
	}
	if s.Position() != 1 {
		t.Fatalf("position = %d, want 1", s.Position())
	}
}

func TestJumpToBlockedWithCleanScopeReportsNoMove(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "f1",
		Groups: []schema.Group{
			{ID: "g1", Fields: []schema.Field{{ID: "nickname", Type: schema.FieldTypeShortText, Label: "Nickname"}}},
			{ID: "g2", Fields: []schema.Field{{ID: "color", Type: schema.FieldTypeShortText, Label: "Color"}}},
			{ID: "g3", Fields: []schema.Field{{ID: "city", Type: schema.FieldTypeShortText, Label: "City"}}},
		},
	}

	s, err := New(form)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if errs := s.GoNext(context.Background()); len(errs) != 0 {
		t.Fatalf("optional step should pass, got %#v", errs)
	}

	// Step 1 validates clean, but step 1 itself was never completed, so a
	// jump to step 2 is positionally blocked. The boolean is the only
	// signal: there are no errors to return.
	errs, moved := s.JumpTo(2)
	if len(errs) != 0 {
		t.Fatalf("clean current scope should report no errors, got %#v", errs)
	}
	if moved {
		t.Fatal("positionally blocked jump must report moved=false")
	}
	if s.Position() != 1 {
		t.Fatalf("position = %d, want 1", s.Position())
	}
}

func TestSubmitFailureKeepsValuesAndSurfacesBanner(t *testing.T) {
	t.Parallel()

	submitter := &recordingSubmitter{err: errors.New("backend unavailable")}
	s, err := New(flatForm(), WithSubmitter(submitter))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	_ = s.SetValue("name", "Test User")
	_ = s.GoNext(ctx)
	_ = s.SetValue("email", "a@b.com")
	if errs := s.GoNext(ctx); len(errs) != 0 {
		t.Fatalf("no field errors expected, got %#v", errs)
	}

	if s.Status() != StatusActive {
		t.Fatalf("failed submission should return to the last scope, status = %q", s.Status())
	}
	if s.SubmissionError() != "backend unavailable" {
		t.Fatalf("submission error = %q", s.SubmissionError())
	}
	if v, ok := s.Value("email"); !ok || v != value.Text("a@b.com") {
		t.Fatalf("entered values must be preserved, got %v (ok=%v)", v, ok)
	}

	// Retry succeeds once the collaborator recovers.
	submitter.err = nil
	if errs := s.Submit(ctx); len(errs) != 0 {
		t.Fatalf("retry should pass, got %#v", errs)
	}
	if s.Status() != StatusSubmitted || submitter.calls != 2 {
		t.Fatalf("status = %q, calls = %d", s.Status(), submitter.calls)
	}
}

func TestSubmittedIsTerminal(t *testing.T) {
	t.Parallel()

	s, err := New(flatForm(), WithSubmitter(&recordingSubmitter{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	_ = s.SetValue("name", "Test User")
	_ = s.GoNext(ctx)
	_ = s.SetValue("email", "a@b.com")
	_ = s.GoNext(ctx)

	if s.Status() != StatusSubmitted {
		t.Fatalf("status = %q, want submitted", s.Status())
	}

	if err := s.SetValue("name", "Changed"); err != nil {
		t.Fatalf("SetValue after submit must be a silent no-op, got %v", err)
	}
	if v, _ := s.Value("name"); v != value.Text("Test User") {
		t.Fatalf("terminal state accepted a mutation: %v", v)
	}
	if errs := s.GoNext(ctx); errs != nil {
		t.Fatalf("GoNext after submit must be a no-op, got %#v", errs)
	}
	if s.GoPrevious() {
		t.Fatalf("GoPrevious after submit must be a no-op")
	}
}

func TestHooksFire(t *testing.T) {
	t.Parallel()

	var fieldEvents []string
	var stepEvents []int

	s, err := New(flatForm(),
		WithSubmitter(&recordingSubmitter{}),
		WithFieldChangeHook(func(fieldID string, _ value.Value) {
			fieldEvents = append(fieldEvents, fieldID)
		}),
		WithStepChangeHook(func(index int) {
			stepEvents = append(stepEvents, index)
		}),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := context.Background()

	_ = s.SetValue("name", "Test User")
	_ = s.GoNext(ctx)
	_ = s.SetValue("email", "a@b.com")
	s.GoPrevious()

	if diff := cmp.Diff([]string{"name", "email"}, fieldEvents); diff != "" {
		t.Fatalf("field events mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 0}, stepEvents); diff != "" {
		t.Fatalf("step events mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotExposesReadOnlyState(t *testing.T) {
	t.Parallel()

	s, err := New(groupedForm())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_ = s.GoNext(context.Background())
	snap := s.Snapshot()

	if snap.Position != 0 || snap.ScopeCount != 2 || snap.Status != StatusActive {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
	if len(snap.Errors) != 2 {
		t.Fatalf("snapshot should carry the blocked errors, got %#v", snap.Errors)
	}
	if snap.ErrorsByField["name"].Kind != validation.KindRequired {
		t.Fatalf("field-keyed lookup missing name: %#v", snap.ErrorsByField)
	}
	if !snap.Touched["name"] || !snap.Touched["email"] {
		t.Fatalf("advancement attempt should sweep fields into touched: %#v", snap.Touched)
	}
	if len(snap.VisibleFields) != 2 {
		t.Fatalf("visible fields mismatch: %#v", snap.VisibleFields)
	}

	// Mutating the snapshot never feeds back.
	snap.Values["name"] = "mutated"
	if _, ok := s.Value("name"); ok {
		t.Fatalf("snapshot mutation leaked into the session")
	}
}

func TestNormalizationErrorsSurfaceAtConstruction(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "dup",
		Fields: []schema.Field{
			{ID: "a", Type: schema.FieldTypeShortText},
			{ID: "a", Type: schema.FieldTypeShortText},
		},
	}
	if _, err := New(form); err == nil {
		t.Fatalf("duplicate ids must be rejected before a session starts")
	}
}
