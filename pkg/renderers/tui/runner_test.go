package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string
	messages  []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no text area scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.messages = append(s.messages, msg)
	return nil
}

func newRunner(t *testing.T, driver PromptDriver, options ...Option) *Runner {
	t.Helper()
	runner, err := New(append([]Option{WithPromptDriver(driver)}, options...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return runner
}

func newSession(t *testing.T, form schema.Form, opts ...session.Option) *session.Session {
	t.Helper()
	sess, err := session.New(form, opts...)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	return sess
}

func TestRunFlatFormSubmits(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "contact",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
			{ID: "email", Type: schema.FieldTypeEmail, Label: "Email", Required: true},
			{ID: "score", Type: schema.FieldTypeNumericRating, Label: "Score"},
		},
	}

	driver := &stubDriver{inputs: []string{"Ada Lovelace", "ada@example.com", "4"}}
	var submitted map[string]any
	sess := newSession(t, form, session.WithSubmitter(session.SubmitterFunc(func(_ context.Context, values map[string]any) error {
		submitted = values
		return nil
	})))

	out, err := newRunner(t, driver).Run(context.Background(), sess)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sess.Status() != session.StatusSubmitted {
		t.Fatalf("status = %q, want %q", sess.Status(), session.StatusSubmitted)
	}

	want := map[string]any{
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
		"score": float64(4),
	}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submitted payload mismatch (-want +got):\n%s", diff)
	}

	var payload map[string]any
	if err := json.Unmarshal(out, &payload); err != nil {
		t.Fatalf("Run() output is not JSON: %v", err)
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("serialized payload mismatch (-want +got):\n%s", diff)
	}
}

func TestRunRepromptsBlockedStep(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "signup",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
		},
	}

	driver := &stubDriver{inputs: []string{"", "Ada"}}
	sess := newSession(t, form)

	if _, err := newRunner(t, driver).Run(context.Background(), sess); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sess.Status() != session.StatusSubmitted {
		t.Fatalf("status = %q, want %q", sess.Status(), session.StatusSubmitted)
	}

	found := false
	for _, msg := range driver.messages {
		if strings.Contains(msg, "Name is required") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected required message relayed to driver, got %v", driver.messages)
	}
}

func TestRunGroupedFormPromptsByShape(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID:       "survey",
		Settings: schema.Settings{ShowProgress: true, SubmitLabel: "Send feedback"},
		Groups: []schema.Group{
			{
				ID:    "step-1",
				Title: "About you",
				Fields: []schema.Field{
					{ID: "intro", Type: schema.FieldTypeStatement, Label: "Welcome"},
					{ID: "plan", Type: schema.FieldTypeSingleChoice, Label: "Plan", Required: true, Options: []string{"Free", "Pro"}},
				},
			},
			{
				ID:    "step-2",
				Title: "Feedback",
				Fields: []schema.Field{
					{ID: "notes", Type: schema.FieldTypeLongText, Label: "Notes"},
					{ID: "terms", Type: schema.FieldTypeLegalConsent, Label: "Terms", Required: true},
				},
			},
		},
	}

	driver := &stubDriver{
		selectIdx: []int{1},
		textAreas: []string{"Great product"},
		confirm:   []bool{true},
	}
	sess := newSession(t, form)

	if _, err := newRunner(t, driver).Run(context.Background(), sess); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sess.Status() != session.StatusSubmitted {
		t.Fatalf("status = %q, want %q", sess.Status(), session.StatusSubmitted)
	}

	want := map[string]any{
		"plan":  "Pro",
		"notes": "Great product",
		"terms": true,
	}
	if diff := cmp.Diff(want, sess.Payload()); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}

	for _, want := range []string{"About you", "Welcome", "Step 1 of 2", "Step 2 of 2", "Send feedback"} {
		found := false
		for _, msg := range driver.messages {
			if strings.Contains(msg, want) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q announced, got %v", want, driver.messages)
		}
	}
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "signup",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
		},
	}

	driver := &stubDriver{inputs: []string{"", "", ""}}
	sess := newSession(t, form)

	_, err := newRunner(t, driver, WithMaxAttempts(2)).Run(context.Background(), sess)
	if !errors.Is(err, ErrTooManyRetries) {
		t.Fatalf("Run() error = %v, want ErrTooManyRetries", err)
	}
}

func TestRunSurfacesSubmitterFailure(t *testing.T) {
	t.Parallel()

	form := schema.Form{
		ID: "signup",
		Fields: []schema.Field{
			{ID: "name", Type: schema.FieldTypeShortText, Label: "Name", Required: true},
		},
	}

	driver := &stubDriver{inputs: []string{"Ada"}}
	sess := newSession(t, form, session.WithSubmitter(session.SubmitterFunc(func(context.Context, map[string]any) error {
		return errors.New("endpoint unreachable")
	})))

	_, err := newRunner(t, driver).Run(context.Background(), sess)
	if err == nil || !strings.Contains(err.Error(), "endpoint unreachable") {
		t.Fatalf("Run() error = %v, want submission failure", err)
	}
	if sess.Status() != session.StatusActive {
		t.Fatalf("status = %q, want %q", sess.Status(), session.StatusActive)
	}
}

func TestSerializeFormats(t *testing.T) {
	t.Parallel()

	values := map[string]any{"name": "Ada", "score": float64(4)}

	cases := []struct {
		format      OutputFormat
		contentType string
		want        string
	}{
		{OutputFormatFormURLEncoded, "application/x-www-form-urlencoded", "name=Ada&score=4"},
		{OutputFormatPrettyText, "text/plain", "name=Ada\nscore=4\n"},
	}

	for _, tc := range cases {
		runner := newRunner(t, &stubDriver{}, WithOutputFormat(tc.format))
		if got := runner.ContentType(); got != tc.contentType {
			t.Fatalf("ContentType(%s) = %q, want %q", tc.format, got, tc.contentType)
		}
		out, err := runner.serialize(values)
		if err != nil {
			t.Fatalf("serialize(%s) error = %v", tc.format, err)
		}
		if string(out) != tc.want {
			t.Fatalf("serialize(%s) = %q, want %q", tc.format, out, tc.want)
		}
	}
}
