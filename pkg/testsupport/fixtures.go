// Package testsupport provides fixture helpers shared by contract and
// integration tests. Helpers fail the test on error to keep call sites
// concise.
package testsupport

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
)

// LoadForm reads a form document fixture from disk and parses it.
func LoadForm(t *testing.T, path string) schema.Form {
	t.Helper()

	form, err := LoadFormFromPath(path)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadFormFromPath returns a parsed form without requiring testing.T,
// allowing callers to wire fixtures in setup functions.
func LoadFormFromPath(path string) (schema.Form, error) {
	if path == "" {
		return schema.Form{}, errors.New("testsupport: form path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Form{}, err
	}

	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return schema.Form{}, err
	}
	return schema.ParseDocument(doc)
}

// MustForm parses an inline JSON or YAML form document and panics on
// failure. Intended for table-driven tests with embedded fixtures.
func MustForm(raw string) schema.Form {
	form, err := schema.ParseBytes([]byte(raw))
	if err != nil {
		panic(err)
	}
	return form
}

// NewSession builds a session over the form and fails the test when
// construction is rejected.
func NewSession(t *testing.T, form schema.Form, opts ...session.Option) *session.Session {
	t.Helper()

	sess, err := session.New(form, opts...)
	if err != nil {
		t.Fatalf("session.New() error = %v", err)
	}
	return sess
}

// Advance calls GoNext and fails the test when the step is blocked.
func Advance(t *testing.T, sess *session.Session) {
	t.Helper()

	if errs := sess.GoNext(context.Background()); len(errs) > 0 {
		t.Fatalf("GoNext() blocked: %v", errs.Messages())
	}
}

// SetValues applies the given raw values in map order and fails the test on
// the first rejected field.
func SetValues(t *testing.T, sess *session.Session, values map[string]any) {
	t.Helper()

	for fieldID, raw := range values {
		if err := sess.SetValue(fieldID, raw); err != nil {
			t.Fatalf("SetValue(%q) error = %v", fieldID, err)
		}
	}
}

// RecordingSubmitter captures submission payloads and optionally fails the
// handoff with Err.
type RecordingSubmitter struct {
	Calls []map[string]any
	Err   error
}

// Submit implements session.Submitter.
func (r *RecordingSubmitter) Submit(_ context.Context, values map[string]any) error {
	r.Calls = append(r.Calls, values)
	return r.Err
}
