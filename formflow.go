// Package formflow interprets declarative form definitions: it parses form
// documents, evaluates conditional visibility, validates answers, and walks a
// respondent through the questions one step at a time until submission.
package formflow

import (
	"context"

	internalLoader "github.com/goliatone/go-formflow/internal/loader"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Form aliases schema.Form so callers can stay on the root package for the
// common flow.
type Form = schema.Form

// Field describes a single question or display block.
type Field = schema.Field

// Group is a titled page of fields for step navigation.
type Group = schema.Group

// Session tracks one respondent filling out a form.
type Session = session.Session

// Snapshot is a read-only view of session state for rendering.
type Snapshot = session.Snapshot

// Submitter receives the payload when a session submits.
type Submitter = session.Submitter

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc = session.SubmitterFunc

// Errors is an ordered list of field-level validation errors.
type Errors = validation.List

// NewLoader constructs a document loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// LoadForm fetches a form document from the source and parses it. It is the
// simplest entry point for callers that just want a Form.
func LoadForm(ctx context.Context, src schema.Source, options ...schema.LoaderOption) (schema.Form, error) {
	doc, err := NewLoader(options...).Load(ctx, src)
	if err != nil {
		return schema.Form{}, err
	}
	return schema.ParseDocument(doc)
}

// NewSession starts a respondent session over the form. The form is
// normalized during construction; duplicate or missing field IDs are
// rejected here rather than surfacing later as answer errors.
func NewSession(form schema.Form, options ...session.Option) (*session.Session, error) {
	return session.New(form, options...)
}

// StartSession loads a form from the source and opens a session over it in
// one call.
func StartSession(ctx context.Context, src schema.Source, options ...session.Option) (*session.Session, error) {
	form, err := LoadForm(ctx, src)
	if err != nil {
		return nil, err
	}
	return session.New(form, options...)
}
