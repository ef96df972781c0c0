// Package tui drives a form session through terminal prompts. The runner
// asks one step at a time, relays validation messages from the session, and
// serializes the submitted payload. All answer checking stays inside the
// session; the runner only collects input.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/value"
)

const defaultMaxAttempts = 10

// Runner walks a session scope by scope until it submits.
type Runner struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	maxAttempts       int
}

// New constructs a TUI runner with defaults (survey driver, JSON output).
func New(options ...Option) (*Runner, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Runner{
		driver:       driver,
		outputFormat: OutputFormatJSON,
		maxAttempts:  defaultMaxAttempts,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver, err = newSurveyDriver()
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Name reports the runner identifier.
func (r *Runner) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Run.
func (r *Runner) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts for every visible field of the current step, advances on
// success, and re-prompts the step when validation blocks it. On submission
// it returns the serialized payload.
func (r *Runner) Run(ctx context.Context, sess *session.Session) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if sess == nil {
		return nil, errors.New("tui: session is required")
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	form := sess.Form()
	if form.Title != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+form.Title); err != nil {
			return nil, err
		}
	}

	attempts := 0
	lastAnnounced := -1
	for sess.Status() == session.StatusActive {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pos := sess.Position()
		if pos != lastAnnounced {
			if err := r.announceStep(ctx, form, pos, sess.ScopeCount()); err != nil {
				return nil, err
			}
			lastAnnounced = pos
		}
		for _, field := range sess.Snapshot().VisibleFields {
			if err := r.promptField(ctx, sess, field); err != nil {
				return nil, err
			}
		}
		errs := sess.GoNext(ctx)
		if len(errs) > 0 {
			attempts++
			if attempts >= r.maxAttempts {
				return nil, fmt.Errorf("%w: step %d", ErrTooManyRetries, pos)
			}
			for _, e := range errs {
				if err := r.driver.Info(ctx, r.theme.ErrorPrefix+e.Message); err != nil {
					return nil, err
				}
			}
			continue
		}
		attempts = 0
		if sess.Status() == session.StatusActive && sess.Position() == pos {
			if msg := sess.SubmissionError(); msg != "" {
				return nil, fmt.Errorf("tui: submission failed: %s", msg)
			}
		}
	}

	done := form.Settings.SubmitLabel
	if done == "" {
		done = "Submitted"
	}
	if err := r.driver.Info(ctx, r.theme.InfoPrefix+done); err != nil {
		return nil, err
	}

	return r.serialize(sess.Payload())
}

// announceStep prints the group title and, when the form opts in, a step
// counter. Flat forms only get the counter; their scopes have no titles.
func (r *Runner) announceStep(ctx context.Context, form schema.Form, pos, total int) error {
	if form.Grouped() && pos < len(form.Groups) {
		if title := form.Groups[pos].Title; title != "" {
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+title); err != nil {
				return err
			}
		}
	}
	if form.Settings.ShowProgress {
		return r.driver.Info(ctx, fmt.Sprintf("%sStep %d of %d", r.theme.InfoPrefix, pos+1, total))
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, sess *session.Session, field schema.Field) error {
	profile := schema.DefaultsFor(field.Type)
	if profile.Display {
		return r.announce(ctx, field)
	}

	message := r.theme.PromptPrefix + promptLabel(field)
	current, _ := sess.Value(field.ID)

	switch {
	case profile.Shape == schema.ValueShapeBool:
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: message,
			Help:    field.Description,
			Default: value.AsBool(current),
		})
		if err != nil {
			return err
		}
		return sess.SetValue(field.ID, answer)
	case profile.Shape == schema.ValueShapeChoice:
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, value.AsString(current)),
			Help:         field.Description,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(field.Options) {
			return fmt.Errorf("tui: selection out of range for field %q", field.ID)
		}
		return sess.SetValue(field.ID, field.Options[idx])
	case profile.Shape == schema.ValueShapeNumber:
		return r.promptNumber(ctx, sess, field, message, current)
	case field.Type == schema.FieldTypeLongText:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Help:    field.Description,
			Default: value.AsString(current),
		})
		if err != nil {
			return err
		}
		return sess.SetValue(field.ID, answer)
	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:     message,
			Help:        field.Description,
			Default:     value.AsString(current),
			Placeholder: field.Placeholder,
		})
		if err != nil {
			return err
		}
		return sess.SetValue(field.ID, answer)
	}
}

func (r *Runner) promptNumber(ctx context.Context, sess *session.Session, field schema.Field, message string, current value.Value) error {
	cfg := InputConfig{
		Message:   message,
		Help:      field.Description,
		Validator: numberValidator(field),
	}
	if n, ok := value.AsNumber(current); ok {
		cfg.Default = strconv.FormatFloat(n, 'f', -1, 64)
	}
	answer, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return sess.SetValue(field.ID, nil)
	}
	n, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		// Keep the raw text; the session reports the range error.
		return sess.SetValue(field.ID, answer)
	}
	return sess.SetValue(field.ID, n)
}

func (r *Runner) announce(ctx context.Context, field schema.Field) error {
	if field.Label != "" {
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+field.Label); err != nil {
			return err
		}
	}
	if field.Description != "" {
		return r.driver.Info(ctx, r.theme.InfoPrefix+field.Description)
	}
	return nil
}

func (r *Runner) serialize(values map[string]any) ([]byte, error) {
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func promptLabel(field schema.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.ID
}

func numberValidator(field schema.Field) func(string) error {
	return func(raw string) error {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Errorf("%s expects a number", promptLabel(field))
		}
		return nil
	}
}

func encodeForm(values map[string]any) string {
	out := url.Values{}
	for key, val := range values {
		out.Set(key, fmt.Sprint(val))
	}
	return out.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%v\n", key, values[key])
	}
	return b.String()
}
