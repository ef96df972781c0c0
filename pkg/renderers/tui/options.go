package tui

// OutputFormat controls how submitted values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures optional formatting hints applied when printing messages.
// Keep minimal to avoid coupling runner logic to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// SubmitTransformer mutates the submitted payload before serialization.
type SubmitTransformer func(map[string]any) (map[string]any, error)

// Option configures the TUI runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Runner) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate the payload prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Runner) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts caps how many times a single step is re-prompted after
// failing validation before the run gives up.
func WithMaxAttempts(attempts int) Option {
	return func(r *Runner) {
		if attempts > 0 {
			r.maxAttempts = attempts
		}
	}
}
