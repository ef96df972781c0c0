package openapi

import "github.com/goliatone/go-formflow/internal/humanize"

// DefaultLabeler converts a property name into a human-friendly label. It
// splits on dots, underscores, dashes, and camelCase boundaries.
func DefaultLabeler(name string) string {
	return humanize.Label(name)
}
