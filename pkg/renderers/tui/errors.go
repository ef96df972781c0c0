package tui

import "errors"

var (
	// ErrAborted signals the respondent aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrTooManyRetries is returned when a step keeps failing validation
	// after repeated prompting rounds.
	ErrTooManyRetries = errors.New("tui: too many invalid attempts")
)
