package extract

import (
	"errors"
	"fmt"
)

// Failure categories. Every error produced by this package wraps exactly one
// of them, so callers can branch with errors.Is.
var (
	// ErrNotFound reports an absent delimiter, bracket, fence, tag or section.
	ErrNotFound = errors.New("outparse: not found")

	// ErrParse reports a bracketed span that is not a valid literal.
	ErrParse = errors.New("outparse: parse error")

	// ErrTypeMismatch reports a literal whose top-level shape is not the one requested.
	ErrTypeMismatch = errors.New("outparse: type mismatch")

	// ErrInvalidInput reports a caller contract violation (invalid UTF-8,
	// empty tag, unknown kind). It is always fatal.
	ErrInvalidInput = errors.New("outparse: invalid input")
)

// Component names used in errors and log entries.
const (
	ComponentSections = "sections"
	ComponentFence    = "fence"
	ComponentLiteral  = "literal"
	ComponentCoerce   = "coerce"
	ComponentTagged   = "tagged"
	ComponentDocument = "document"
)

// ExtractError describes why one extraction step failed.
type ExtractError struct {
	// Component is the extractor that failed (see the Component constants).
	Component string
	// Field is the section, field, tag or language the step was working on.
	Field string
	// Reason is one of ErrNotFound, ErrParse, ErrTypeMismatch, ErrInvalidInput.
	Reason error
	// Detail is a human readable explanation.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func newError(component, field string, reason error, format string, args ...any) *ExtractError {
	return &ExtractError{
		Component: component,
		Field:     field,
		Reason:    reason,
		Detail:    fmt.Sprintf(format, args...),
	}
}

func (e *ExtractError) Error() string {
	msg := e.Component + ": " + e.Reason.Error()
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s)", e.Field)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the failure category and the underlying cause.
func (e *ExtractError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// ReasonName returns the snake_case name of the failure category wrapped by
// err, as used in log entries. Unknown errors map to "error".
func ReasonName(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrParse):
		return "parse_error"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
