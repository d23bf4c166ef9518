package errors

import (
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// LoomError is a structured error with an error code, engine context, and
// a fix suggestion. Fatal engine contract breaches panic with a *LoomError
// so the code and the offending node survive into crash reports.
type LoomError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (runtime, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Node is the mounted node the error concerns, if any (0 = unset).
	Node uint64

	// Slot is the hook slot index the error concerns (-1 = unset).
	Slot int

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LoomError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("[LOOM %s] %s", e.Code, e.Message)
	}
	switch {
	case e.Node != 0 && e.Slot >= 0:
		return fmt.Sprintf("%s (node %d, slot %d)", msg, e.Node, e.Slot)
	case e.Node != 0:
		return fmt.Sprintf("%s (node %d)", msg, e.Node)
	default:
		return msg
	}
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LoomError) Unwrap() error {
	return e.Wrapped
}

// WithNode records the mounted node the error concerns.
func (e *LoomError) WithNode(id uint64) *LoomError {
	e.Node = id
	return e
}

// WithSlot records the hook slot index the error concerns.
func (e *LoomError) WithSlot(idx int) *LoomError {
	e.Slot = idx
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LoomError) WithDetail(format string, args ...any) *LoomError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LoomError) WithSuggestion(s string) *LoomError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *LoomError) Wrap(err error) *LoomError {
	e.Wrapped = err
	return e
}

// New creates a LoomError from a registered error code.
func New(code string) *LoomError {
	template, ok := registry[code]
	if !ok {
		return &LoomError{
			Code:    code,
			Message: "Unknown error",
			Slot:    -1,
		}
	}
	return &LoomError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
		Slot:     -1,
	}
}

// Newf creates a new LoomError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *LoomError {
	return &LoomError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Slot:     -1,
	}
}

// FromError wraps a standard error in a LoomError.
func FromError(err error, code string) *LoomError {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LoomError); ok {
		return le
	}
	return New(code).Wrap(err)
}
