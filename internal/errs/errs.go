// Package errs defines the structured error type shared by every component.
// Components return these errors instead of terminating the process; only the
// command entry point decides the exit code.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error by what went wrong, not where.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindCommand      Kind = "command"
	KindIO           Kind = "io"
	KindNetwork      Kind = "network"
	KindPrecondition Kind = "precondition"
	KindInternal     Kind = "internal"
)

// Error carries a user-facing message alongside machine-readable context.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error

	// LogFile is the path of a written error log, if any.
	LogFile string

	Context map[string]interface{}
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// NewValidation reports invalid user input or state the user can fix.
func NewValidation(code, message string) *Error {
	return newError(KindValidation, code, message, nil)
}

// NewPrecondition reports a missing prerequisite for an operation.
func NewPrecondition(code, message string) *Error {
	return newError(KindPrecondition, code, message, nil)
}

// NewCommand reports a failed external command.
func NewCommand(code, message string, cause error) *Error {
	return newError(KindCommand, code, message, cause)
}

// NewIO reports a filesystem failure.
func NewIO(code, message string, cause error) *Error {
	return newError(KindIO, code, message, cause)
}

// NewNetwork reports a failure talking to a remote service.
func NewNetwork(code, message string, cause error) *Error {
	return newError(KindNetwork, code, message, cause)
}

// NewInternal reports a bug or an unexpected state.
func NewInternal(code, message string, cause error) *Error {
	return newError(KindInternal, code, message, cause)
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches two errors on kind and code, so callers can compare against a
// sentinel without caring about the formatted message.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind && e.Code == other.Code
}

// WithContext attaches a key/value pair for logging. Returns the receiver so
// calls can be chained.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithLogFile records the path of the error log written for this failure.
func (e *Error) WithLogFile(path string) *Error {
	e.LogFile = path
	return e
}

// UserMessage renders err for the terminal. Structured errors show their
// message and, when present, the error log location; anything else falls back
// to the plain error text.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.LogFile != "" {
		msg += fmt.Sprintf("\nDetailed error information saved to %s", e.LogFile)
	}
	return msg
}
