package processing

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a processing failure.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindFormSubmission
	KindValidation
	KindNotFound
	KindConfiguration
	KindWorkflow
)

var kindMeta = map[Kind]struct {
	status int
	label  string
}{
	KindInvalidRequest: {http.StatusBadRequest, "Invalid request"},
	KindFormSubmission: {http.StatusBadRequest, "Form submission error"},
	KindValidation:     {http.StatusBadRequest, "Validation error"},
	KindNotFound:       {http.StatusNotFound, "Not found"},
	KindConfiguration:  {http.StatusInternalServerError, "Configuration error"},
	KindWorkflow:       {http.StatusInternalServerError, "Workflow processing error"},
	KindInternal:       {http.StatusInternalServerError, "Internal server error"},
}

// Status returns the HTTP-style status for the kind.
func (k Kind) Status() int {
	if meta, ok := kindMeta[k]; ok {
		return meta.status
	}
	return http.StatusInternalServerError
}

// String returns the external error type label.
func (k Kind) String() string {
	if meta, ok := kindMeta[k]; ok {
		return meta.label
	}
	return kindMeta[KindInternal].label
}

// Error is the tagged failure crossing from a processor to the dispatcher.
// Message is safe to show callers when Status is below 500.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// NewError constructs a processing error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Errorf constructs a processing error with a formatted message and no cause.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String() + ": " + e.Message + ": " + e.Cause.Error()
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the status for the error's kind.
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Type returns the external error type label.
func (e *Error) Type() string {
	return e.Kind.String()
}

// AsError extracts a *Error from err. Any other error is reported as an
// internal error wrapping err.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	return NewError(KindInternal, "unexpected error", err)
}
