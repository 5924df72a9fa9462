// Package apperrors defines the error taxonomy for the analysis API.
// Errors carry a Kind that classifies them for the error metric and for the
// HTTP status mapping; the mapping itself happens only at the response
// boundary.
package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies an error. The string value doubles as the error_type
// label on http_errors_total.
type Kind string

const (
	// KindValidation marks malformed or out-of-bounds input rejected before
	// any engine runs.
	KindValidation Kind = "ValidationError"

	// KindAdmission marks requests rejected because the service is draining
	// or stopped.
	KindAdmission Kind = "AdmissionRejected"

	// KindComputation marks unexpected failures inside the analysis engines.
	KindComputation Kind = "ComputationError"

	// KindInternal marks any other unhandled failure in the pipeline.
	KindInternal Kind = "InternalError"
)

func (k Kind) String() string { return string(k) }

// Error is the concrete classified error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a ValidationError.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Admission builds an AdmissionRejected error.
func Admission(message string) *Error {
	return &Error{Kind: KindAdmission, Message: message}
}

// Computation wraps an engine failure.
func Computation(message string, err error) *Error {
	return &Error{Kind: KindComputation, Message: message, Err: err}
}

// Internal wraps an unhandled failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the kind carried by err. Unclassified errors count as
// internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAdmission:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
