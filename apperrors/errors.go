// Package apperrors defines the error taxonomy of the dashboard client:
// transport failures, validation failures (client or server side) and
// authorization mismatches.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrForbidden          = errors.New("action not permitted for this identity")
	ErrRejected           = errors.New("backend refused the request")
	ErrEmptyResponse      = errors.New("backend returned an empty response")
	ErrMalformedResponse  = errors.New("backend response could not be decoded")
	ErrBackendUnavailable = errors.New("backend temporarily unavailable")
	ErrNotFound           = errors.New("not found")
	ErrNoPendingDelete    = errors.New("no project awaiting delete confirmation")
	ErrDialogClosed       = errors.New("dialog is not open")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindValidation
	KindAuthorization
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	default:
		return "unknown"
	}
}

// APIError is a non-2xx answer from the REST backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: backend answered %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// TransportError is a request that never produced an HTTP answer.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FieldError is used to indicate an error with a specific form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is a client-side required-field failure. No request was sent.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Message returns the message for field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Classify maps err onto the error taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return KindAuthorization
		case apiErr.StatusCode >= 500:
			return KindTransport
		default:
			return KindValidation
		}
	}

	switch {
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrRejected), errors.Is(err, ErrInvalidCredentials):
		return KindAuthorization
	case errors.Is(err, ErrBackendUnavailable), errors.Is(err, ErrEmptyResponse):
		return KindTransport
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoPendingDelete), errors.Is(err, ErrDialogClosed):
		return KindValidation
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}
	return KindUnknown
}

// IsServerFailure reports whether err means the backend itself is unhealthy.
// 4xx answers and empty (null) answers are refusals, not outages. A body that
// does not decode is a data problem and does not count either.
func IsServerFailure(err error) bool {
	if err == nil || errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return Classify(err) == KindTransport || Classify(err) == KindUnknown
}

// UserMessage is the short text flashed to the user after a failed action.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "Please check the form: " + validationFieldList(validationErr)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return "Invalid username or password."
	}

	switch Classify(err) {
	case KindTransport:
		return "The server could not be reached. Please try again."
	case KindAuthorization:
		return "You are not allowed to do that."
	case KindValidation:
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Body != "" {
			return apiErr.Body
		}
		return "The request was not accepted."
	default:
		return "Something went wrong. Please try again."
	}
}

func validationFieldList(e *ValidationError) string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return strings.Join(parts, "; ") + "."
}
