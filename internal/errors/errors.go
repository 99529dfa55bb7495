package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// ValidationError signals a request that is malformed at the domain level
// (bad time range, unknown vehicle type, missing fields). Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError signals a missing lot, slot or booking.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Entity, e.ID)
}

func NewNotFound(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// Transition sub-reasons for InvalidTransition failures.
const (
	ReasonNotYetStarted  = "not_yet_started"
	ReasonExpired        = "expired"
	ReasonAlreadyUsed    = "already_used"
	ReasonNotConfirmed   = "not_confirmed"
	ReasonNotCancellable = "not_cancellable"
	ReasonNotActive      = "not_active"
	ReasonIllegalTarget  = "illegal_target"
)

// TransitionError signals a booking state change that the lifecycle state
// machine does not permit. Reason is one of the Reason* constants.
type TransitionError struct {
	Reason string
	Msg    string
}

func (e *TransitionError) Error() string { return e.Msg }

func NewTransition(reason, format string, args ...interface{}) *TransitionError {
	return &TransitionError{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failure from the backing store or another
// external collaborator. Write paths propagate it, the availability read
// path degrades instead.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func NewCollaborator(op string, err error) *CollaboratorError {
	return &CollaboratorError{Op: op, Err: err}
}

// QR token failures, surfaced by the codec.
var (
	ErrMalformedToken = stderrors.New("malformed qr token")
	ErrTokenExpired   = stderrors.New("qr token expired")
)

// HTTPStatus maps a domain failure to the status code it should surface as.
func HTTPStatus(err error) int {
	var (
		httpErr       *HTTPError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		transitionErr *TransitionError
	)
	switch {
	case stderrors.As(err, &httpErr):
		return httpErr.Code
	case stderrors.As(err, &validationErr):
		return http.StatusBadRequest
	case stderrors.As(err, &notFoundErr):
		return http.StatusNotFound
	case stderrors.As(err, &transitionErr):
		return http.StatusConflict
	case stderrors.Is(err, ErrMalformedToken), stderrors.Is(err, ErrTokenExpired):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)
