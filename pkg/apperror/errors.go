package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal server error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrUnavailable       = errors.New("service unavailable")
)

// Kind classifies an error for transport. The zero value is KindInternal so an
// unclassified failure never leaks as a client error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AppError carries a kind, a user-facing message and the underlying cause.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(kind Kind, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) error {
	return New(KindValidation, message, ErrInvalidInput)
}

func BadRequest(message string) error {
	return New(KindBadRequest, message, ErrBadRequest)
}

func Unauthorized(message string) error {
	return New(KindUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) error {
	return New(KindForbidden, message, ErrForbidden)
}

func NotFound(message string) error {
	return New(KindNotFound, message, ErrNotFound)
}

func RateLimited(message string) error {
	return New(KindRateLimited, message, ErrRateLimitExceeded)
}

// Unavailable reports a dependency that is not configured or not reachable.
func Unavailable(message string, cause error) error {
	if cause == nil {
		cause = ErrUnavailable
	}
	return New(KindUnavailable, message, cause)
}

// Internal wraps a storage or unexpected failure. message is shown to the
// client; cause is only logged.
func Internal(message string, cause error) error {
	if cause == nil {
		cause = ErrInternal
	}
	return New(KindInternal, message, cause)
}

// KindOf resolves the kind of any error, falling back to the sentinel errors
// for code that does not construct an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrRateLimitExceeded):
		return KindRateLimited
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	}
	return KindInternal
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	return KindOf(err).Status()
}

// MessageOf returns the message safe to show to a client.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if KindOf(err) == KindInternal {
		return "Error interno del servidor"
	}
	return err.Error()
}
