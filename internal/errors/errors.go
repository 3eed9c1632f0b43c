package errors

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindTooManyRequests
)

var (
	// ErrUserNotFound is returned when a user cannot be resolved.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidResetToken is returned when a reset token does not match or has expired.
	ErrInvalidResetToken = errors.New("invalid or expired token")
	// ErrMailDelivery is returned when the mail dispatcher fails.
	ErrMailDelivery = errors.New("mail delivery failed")
	// ErrEmailTaken is returned when an email already belongs to another user.
	ErrEmailTaken = errors.New("email already registered")
	// ErrImageUpload is returned when the image store rejects an upload.
	ErrImageUpload = errors.New("image upload failed")
)

// Error is a domain error carrying its taxonomy kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Code: "VALIDATION_FAILED"}
}

// Conflict reports a uniqueness violation.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Code: "CONFLICT"}
}

// EmailTaken reports a registration or profile change onto an existing email.
func EmailTaken() *Error {
	err := Conflict("Email has already been registered")
	err.Code = "EMAIL_TAKEN"
	err.Err = ErrEmailTaken
	return err
}

// Authentication reports bad credentials presented to a public endpoint.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Code: "INVALID_CREDENTIALS"}
}

// Unauthorized reports a request without a usable session.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Code: "UNAUTHORIZED"}
}

// Forbidden reports access to a resource owned by someone else.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message, Code: "FORBIDDEN"}
}

// NotFound wraps a not-found sentinel with a client-facing message.
func NotFound(err error, message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Code: "NOT_FOUND", Err: err}
}

// TooManyRequests reports a throttled caller.
func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message, Code: "TOO_MANY_REQUESTS"}
}

// Internal wraps an unexpected failure; message is shown, err is only logged.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Code: "INTERNAL_ERROR", Err: err}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var statusByKind = map[Kind]int{
	KindValidation:      http.StatusBadRequest,
	KindConflict:        http.StatusBadRequest,
	KindAuthentication:  http.StatusBadRequest,
	KindUnauthorized:    http.StatusUnauthorized,
	KindForbidden:       http.StatusUnauthorized,
	KindNotFound:        http.StatusNotFound,
	KindTooManyRequests: http.StatusTooManyRequests,
	KindInternal:        http.StatusInternalServerError,
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		status, ok := statusByKind[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		return NewHTTPError(status, domainErr.Message, domainErr.Code)
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrInvalidResetToken):
		return NewHTTPError(http.StatusNotFound, "Invalid or Expired Token.", "INVALID_RESET_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Server error", "INTERNAL_ERROR")
	}
}
