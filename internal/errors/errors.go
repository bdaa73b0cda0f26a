package errors

import "net/http"

// APIError is the error type every handler returns to the error
// middleware. Status maps directly to the HTTP response code, Message
// is the client-visible reason, Internal carries the wrapped cause for
// operator logs only.
type APIError struct {
	Status   int    `json:"-"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *APIError) Unwrap() error {
	return e.Internal
}

// New creates a new API error
func New(status int, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Message:  message,
		Internal: err,
	}
}

func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return New(http.StatusUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return New(http.StatusForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return New(http.StatusNotFound, message, err)
}

func Internal(err error) *APIError {
	return New(http.StatusInternalServerError, "internal", err)
}

// NewValidationError wraps a gin binding failure as a 400
func NewValidationError(err error) *APIError {
	return BadRequest("invalid request body", err)
}
