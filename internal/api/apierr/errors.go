package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/tourneybot/internal/model"
	"github.com/mcoot/tourneybot/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeInvalidEvent    = "INVALID_EVENT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeAdminDisabled   = "ADMIN_DISABLED"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeSnapshotExists  = "SNAPSHOT_EXISTS"
	CodeStoreLocked     = "STORE_LOCKED"
	CodePersistFailed   = "PERSIST_FAILED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrUnknownEvent):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEvent, "Event kind must be start, select or text"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "No conversation in progress"}}
	case errors.Is(err, model.ErrSnapshotExists):
		return &httpError{http.StatusConflict, APIError{CodeSnapshotExists, "A snapshot was already taken this second"}}
	case errors.Is(err, model.ErrStoreLocked):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreLocked, "Stores are locked by another process"}}
	case errors.Is(err, model.ErrIncompleteRegistration):
		return &httpError{http.StatusInternalServerError, APIError{CodePersistFailed, "Registration could not be saved"}}

	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid admin token"}}
	case errors.Is(err, auth.ErrAdminDisabled):
		return &httpError{http.StatusForbidden, APIError{CodeAdminDisabled, "Admin access is not configured"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
