package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/auth"
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
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeHandleExists       = "HANDLE_EXISTS"
	CodeOwnGame            = "OWN_GAME"
	CodeGameNotOpen        = "GAME_NOT_OPEN"
	CodeGameNotInProgress  = "GAME_NOT_IN_PROGRESS"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
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

// StatusOf returns the HTTP status an error maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation
	case errors.Is(err, model.ErrInvalidInput):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, invalidInputMessage(err)}}

	// Not found
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}

	// Conflict
	case errors.Is(err, model.ErrHandleExists):
		return &httpError{http.StatusBadRequest, APIError{CodeHandleExists, "Handle already exists"}}
	case errors.Is(err, model.ErrOwnGame):
		return &httpError{http.StatusBadRequest, APIError{CodeOwnGame, "You cannot join your own game"}}

	// State
	case errors.Is(err, model.ErrGameNotOpen):
		return &httpError{http.StatusBadRequest, APIError{CodeGameNotOpen, "Game is not open for joining"}}
	case errors.Is(err, model.ErrGameNotInProgress):
		return &httpError{http.StatusBadRequest, APIError{CodeGameNotInProgress, "Game is not in progress"}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid handle or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// invalidInputMessage returns the detail a service attached to ErrInvalidInput,
// e.g. "Password must be at most 72 bytes"
func invalidInputMessage(err error) string {
	detail := strings.TrimPrefix(err.Error(), model.ErrInvalidInput.Error())
	detail = strings.TrimSpace(strings.TrimPrefix(detail, ":"))
	if detail == "" || detail == err.Error() {
		return "Invalid input"
	}
	return strings.ToUpper(detail[:1]) + detail[1:]
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
