package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/findmepls/catalog/internal/errors"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeNoMatches      ErrorCode = "NO_MATCHES"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidJSON    ErrorCode = "INVALID_JSON"

	// Server Error Codes (5xx)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	c.JSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// SendInvalidJSONError sends a standardized invalid JSON error
func SendInvalidJSONError(c *gin.Context, err error) {
	SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON,
		"Invalid JSON in request body: "+err.Error())
}

// SendServiceError maps a service error to the matching HTTP response.
func SendServiceError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNoMatches):
		SendError(c, http.StatusNotFound, ErrorCodeNoMatches, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		SendError(c, http.StatusNotFound, ErrorCodeNotFound, err.Error())
	case errors.Is(err, apperrors.ErrAlreadyExists):
		SendError(c, http.StatusConflict, ErrorCodeAlreadyExists, err.Error())
	case errors.Is(err, apperrors.ErrInvalidInput):
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, ErrorCodeInternalError,
			"Internal error during "+operation+": "+err.Error())
	}
}
