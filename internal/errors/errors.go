package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error names, mirrored by clients in error.name
const (
	ErrNameValidation         = "ValidationError"
	ErrNameUnauthorized       = "UnauthorizedError"
	ErrNameForbidden          = "ForbiddenError"
	ErrNameNotFound           = "NotFoundError"
	ErrNameConflict           = "ConflictError"
	ErrNameRateLimit          = "RateLimitError"
	ErrNameApplication        = "ApplicationError"
	ErrNameServiceUnavailable = "ServiceUnavailableError"
)

// APIError represents a standardized API error
type APIError struct {
	Status  int         `json:"status"`
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Envelope is the body of every error response.
type Envelope struct {
	Data  interface{} `json:"data"`
	Error *APIError   `json:"error"`
}

// NewAPIError creates a new APIError
func NewAPIError(status int, name, message string) *APIError {
	return &APIError{
		Status:  status,
		Name:    name,
		Message: message,
		Details: gin.H{},
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(status int, name, message string, details interface{}) *APIError {
	return &APIError{
		Status:  status,
		Name:    name,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response and aborts the handler chain
func RespondWithError(c *gin.Context, err *APIError) {
	c.AbortWithStatusJSON(err.Status, Envelope{Data: nil, Error: err})
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Missing or invalid credentials"
	}
	RespondWithError(c, NewAPIError(http.StatusUnauthorized, ErrNameUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondWithError(c, NewAPIError(http.StatusForbidden, ErrNameForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Not Found"
	}
	RespondWithError(c, NewAPIError(http.StatusNotFound, ErrNameNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrNameValidation, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, NewAPIErrorWithDetails(http.StatusBadRequest, ErrNameValidation, message, details))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, NewAPIError(http.StatusConflict, ErrNameConflict, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests, please try again later."
	}
	RespondWithError(c, NewAPIError(http.StatusTooManyRequests, ErrNameRateLimit, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal Server Error"
	}
	RespondWithError(c, NewAPIError(http.StatusInternalServerError, ErrNameApplication, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, NewAPIError(http.StatusServiceUnavailable, ErrNameServiceUnavailable, message))
}
