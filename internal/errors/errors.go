package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of every error body.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the JSON body of an error response.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

type kind struct {
	status   int
	code     string
	fallback string
}

var (
	unauthorized       = kind{http.StatusUnauthorized, ErrCodeUnauthorized, "Authentication required"}
	forbidden          = kind{http.StatusForbidden, ErrCodeForbidden, "Access denied"}
	badRequest         = kind{http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request"}
	notFound           = kind{http.StatusNotFound, ErrCodeNotFound, "Resource not found"}
	conflict           = kind{http.StatusConflict, ErrCodeConflict, "Resource conflict"}
	invalidState       = kind{http.StatusConflict, ErrCodeInvalidState, "Operation not allowed in current state"}
	internalError      = kind{http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"}
	serviceUnavailable = kind{http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service temporarily unavailable"}
)

// abort writes the error body and stops the handler chain.
func (k kind) abort(c *gin.Context, message string, details map[string]string) {
	if message == "" {
		message = k.fallback
	}
	c.AbortWithStatusJSON(k.status, &APIError{Code: k.code, Message: message, Details: details})
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) { unauthorized.abort(c, message, nil) }

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) { forbidden.abort(c, message, nil) }

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) { notFound.abort(c, message, nil) }

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) { badRequest.abort(c, message, nil) }

// BadRequestWithDetails sends a 400 response naming the offending fields.
func BadRequestWithDetails(c *gin.Context, message string, details map[string]string) {
	badRequest.abort(c, message, details)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) { conflict.abort(c, message, nil) }

// InvalidState sends a 409 response for operations the resource's current
// state does not allow.
func InvalidState(c *gin.Context, message string) { invalidState.abort(c, message, nil) }

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) { internalError.abort(c, message, nil) }

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) { serviceUnavailable.abort(c, message, nil) }
