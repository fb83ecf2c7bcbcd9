package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountInactive    = "ACCOUNT_INACTIVE"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the body of every failed response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

type failure struct {
	status         int
	defaultMessage string
}

// Duplicate unique fields answer 400 like any other validation failure.
var failures = map[string]failure{
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "Authentication required"},
	ErrCodeInvalidCredentials: {http.StatusBadRequest, "Invalid credentials"},
	ErrCodeAccountInactive:    {http.StatusUnauthorized, "Account is inactive"},
	ErrCodeForbidden:          {http.StatusForbidden, "Access denied"},
	ErrCodeInvalidInput:       {http.StatusBadRequest, "Invalid request"},
	ErrCodeNotFound:           {http.StatusNotFound, "Resource not found"},
	ErrCodeAlreadyExists:      {http.StatusBadRequest, "Resource already exists"},
	ErrCodeInternalError:      {http.StatusInternalServerError, "Internal server error"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

// StatusFor returns the HTTP status used for code, or 500 for unknown codes.
func StatusFor(code string) int {
	if f, ok := failures[code]; ok {
		return f.status
	}
	return http.StatusInternalServerError
}

// Respond aborts the handler chain with the status registered for code.
// An empty message is replaced by the code's default.
func Respond(c *gin.Context, code, message string) {
	if message == "" {
		message = failures[code].defaultMessage
	}
	c.AbortWithStatusJSON(StatusFor(code), &APIError{Code: code, Message: message})
}

func Unauthorized(c *gin.Context, message string) { Respond(c, ErrCodeUnauthorized, message) }

// InvalidCredentials is a failed login.
func InvalidCredentials(c *gin.Context, message string) {
	Respond(c, ErrCodeInvalidCredentials, message)
}

func AccountInactive(c *gin.Context, message string) { Respond(c, ErrCodeAccountInactive, message) }

func Forbidden(c *gin.Context, message string) { Respond(c, ErrCodeForbidden, message) }

func NotFound(c *gin.Context, message string) { Respond(c, ErrCodeNotFound, message) }

func BadRequest(c *gin.Context, message string) { Respond(c, ErrCodeInvalidInput, message) }

func Conflict(c *gin.Context, message string) { Respond(c, ErrCodeAlreadyExists, message) }

// InternalError surfaces message to the caller as is.
func InternalError(c *gin.Context, message string) { Respond(c, ErrCodeInternalError, message) }

func ServiceUnavailable(c *gin.Context, message string) {
	Respond(c, ErrCodeServiceUnavailable, message)
}
