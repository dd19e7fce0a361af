package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthyrecipes/backend/internal/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatusFor maps the service error taxonomy onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func responseFor(err error) ErrorResponse {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return ErrorResponse{Error: verr.Error(), Field: verr.Field}
	}

	var mErr *messageError
	if errors.As(err, &mErr) {
		return ErrorResponse{Error: mErr.msg}
	}

	switch StatusFor(err) {
	case http.StatusUnauthorized:
		return ErrorResponse{Error: "unauthenticated"}
	case http.StatusBadRequest:
		return ErrorResponse{Error: err.Error()}
	case http.StatusForbidden:
		return ErrorResponse{Error: "forbidden"}
	case http.StatusNotFound:
		return ErrorResponse{Error: "not found"}
	case http.StatusServiceUnavailable:
		return ErrorResponse{Error: "service temporarily unavailable"}
	default:
		return ErrorResponse{Error: "internal server error"}
	}
}

// RespondError records err on the context for the request logger and aborts with the mapped response.
// Internal details never reach the client.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(err), responseFor(err))
}

// BadRequest reports a malformed body or parameter as a validation failure
func BadRequest(c *gin.Context, field, message string) {
	RespondError(c, &service.ValidationError{Field: field, Message: message})
}

// ErrorHandler renders errors attached with c.Error when the handler wrote no response
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		c.JSON(StatusFor(err), responseFor(err))
	}
}

// messageError keeps the sentinel for status mapping but supplies its own client message
type messageError struct {
	err error
	msg string
}

func (e *messageError) Error() string { return fmt.Sprintf("%v: %s", e.err, e.msg) }

func (e *messageError) Unwrap() error { return e.err }

func withMessage(err error, msg string) error {
	return &messageError{err: err, msg: msg}
}
