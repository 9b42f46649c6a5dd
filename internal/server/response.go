package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hitensaxena/pathfinder/internal/app"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/video"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

// statusFor maps an error to its HTTP status. Generation is checked first:
// a quiz that fails post-validation is a GenerationError wrapping a
// ValidationError and is the model's fault, not the caller's.
func statusFor(err error) int {
	var gen *learning.GenerationError
	switch {
	case errors.As(err, &gen):
		if gen.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.Is(err, app.ErrLLMUnavailable), errors.Is(err, video.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case learning.IsNotFound(err), errors.Is(err, video.ErrNoResults):
		return http.StatusNotFound
	case learning.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error response. Internal errors are logged and
// their detail withheld from the client.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var ve *learning.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &ve) {
		body.Field = ve.Field
		if ve.Index >= 0 {
			idx := ve.Index
			body.Index = &idx
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", c.Request.Method, "route", c.FullPath(), "status", status, "error", err)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	c.AbortWithStatusJSON(status, body)
}
