package api

import (
	"net/http"

	"tutorconnect/internal/apperr"
	"tutorconnect/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes err as JSON and aborts the chain. Internal errors are
// logged and replaced by a generic message.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	if kind == apperr.KindInternal {
		logger.Error("request failed",
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString("request_id"),
		)
		c.AbortWithStatusJSON(status, ErrorResponse{Message: apperr.Message(err)})
		return
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Message: apperr.Message(err),
		Errors:  apperr.FieldsOf(err),
	})
}

// BadRequest reports a malformed body that never reached validation.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: message})
}
