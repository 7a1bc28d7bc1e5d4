package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/pkg/logger"
)

// Response is the envelope used by every API endpoint.
type Response struct {
	Status  int        `json:"status"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo carries the error payload of a failed request.
type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondOK writes a 200 response with the standard envelope.
func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// RespondCreated writes a 201 response with the standard envelope.
func RespondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Response{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// RespondNoContent writes an empty 204 response.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondWithError writes an error response. The underlying error is
// logged but never exposed to the client.
func RespondWithError(c *gin.Context, statusCode int, reqErr *RequestError) {
	log := logger.FromContext(c.Request.Context())
	if reqErr.Err != nil {
		log.Error("request failed",
			"path", c.FullPath(),
			"status", statusCode,
			"reason", reqErr.Reason,
			"error", reqErr.Err,
		)
	}
	c.JSON(statusCode, Response{
		Status: statusCode,
		Error: &ErrorInfo{
			Code:    codeForStatus(statusCode),
			Message: reqErr.Reason,
		},
	})
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusBadRequest:
		return ErrBadRequestCode
	case http.StatusUnauthorized:
		return ErrUnauthorizedCode
	case http.StatusForbidden:
		return ErrForbiddenCode
	case http.StatusNotFound:
		return ErrNotFoundCode
	case http.StatusConflict:
		return ErrConflictCode
	case http.StatusRequestTimeout:
		return ErrRequestTimeoutCode
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailableCode
	default:
		return ErrInternalCode
	}
}
