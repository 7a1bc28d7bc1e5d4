package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/core"
)

// Error codes
const (
	ErrInternalCode           = "INTERNAL_ERROR"
	ErrBadRequestCode         = "BAD_REQUEST"
	ErrUnauthorizedCode       = "UNAUTHORIZED"
	ErrForbiddenCode          = "FORBIDDEN"
	ErrNotFoundCode           = "NOT_FOUND"
	ErrConflictCode           = "CONFLICT"
	ErrRequestTimeoutCode     = "REQUEST_TIMEOUT"
	ErrServiceUnavailableCode = "SERVICE_UNAVAILABLE"
)

// RequestError represents errors that can occur during request handling
type RequestError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError
func NewRequestError(statusCode int, reason string, err error) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Reason:     reason,
		Err:        err,
	}
}

// GetWorkflowID extracts and validates the workflow_id path parameter.
// It responds with 400 and returns the zero ID when the parameter is
// missing or malformed.
func GetWorkflowID(c *gin.Context) core.ID {
	raw := c.Param("workflow_id")
	id, err := core.ParseID(raw)
	if err != nil {
		RespondWithError(c, http.StatusBadRequest, NewRequestError(
			http.StatusBadRequest,
			"invalid workflow ID",
			err,
		))
		return ""
	}
	return id
}
