package schedulerouter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/infra/server/router"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/engine/workflow/schedule"
)

// Handler serves schedule endpoints.
type Handler struct {
	manager schedule.Manager
}

// NewHandler creates a schedule handler.
func NewHandler(manager schedule.Manager) *Handler {
	return &Handler{manager: manager}
}

// listSchedules returns every workflow that has a schedule configured.
func (h *Handler) listSchedules(c *gin.Context) {
	schedules, err := h.manager.ListSchedules(c.Request.Context())
	if err != nil {
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to list schedules",
			err,
		))
		return
	}
	router.RespondOK(c, "schedules retrieved", ScheduleListResponse{
		Schedules: schedules,
		Total:     len(schedules),
	})
}

// getSchedule returns the schedule of a single workflow.
func (h *Handler) getSchedule(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	info, err := h.manager.GetSchedule(c.Request.Context(), workflowID)
	if err != nil {
		respondScheduleError(c, "failed to get schedule", err)
		return
	}
	router.RespondOK(c, "schedule retrieved", info)
}

// setSchedule replaces the schedule of a workflow.
func (h *Handler) setSchedule(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	var req schedule.SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			"invalid request body",
			err,
		))
		return
	}
	info, err := h.manager.SetSchedule(c.Request.Context(), workflowID, req)
	if err != nil {
		respondScheduleError(c, "failed to set schedule", err)
		return
	}
	router.RespondOK(c, "schedule set", info)
}

// updateSchedule applies a partial update. At least one field must be
// present in the request body.
func (h *Handler) updateSchedule(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	var req schedule.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			"invalid request body",
			err,
		))
		return
	}
	if req.IsEmpty() {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			"at least one of 'enabled', 'cron' or 'timezone' is required",
			errors.New("request must contain at least one field to update"),
		))
		return
	}
	info, err := h.manager.UpdateSchedule(c.Request.Context(), workflowID, req)
	if err != nil {
		respondScheduleError(c, "failed to update schedule", err)
		return
	}
	router.RespondOK(c, "schedule updated", info)
}

// deleteSchedule clears the schedule of a workflow.
func (h *Handler) deleteSchedule(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	if err := h.manager.DeleteSchedule(c.Request.Context(), workflowID); err != nil {
		respondScheduleError(c, "failed to delete schedule", err)
		return
	}
	router.RespondNoContent(c)
}

// respondScheduleError maps domain errors to HTTP responses.
func respondScheduleError(c *gin.Context, fallback string, err error) {
	switch {
	case errors.Is(err, schedule.ErrScheduleNotFound):
		router.RespondWithError(c, http.StatusNotFound, router.NewRequestError(
			http.StatusNotFound, "schedule not found", err))
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		router.RespondWithError(c, http.StatusNotFound, router.NewRequestError(
			http.StatusNotFound, "workflow not found", err))
	case errors.Is(err, workflow.ErrInvalidSchedule):
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest, err.Error(), err))
	default:
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError, fallback, err))
	}
}
