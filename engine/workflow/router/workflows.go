package wfrouter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/infra/server/router"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/pkg/logger"
)

// Handler serves workflow CRUD endpoints.
type Handler struct {
	repo workflow.Repository
}

// NewHandler creates a workflow handler.
func NewHandler(repo workflow.Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateWorkflowRequest is the payload for creating a workflow.
type CreateWorkflowRequest struct {
	Name        string `json:"name"        binding:"required"`
	Description string `json:"description"`
	WebhookURL  string `json:"webhook_url"`
	MaxSteps    int    `json:"max_steps"`
}

// WorkflowListResponse is the payload of the workflow list endpoint.
type WorkflowListResponse struct {
	Workflows []*workflow.Workflow `json:"workflows"`
	Total     int                  `json:"total"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

// listWorkflows returns workflows ordered by creation time.
func (h *Handler) listWorkflows(c *gin.Context) {
	limit := router.LimitOrDefault(c.Query("limit"), 50, 200)
	offset := router.OffsetOrDefault(c.Query("offset"))
	workflows, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to list workflows",
			err,
		))
		return
	}
	router.RespondOK(c, "workflows retrieved", WorkflowListResponse{
		Workflows: workflows,
		Total:     len(workflows),
		Limit:     limit,
		Offset:    offset,
	})
}

// createWorkflow creates a new workflow without a schedule.
func (h *Handler) createWorkflow(c *gin.Context) {
	var req CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			"invalid request body",
			err,
		))
		return
	}
	wf, err := workflow.New(req.Name)
	if err != nil {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			err.Error(),
			err,
		))
		return
	}
	wf.Description = req.Description
	wf.WebhookURL = req.WebhookURL
	wf.MaxSteps = req.MaxSteps
	if err := wf.Validate(); err != nil {
		router.RespondWithError(c, http.StatusBadRequest, router.NewRequestError(
			http.StatusBadRequest,
			err.Error(),
			err,
		))
		return
	}
	if err := h.repo.Create(c.Request.Context(), wf); err != nil {
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to create workflow",
			err,
		))
		return
	}
	logger.FromContext(c.Request.Context()).Info("workflow created",
		"workflow_id", wf.ID, "name", wf.Name)
	router.RespondCreated(c, "workflow created", wf)
}

// getWorkflow returns a single workflow by ID.
func (h *Handler) getWorkflow(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	wf, err := h.repo.GetByID(c.Request.Context(), workflowID)
	if err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			router.RespondWithError(c, http.StatusNotFound, router.NewRequestError(
				http.StatusNotFound,
				"workflow not found",
				err,
			))
			return
		}
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to get workflow",
			err,
		))
		return
	}
	router.RespondOK(c, "workflow retrieved", wf)
}

// deleteWorkflow soft-deletes a workflow.
func (h *Handler) deleteWorkflow(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), workflowID); err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			router.RespondWithError(c, http.StatusNotFound, router.NewRequestError(
				http.StatusNotFound,
				"workflow not found",
				err,
			))
			return
		}
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to delete workflow",
			err,
		))
		return
	}
	logger.FromContext(c.Request.Context()).Info("workflow deleted", "workflow_id", workflowID)
	router.RespondNoContent(c)
}

// listWorkflowRuns returns the most recent runs of a workflow.
func (h *Handler) listWorkflowRuns(c *gin.Context) {
	workflowID := router.GetWorkflowID(c)
	if workflowID == "" {
		return
	}
	limit := router.LimitOrDefault(c.Query("limit"), 20, 100)
	runs, err := h.repo.ListRuns(c.Request.Context(), workflowID, limit)
	if err != nil {
		router.RespondWithError(c, http.StatusInternalServerError, router.NewRequestError(
			http.StatusInternalServerError,
			"failed to list workflow runs",
			err,
		))
		return
	}
	router.RespondOK(c, "workflow runs retrieved", gin.H{
		"runs":  runs,
		"total": len(runs),
	})
}
