package wfrouter

import (
	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/workflow"
)

// Register registers all workflow-related routes
func Register(apiBase *gin.RouterGroup, repo workflow.Repository) {
	h := NewHandler(repo)

	workflowsGroup := apiBase.Group("/workflows")
	{
		// GET /api/v1/workflows
		workflowsGroup.GET("", h.listWorkflows)

		// POST /api/v1/workflows
		workflowsGroup.POST("", h.createWorkflow)

		// GET /api/v1/workflows/:workflow_id
		workflowsGroup.GET("/:workflow_id", h.getWorkflow)

		// DELETE /api/v1/workflows/:workflow_id
		workflowsGroup.DELETE("/:workflow_id", h.deleteWorkflow)

		// GET /api/v1/workflows/:workflow_id/runs
		workflowsGroup.GET("/:workflow_id/runs", h.listWorkflowRuns)
	}
}
