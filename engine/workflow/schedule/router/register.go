package schedulerouter

import (
	"github.com/gin-gonic/gin"
	"github.com/taskweave/taskweave/engine/workflow/schedule"
)

// Register registers all schedule-related routes
func Register(apiBase *gin.RouterGroup, manager schedule.Manager) {
	h := NewHandler(manager)

	// GET /api/v1/schedules
	// List all scheduled workflows
	apiBase.GET("/schedules", h.listSchedules)

	scheduleGroup := apiBase.Group("/workflows/:workflow_id/schedule")
	{
		// GET /api/v1/workflows/:workflow_id/schedule
		scheduleGroup.GET("", h.getSchedule)

		// PUT /api/v1/workflows/:workflow_id/schedule
		// Replace the schedule
		scheduleGroup.PUT("", h.setSchedule)

		// PATCH /api/v1/workflows/:workflow_id/schedule
		// Partial update (enable/disable, cron, timezone)
		scheduleGroup.PATCH("", h.updateSchedule)

		// DELETE /api/v1/workflows/:workflow_id/schedule
		scheduleGroup.DELETE("", h.deleteSchedule)
	}
}
