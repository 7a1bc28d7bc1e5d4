package schedulerouter

import "github.com/taskweave/taskweave/engine/workflow/schedule"

// ScheduleListResponse is the payload of the schedule list endpoint.
type ScheduleListResponse struct {
	Schedules []*schedule.Info `json:"schedules"`
	Total     int              `json:"total"`
}
