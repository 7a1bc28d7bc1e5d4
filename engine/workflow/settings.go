package workflow

import (
	"fmt"

	"github.com/taskweave/taskweave/engine/cronspec"
)

// ScheduleSettings is the schedule-relevant slice of a workflow, as read and
// written by the console's schedule form.
type ScheduleSettings struct {
	CronSchedule *string `json:"cron_schedule"`
	CronEnabled  bool    `json:"cron_enabled"`
	Timezone     string  `json:"timezone"`
}

// Normalize fills in defaults without touching set values.
func (s *ScheduleSettings) Normalize() {
	if s.Timezone == "" {
		s.Timezone = DefaultTimezone
	}
	if s.CronSchedule != nil && *s.CronSchedule == "" {
		s.CronSchedule = nil
	}
}

// Validate checks the settings for storage. The cron expression is validated
// whenever present; enabling the schedule additionally requires one.
func (s *ScheduleSettings) Validate() error {
	if s.CronEnabled && (s.CronSchedule == nil || *s.CronSchedule == "") {
		return fmt.Errorf("%w: cron schedule is required when cron is enabled", ErrInvalidSchedule)
	}
	if s.CronSchedule != nil && *s.CronSchedule != "" {
		if err := cronspec.Validate(*s.CronSchedule); err != nil {
			return fmt.Errorf("%w: invalid cron expression: %v", ErrInvalidSchedule, err)
		}
	}
	if s.Timezone != "" {
		if err := cronspec.ValidateTimezone(s.Timezone); err != nil {
			return fmt.Errorf("%w: invalid timezone: %v", ErrInvalidSchedule, err)
		}
	}
	return nil
}
