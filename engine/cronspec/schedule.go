package cronspec

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule parses expr into a cron.Schedule evaluated in the given timezone.
// An empty timezone defaults to UTC.
func Schedule(expr, timezone string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("cron expression is required")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if err := ValidateTimezone(timezone); err != nil {
		return nil, err
	}
	sched, err := cron.ParseStandard("CRON_TZ=" + timezone + " " + expr)
	if err != nil {
		return nil, fmt.Errorf("cron expression is invalid: %w", err)
	}
	return sched, nil
}

// NextRun returns the next activation of expr in the given timezone strictly
// after the given time.
func NextRun(expr, timezone string, after time.Time) (time.Time, error) {
	sched, err := Schedule(expr, timezone)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(after), nil
}
