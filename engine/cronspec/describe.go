package cronspec

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable summary of when a cron expression fires.
// Common shapes get a fixed phrase; anything else falls back to a generic
// description around the raw expression.
func Describe(expr string) string {
	fields := strings.Fields(strings.TrimSpace(expr))
	if len(fields) != FieldCount {
		return "Invalid cron expression"
	}
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	switch {
	case minute == "0" && hour == "0" && dom == "*" && month == "*" && dow == "*":
		return "Runs daily at midnight (00:00)"
	case minute == "0" && hour == "*" && dom == "*" && month == "*" && dow == "*":
		return "Runs hourly at the start of each hour"
	case minute == "0" && hour == "0" && dom == "*" && month == "*" && dow == "0":
		return "Runs weekly on Sunday at midnight (00:00)"
	case minute == "0" && hour == "0" && dom == "1" && month == "*" && dow == "*":
		return "Runs monthly on the 1st at midnight (00:00)"
	case minute == "0" && hour == "0" && dom == "1" && month == "1" && dow == "*":
		return "Runs yearly on January 1st at midnight (00:00)"
	}

	if dow == "1-5" || strings.EqualFold(dow, "MON-FRI") {
		return fmt.Sprintf("Runs on weekdays (Monday-Friday) at %s:%s", hour, minute)
	}

	return fmt.Sprintf("Runs according to cron schedule: %s", expr)
}
