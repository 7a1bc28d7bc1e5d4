package cronspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	t.Run("Should describe common schedule shapes", func(t *testing.T) {
		cases := map[string]string{
			"0 0 * * *": "Runs daily at midnight (00:00)",
			"0 * * * *": "Runs hourly at the start of each hour",
			"0 0 * * 0": "Runs weekly on Sunday at midnight (00:00)",
			"0 0 1 * *": "Runs monthly on the 1st at midnight (00:00)",
			"0 0 1 1 *": "Runs yearly on January 1st at midnight (00:00)",
		}
		for expr, want := range cases {
			assert.Equal(t, want, Describe(expr), "expression %q", expr)
		}
	})
	t.Run("Should describe weekday schedules with the time", func(t *testing.T) {
		assert.Equal(t, "Runs on weekdays (Monday-Friday) at 9:0", Describe("0 9 * * 1-5"))
		assert.Equal(t, "Runs on weekdays (Monday-Friday) at 9:30", Describe("30 9 * * MON-FRI"))
	})
	t.Run("Should fall back to a generic description", func(t *testing.T) {
		assert.Equal(t, "Runs according to cron schedule: */7 3 * * *", Describe("*/7 3 * * *"))
	})
	t.Run("Should flag wrong field counts", func(t *testing.T) {
		assert.Equal(t, "Invalid cron expression", Describe("0 0 *"))
		assert.Equal(t, "Invalid cron expression", Describe(""))
	})
}
