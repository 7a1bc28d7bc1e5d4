// Package cronspec validates and interprets the five-field cron expressions
// and IANA timezone names used by workflow schedules.
package cronspec

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldCount is the number of fields in a standard cron expression
// (minute, hour, day-of-month, month, day-of-week).
const FieldCount = 5

// grammarField matches a single field of the quick grammar check: an
// asterisk, a non-negative integer, or a numeric range, each optionally
// followed by a /step suffix.
const grammarField = `(\*|\d+(-\d+)?)(/\d+)?`

var grammarPattern = regexp.MustCompile(`^` + grammarField + `(\s+` + grammarField + `){4}$`)

// IsValid reports whether expr matches the five-field cron grammar: five
// whitespace-separated fields, each an asterisk, an integer, or a range
// `a-b`, optionally followed by a step suffix `/n`. Leading and trailing
// whitespace is ignored.
//
// IsValid checks the grammar only; it does not enforce field value ranges
// (minute=99 passes) and does not accept name tokens or lists. Use Validate
// for field-aware checking.
func IsValid(expr string) bool {
	return grammarPattern.MatchString(strings.TrimSpace(expr))
}

// Per-field patterns with value ranges. Each accepts a comma-separated list
// of values, ranges, and stepped ranges, or a stepped wildcard.
var fieldPatterns = [FieldCount]*regexp.Regexp{
	regexp.MustCompile(`^(\*(/\d+)?|[0-5]?\d(-[0-5]?\d)?(/\d+)?(,[0-5]?\d(-[0-5]?\d)?(/\d+)?)*)$`),
	regexp.MustCompile(`^(\*(/\d+)?|([01]?\d|2[0-3])(-([01]?\d|2[0-3]))?(/\d+)?(,([01]?\d|2[0-3])(-([01]?\d|2[0-3]))?(/\d+)?)*)$`),
	regexp.MustCompile(`^(\*(/\d+)?|\?|([1-9]|[12]\d|3[01])(-([1-9]|[12]\d|3[01]))?(/\d+)?(,([1-9]|[12]\d|3[01])(-([1-9]|[12]\d|3[01]))?(/\d+)?)*)$`),
	regexp.MustCompile(`(?i)^(\*(/\d+)?|([1-9]|1[0-2]|JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)(-([1-9]|1[0-2]|JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC))?(/\d+)?(,([1-9]|1[0-2]|JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)(-([1-9]|1[0-2]|JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC))?(/\d+)?)*)$`),
	regexp.MustCompile(`(?i)^(\*(/\d+)?|\?|([0-7]|SUN|MON|TUE|WED|THU|FRI|SAT)(-([0-7]|SUN|MON|TUE|WED|THU|FRI|SAT))?(/\d+)?(,([0-7]|SUN|MON|TUE|WED|THU|FRI|SAT)(-([0-7]|SUN|MON|TUE|WED|THU|FRI|SAT))?(/\d+)?)*)$`),
}

var fieldNames = [FieldCount]string{"minute", "hour", "day-of-month", "month", "day-of-week"}

// Validate checks expr against the full five-field cron grammar with field
// value ranges, month and weekday names, lists, and `?` for the day fields.
// The returned error names the offending field.
func Validate(expr string) error {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return fmt.Errorf("cron expression is required")
	}
	fields := strings.Fields(expr)
	if len(fields) != FieldCount {
		return fmt.Errorf("cron expression must have exactly %d fields, found %d", FieldCount, len(fields))
	}
	for i, field := range fields {
		if !fieldPatterns[i].MatchString(field) {
			return fmt.Errorf("invalid %s field: %q", fieldNames[i], field)
		}
	}
	// Restricting both day fields at once produces surprising schedules, so
	// one of them must stay unrestricted.
	if isRestricted(fields[2]) && isRestricted(fields[4]) {
		return fmt.Errorf("day-of-month and day-of-week cannot both be restricted")
	}
	// The parser that ultimately evaluates the expression is stricter than
	// the field patterns (it rejects day-of-week 7 and zero steps). Cross-check
	// so every expression that validates can also be scheduled.
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("cron expression is invalid: %w", err)
	}
	return nil
}

func isRestricted(field string) bool {
	return field != "*" && field != "?"
}

// ValidateTimezone reports whether name is an IANA timezone identifier known
// to the runtime's timezone database. The accepted set depends on the tzdata
// shipped with the host.
func ValidateTimezone(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone is invalid: %w", err)
	}
	return nil
}
