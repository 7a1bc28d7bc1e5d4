package router

import "strconv"

// LimitOrDefault returns a sanitized page size. Values outside
// (0, maxLimit] fall back to the default.
func LimitOrDefault(raw string, def, maxLimit int) int {
	if def <= 0 {
		def = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// OffsetOrDefault returns a sanitized non-negative offset.
func OffsetOrDefault(raw string) int {
	if raw == "" {
		return 0
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}
