package workflow

import "errors"

// ErrWorkflowNotFound is returned when a workflow does not exist or has been
// deleted.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrInvalidSchedule wraps schedule validation failures so callers can map
// them to client errors.
var ErrInvalidSchedule = errors.New("invalid schedule")
