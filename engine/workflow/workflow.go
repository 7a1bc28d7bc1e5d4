// Package workflow holds the workflow domain model and its persistence layer.
package workflow

import (
	"fmt"
	"time"

	"github.com/taskweave/taskweave/engine/core"
)

// Status represents the lifecycle state of a workflow.
type Status string

const (
	// StatusActive indicates the workflow can run and be scheduled.
	StatusActive Status = "active"
	// StatusArchived indicates the workflow is retained but never triggered.
	StatusArchived Status = "archived"
)

// IsValid checks if the workflow status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusArchived:
		return true
	default:
		return false
	}
}

// DefaultTimezone is the timezone applied to schedules that do not set one.
const DefaultTimezone = "UTC"

// Workflow is a stored workflow definition together with its schedule and
// console settings.
type Workflow struct {
	ID           core.ID    `json:"id"                      db:"id"`
	Name         string     `json:"name"                    db:"name"`
	Description  string     `json:"description,omitempty"   db:"description"`
	Status       Status     `json:"status"                  db:"status"`
	CronSchedule *string    `json:"cron_schedule,omitempty" db:"cron_schedule"`
	CronEnabled  bool       `json:"cron_enabled"            db:"cron_enabled"`
	Timezone     string     `json:"timezone"                db:"timezone"`
	WebhookURL   string     `json:"webhook_url,omitempty"   db:"webhook_url"`
	MaxSteps     int        `json:"max_steps,omitempty"     db:"max_steps"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"              db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"    db:"deleted_at"`
}

// New creates a workflow with defaults applied.
func New(name string) (*Workflow, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	id, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workflow ID: %w", err)
	}
	now := time.Now().UTC()
	return &Workflow{
		ID:        id,
		Name:      name,
		Status:    StatusActive,
		Timezone:  DefaultTimezone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateName validates a workflow name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("workflow name cannot be empty")
	}
	if len(name) > 255 {
		return fmt.Errorf("workflow name must be at most 255 characters long")
	}
	return nil
}

// Validate validates the workflow entity.
func (w *Workflow) Validate() error {
	if w.ID.IsZero() {
		return fmt.Errorf("workflow ID cannot be empty")
	}
	if err := ValidateName(w.Name); err != nil {
		return err
	}
	if !w.Status.IsValid() {
		return fmt.Errorf("invalid workflow status: %s", w.Status)
	}
	if w.MaxSteps < 0 {
		return fmt.Errorf("max steps cannot be negative")
	}
	return (&ScheduleSettings{
		CronSchedule: w.CronSchedule,
		CronEnabled:  w.CronEnabled,
		Timezone:     w.Timezone,
	}).Validate()
}

// IsSchedulable reports whether the cron trigger should consider this
// workflow.
func (w *Workflow) IsSchedulable() bool {
	return w.Status == StatusActive &&
		w.DeletedAt == nil &&
		w.CronEnabled &&
		w.CronSchedule != nil && *w.CronSchedule != ""
}

// TriggerType identifies what caused a workflow run.
type TriggerType string

const (
	TriggerCron   TriggerType = "cron"
	TriggerManual TriggerType = "manual"
)

// RunStatus is the lifecycle state of a workflow run record.
type RunStatus string

const (
	RunDispatched RunStatus = "dispatched"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// Run records a single dispatched execution of a workflow.
type Run struct {
	ID          core.ID     `json:"id"           db:"id"`
	WorkflowID  core.ID     `json:"workflow_id"  db:"workflow_id"`
	TriggerType TriggerType `json:"trigger_type" db:"trigger_type"`
	Status      RunStatus   `json:"status"       db:"status"`
	ScheduledAt time.Time   `json:"scheduled_at" db:"scheduled_at"`
	StartedAt   time.Time   `json:"started_at"   db:"started_at"`
}
