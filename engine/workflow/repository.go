package workflow

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/taskweave/taskweave/engine/core"
)

// Repository defines the interface for workflow data access
type Repository interface {
	// Create creates a new workflow
	Create(ctx context.Context, wf *Workflow) error
	// GetByID retrieves a workflow by its ID, excluding deleted ones
	GetByID(ctx context.Context, id core.ID) (*Workflow, error)
	// List retrieves workflows with pagination, excluding deleted ones
	List(ctx context.Context, limit, offset int) ([]*Workflow, error)
	// Delete soft-deletes a workflow by its ID
	Delete(ctx context.Context, id core.ID) error
	// UpdateScheduleSettings updates a workflow's schedule columns and
	// returns the updated workflow
	UpdateScheduleSettings(ctx context.Context, id core.ID, settings ScheduleSettings) (*Workflow, error)
	// ListCronEnabled retrieves active workflows with an enabled cron
	// schedule
	ListCronEnabled(ctx context.Context) ([]*Workflow, error)
	// CreateRun records a dispatched workflow run
	CreateRun(ctx context.Context, run *Run) error
	// ListRuns retrieves the most recent runs of a workflow
	ListRuns(ctx context.Context, workflowID core.ID, limit int) ([]*Run, error)
	// UpdateRunStatus transitions a run record's status
	UpdateRunStatus(ctx context.Context, runID core.ID, status RunStatus) error
	// WithTx returns a repository instance that uses the given transaction
	WithTx(tx pgx.Tx) Repository
}
