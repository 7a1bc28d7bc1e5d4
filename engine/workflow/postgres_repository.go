package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/infra/store"
)

// postgresRepository implements Repository using PostgreSQL
type postgresRepository struct {
	db store.DBInterface
}

// NewPostgresRepository creates a new PostgreSQL repository instance
func NewPostgresRepository(db store.DBInterface) Repository {
	return &postgresRepository{db: db}
}

const workflowColumns = `id, name, description, status, cron_schedule, cron_enabled, timezone,
webhook_url, max_steps, created_at, updated_at, deleted_at`

// scanWorkflow scans a database row into a Workflow struct
func scanWorkflow(scannable interface{ Scan(dest ...any) error }) (*Workflow, error) {
	var wf Workflow
	err := scannable.Scan(
		&wf.ID,
		&wf.Name,
		&wf.Description,
		&wf.Status,
		&wf.CronSchedule,
		&wf.CronEnabled,
		&wf.Timezone,
		&wf.WebhookURL,
		&wf.MaxSteps,
		&wf.CreatedAt,
		&wf.UpdatedAt,
		&wf.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}
	return &wf, nil
}

func scanWorkflows(rows pgx.Rows) ([]*Workflow, error) {
	defer rows.Close()
	var workflows []*Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, wf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow rows: %w", err)
	}
	return workflows, nil
}

// Create creates a new workflow
func (r *postgresRepository) Create(ctx context.Context, wf *Workflow) error {
	query := `INSERT INTO workflows (id, name, description, status, cron_schedule, cron_enabled,
timezone, webhook_url, max_steps, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		wf.ID,
		wf.Name,
		wf.Description,
		wf.Status,
		wf.CronSchedule,
		wf.CronEnabled,
		wf.Timezone,
		wf.WebhookURL,
		wf.MaxSteps,
		wf.CreatedAt,
		wf.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

// GetByID retrieves a workflow by its ID
func (r *postgresRepository) GetByID(ctx context.Context, id core.ID) (*Workflow, error) {
	query := `SELECT ` + workflowColumns + `
FROM workflows
WHERE id = $1 AND deleted_at IS NULL`
	wf, err := scanWorkflow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrWorkflowNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get workflow by ID: %w", err)
	}
	return wf, nil
}

// List retrieves workflows with pagination
func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]*Workflow, error) {
	query := `SELECT ` + workflowColumns + `
FROM workflows
WHERE deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	return scanWorkflows(rows)
}

// Delete soft-deletes a workflow
func (r *postgresRepository) Delete(ctx context.Context, id core.ID) error {
	query := `UPDATE workflows
SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE id = $1 AND deleted_at IS NULL`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}

// UpdateScheduleSettings updates the schedule columns and returns the
// updated workflow
func (r *postgresRepository) UpdateScheduleSettings(
	ctx context.Context,
	id core.ID,
	settings ScheduleSettings,
) (*Workflow, error) {
	query := `UPDATE workflows
SET cron_schedule = $2, cron_enabled = $3, timezone = $4, updated_at = CURRENT_TIMESTAMP
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + workflowColumns
	wf, err := scanWorkflow(r.db.QueryRow(ctx, query,
		id,
		settings.CronSchedule,
		settings.CronEnabled,
		settings.Timezone,
	))
	if err != nil {
		if errors.Is(err, ErrWorkflowNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update workflow schedule settings: %w", err)
	}
	return wf, nil
}

// ListCronEnabled retrieves active workflows with an enabled cron schedule
func (r *postgresRepository) ListCronEnabled(ctx context.Context) ([]*Workflow, error) {
	query := `SELECT ` + workflowColumns + `
FROM workflows
WHERE deleted_at IS NULL
  AND status = $1
  AND cron_enabled
  AND cron_schedule IS NOT NULL
ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list cron-enabled workflows: %w", err)
	}
	return scanWorkflows(rows)
}

// CreateRun records a dispatched workflow run
func (r *postgresRepository) CreateRun(ctx context.Context, run *Run) error {
	query := `INSERT INTO workflow_runs (id, workflow_id, trigger_type, status, scheduled_at, started_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.WorkflowID,
		run.TriggerType,
		run.Status,
		run.ScheduledAt,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workflow run: %w", err)
	}
	return nil
}

// ListRuns retrieves the most recent runs of a workflow
func (r *postgresRepository) ListRuns(ctx context.Context, workflowID core.ID, limit int) ([]*Run, error) {
	query := `SELECT id, workflow_id, trigger_type, status, scheduled_at, started_at
FROM workflow_runs
WHERE workflow_id = $1
ORDER BY started_at DESC
LIMIT $2`
	rows, err := r.db.Query(ctx, query, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.WorkflowID,
			&run.TriggerType,
			&run.Status,
			&run.ScheduledAt,
			&run.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan workflow run: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workflow run rows: %w", err)
	}
	return runs, nil
}

// UpdateRunStatus transitions a run record's status
func (r *postgresRepository) UpdateRunStatus(ctx context.Context, runID core.ID, status RunStatus) error {
	query := `UPDATE workflow_runs SET status = $2 WHERE id = $1`
	result, err := r.db.Exec(ctx, query, runID, status)
	if err != nil {
		return fmt.Errorf("failed to update workflow run status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("workflow run %s not found", runID)
	}
	return nil
}

// WithTx returns a repository instance that uses the given transaction.
func (r *postgresRepository) WithTx(tx pgx.Tx) Repository {
	return &postgresRepository{db: tx}
}

var _ Repository = (*postgresRepository)(nil)
