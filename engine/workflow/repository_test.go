package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/workflow"
)

// MockDBInterface is a mock implementation of store.DBInterface
type MockDBInterface struct {
	mockPool pgxmock.PgxPoolIface
}

func (m *MockDBInterface) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return m.mockPool.Exec(ctx, sql, arguments...)
}

func (m *MockDBInterface) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.mockPool.Query(ctx, sql, args...)
}

func (m *MockDBInterface) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.mockPool.QueryRow(ctx, sql, args...)
}

func (m *MockDBInterface) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.mockPool.Begin(ctx)
}

var workflowRowColumns = []string{
	"id", "name", "description", "status", "cron_schedule", "cron_enabled", "timezone",
	"webhook_url", "max_steps", "created_at", "updated_at", "deleted_at",
}

func newMockRepo(t *testing.T) (workflow.Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return workflow.NewPostgresRepository(&MockDBInterface{mockPool: mockPool}), mockPool
}

func workflowRow(wf *workflow.Workflow) []any {
	return []any{
		wf.ID, wf.Name, wf.Description, wf.Status, wf.CronSchedule, wf.CronEnabled,
		wf.Timezone, wf.WebhookURL, wf.MaxSteps, wf.CreatedAt, wf.UpdatedAt, wf.DeletedAt,
	}
}

func TestPostgresRepository_Create(t *testing.T) {
	t.Run("Should insert a workflow", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		wf, err := workflow.New("Invoice sync")
		require.NoError(t, err)
		mockPool.ExpectExec("INSERT INTO workflows").
			WithArgs(
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
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err = repo.Create(context.Background(), wf)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should wrap database errors", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		wf, err := workflow.New("Invoice sync")
		require.NoError(t, err)
		mockPool.ExpectExec("INSERT INTO workflows").
			WithArgs(
				wf.ID, wf.Name, wf.Description, wf.Status, wf.CronSchedule, wf.CronEnabled,
				wf.Timezone, wf.WebhookURL, wf.MaxSteps, wf.CreatedAt, wf.UpdatedAt,
			).
			WillReturnError(errors.New("connection refused"))
		err = repo.Create(context.Background(), wf)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create workflow")
	})
}

func TestPostgresRepository_GetByID(t *testing.T) {
	t.Run("Should return the workflow when found", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		wf, err := workflow.New("Nightly report")
		require.NoError(t, err)
		mockPool.ExpectQuery("SELECT (.+) FROM workflows WHERE id = \\$1 AND deleted_at IS NULL").
			WithArgs(wf.ID).
			WillReturnRows(pgxmock.NewRows(workflowRowColumns).AddRow(workflowRow(wf)...))
		got, err := repo.GetByID(context.Background(), wf.ID)
		require.NoError(t, err)
		assert.Equal(t, wf.ID, got.ID)
		assert.Equal(t, wf.Name, got.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return not-found sentinel for missing rows", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := core.MustNewID()
		mockPool.ExpectQuery("SELECT (.+) FROM workflows WHERE id = \\$1 AND deleted_at IS NULL").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
	})
}

func TestPostgresRepository_List(t *testing.T) {
	t.Run("Should return workflows with pagination", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		first, err := workflow.New("First")
		require.NoError(t, err)
		second, err := workflow.New("Second")
		require.NoError(t, err)
		mockPool.ExpectQuery("SELECT (.+) FROM workflows WHERE deleted_at IS NULL").
			WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows(workflowRowColumns).
				AddRow(workflowRow(first)...).
				AddRow(workflowRow(second)...))
		got, err := repo.List(context.Background(), 10, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "First", got[0].Name)
		assert.Equal(t, "Second", got[1].Name)
	})
	t.Run("Should return empty slice when no workflows exist", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("SELECT (.+) FROM workflows WHERE deleted_at IS NULL").
			WithArgs(10, 0).
			WillReturnRows(pgxmock.NewRows(workflowRowColumns))
		got, err := repo.List(context.Background(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestPostgresRepository_Delete(t *testing.T) {
	t.Run("Should soft-delete a workflow", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := core.MustNewID()
		mockPool.ExpectExec("UPDATE workflows").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		err := repo.Delete(context.Background(), id)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
	t.Run("Should return not-found sentinel when nothing was deleted", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := core.MustNewID()
		mockPool.ExpectExec("UPDATE workflows").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.Delete(context.Background(), id)
		assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
	})
}

func TestPostgresRepository_UpdateScheduleSettings(t *testing.T) {
	t.Run("Should update schedule columns and return the workflow", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		wf, err := workflow.New("Nightly report")
		require.NoError(t, err)
		schedule := "0 2 * * *"
		settings := workflow.ScheduleSettings{
			CronSchedule: &schedule,
			CronEnabled:  true,
			Timezone:     "America/New_York",
		}
		wf.CronSchedule = settings.CronSchedule
		wf.CronEnabled = settings.CronEnabled
		wf.Timezone = settings.Timezone
		mockPool.ExpectQuery("UPDATE workflows").
			WithArgs(wf.ID, settings.CronSchedule, settings.CronEnabled, settings.Timezone).
			WillReturnRows(pgxmock.NewRows(workflowRowColumns).AddRow(workflowRow(wf)...))
		got, err := repo.UpdateScheduleSettings(context.Background(), wf.ID, settings)
		require.NoError(t, err)
		require.NotNil(t, got.CronSchedule)
		assert.Equal(t, schedule, *got.CronSchedule)
		assert.True(t, got.CronEnabled)
		assert.Equal(t, "America/New_York", got.Timezone)
	})
	t.Run("Should return not-found sentinel for missing workflows", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		id := core.MustNewID()
		settings := workflow.ScheduleSettings{Timezone: workflow.DefaultTimezone}
		mockPool.ExpectQuery("UPDATE workflows").
			WithArgs(id, settings.CronSchedule, settings.CronEnabled, settings.Timezone).
			WillReturnError(pgx.ErrNoRows)
		_, err := repo.UpdateScheduleSettings(context.Background(), id, settings)
		assert.ErrorIs(t, err, workflow.ErrWorkflowNotFound)
	})
}

func TestPostgresRepository_ListCronEnabled(t *testing.T) {
	t.Run("Should return only cron-enabled workflows", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		wf, err := workflow.New("Scheduled sync")
		require.NoError(t, err)
		schedule := "*/5 * * * *"
		wf.CronSchedule = &schedule
		wf.CronEnabled = true
		mockPool.ExpectQuery("SELECT (.+) FROM workflows").
			WithArgs(workflow.StatusActive).
			WillReturnRows(pgxmock.NewRows(workflowRowColumns).AddRow(workflowRow(wf)...))
		got, err := repo.ListCronEnabled(context.Background())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].CronEnabled)
	})
}

func TestPostgresRepository_Runs(t *testing.T) {
	t.Run("Should insert a workflow run", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		now := time.Now().UTC()
		run := &workflow.Run{
			ID:          core.MustNewID(),
			WorkflowID:  core.MustNewID(),
			TriggerType: workflow.TriggerCron,
			Status:      workflow.RunDispatched,
			ScheduledAt: now,
			StartedAt:   now,
		}
		mockPool.ExpectExec("INSERT INTO workflow_runs").
			WithArgs(run.ID, run.WorkflowID, run.TriggerType, run.Status, run.ScheduledAt, run.StartedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.CreateRun(context.Background(), run)
		assert.NoError(t, err)
	})
	t.Run("Should list recent runs of a workflow", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		workflowID := core.MustNewID()
		now := time.Now().UTC()
		mockPool.ExpectQuery("SELECT (.+) FROM workflow_runs WHERE workflow_id = \\$1").
			WithArgs(workflowID, 5).
			WillReturnRows(pgxmock.NewRows(
				[]string{"id", "workflow_id", "trigger_type", "status", "scheduled_at", "started_at"},
			).AddRow(core.MustNewID(), workflowID, workflow.TriggerCron, workflow.RunCompleted, now, now))
		runs, err := repo.ListRuns(context.Background(), workflowID, 5)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, workflow.RunCompleted, runs[0].Status)
	})
	t.Run("Should report missing runs on status update", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		runID := core.MustNewID()
		mockPool.ExpectExec("UPDATE workflow_runs").
			WithArgs(runID, workflow.RunFailed).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		err := repo.UpdateRunStatus(context.Background(), runID, workflow.RunFailed)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
