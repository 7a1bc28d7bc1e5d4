package trigger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/workflow"
)

// MockRepository is a mock implementation of workflow.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, wf *workflow.Workflow) error {
	args := m.Called(ctx, wf)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id core.ID) (*workflow.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]*workflow.Workflow, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Workflow), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id core.ID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) UpdateScheduleSettings(
	ctx context.Context,
	id core.ID,
	settings workflow.ScheduleSettings,
) (*workflow.Workflow, error) {
	args := m.Called(ctx, id, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workflow.Workflow), args.Error(1)
}

func (m *MockRepository) ListCronEnabled(ctx context.Context) ([]*workflow.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Workflow), args.Error(1)
}

func (m *MockRepository) CreateRun(ctx context.Context, run *workflow.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRepository) ListRuns(ctx context.Context, workflowID core.ID, limit int) ([]*workflow.Run, error) {
	args := m.Called(ctx, workflowID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workflow.Run), args.Error(1)
}

func (m *MockRepository) UpdateRunStatus(ctx context.Context, runID core.ID, status workflow.RunStatus) error {
	args := m.Called(ctx, runID, status)
	return args.Error(0)
}

func (m *MockRepository) WithTx(tx pgx.Tx) workflow.Repository {
	args := m.Called(tx)
	return args.Get(0).(workflow.Repository)
}

// recordingRunner captures dispatched runs.
type recordingRunner struct {
	mu      sync.Mutex
	runs    []*workflow.Run
	err     error
	started chan struct{}
	block   chan struct{}
}

func newRecordingRunner() *recordingRunner {
	return &recordingRunner{started: make(chan struct{}, 16)}
}

func (r *recordingRunner) Run(_ context.Context, _ *workflow.Workflow, run *workflow.Run) error {
	r.mu.Lock()
	r.runs = append(r.runs, run)
	r.mu.Unlock()
	r.started <- struct{}{}
	if r.block != nil {
		<-r.block
	}
	return r.err
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func cronWorkflow(t *testing.T, cron, timezone string) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.New("Scheduled sync")
	require.NoError(t, err)
	wf.CronSchedule = &cron
	wf.CronEnabled = true
	wf.Timezone = timezone
	return wf
}

func newTestService(repo workflow.Repository, runner Runner) *Service {
	return NewService(context.Background(), repo, runner, Config{
		PollInterval: 60 * time.Second,
		MaxWorkers:   4,
	}, nil)
}

func TestService_IsDue(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, newRecordingRunner())
	t.Run("Should be due when an activation falls inside the last interval", func(t *testing.T) {
		wf := cronWorkflow(t, "* * * * *", "UTC")
		now := time.Date(2026, 3, 10, 12, 0, 30, 0, time.UTC)
		due, err := svc.isDue(wf, now)
		require.NoError(t, err)
		assert.True(t, due)
	})
	t.Run("Should not be due between activations", func(t *testing.T) {
		wf := cronWorkflow(t, "0 2 * * *", "UTC")
		now := time.Date(2026, 3, 10, 12, 0, 30, 0, time.UTC)
		due, err := svc.isDue(wf, now)
		require.NoError(t, err)
		assert.False(t, due)
	})
	t.Run("Should evaluate the schedule in the workflow timezone", func(t *testing.T) {
		wf := cronWorkflow(t, "0 9 * * *", "America/New_York")
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		nineThirtyEastern := time.Date(2026, 3, 10, 9, 0, 30, 0, loc)
		due, err := svc.isDue(wf, nineThirtyEastern)
		require.NoError(t, err)
		assert.True(t, due)
		nineUTC := time.Date(2026, 3, 10, 9, 0, 30, 0, time.UTC)
		due, err = svc.isDue(wf, nineUTC)
		require.NoError(t, err)
		assert.False(t, due)
	})
	t.Run("Should surface unparsable expressions", func(t *testing.T) {
		wf := cronWorkflow(t, "99 * * * *", "UTC")
		_, err := svc.isDue(wf, time.Now())
		assert.Error(t, err)
	})
}

func TestService_Tick(t *testing.T) {
	t.Run("Should dispatch a run for due workflows", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "* * * * *", "UTC")
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		repo.On("CreateRun", mock.Anything, mock.MatchedBy(func(run *workflow.Run) bool {
			return run.WorkflowID == wf.ID && run.TriggerType == workflow.TriggerCron
		})).Return(nil)
		repo.On("UpdateRunStatus", mock.Anything, mock.Anything, workflow.RunCompleted).Return(nil)
		svc.tick(context.Background(), time.Now())
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("runner was not invoked")
		}
		assert.Eventually(t, func() bool {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			return len(svc.inFlight) == 0
		}, 2*time.Second, 10*time.Millisecond)
		repo.AssertExpectations(t)
	})
	t.Run("Should skip workflows that are not due", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "0 2 * * *", "UTC")
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		svc.tick(context.Background(), time.Date(2026, 3, 10, 12, 0, 30, 0, time.UTC))
		assert.Equal(t, 0, runner.count())
		repo.AssertNotCalled(t, "CreateRun")
	})
	t.Run("Should skip workflows with unparsable stored expressions", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "99 * * * *", "UTC")
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		svc.tick(context.Background(), time.Now())
		assert.Equal(t, 0, runner.count())
		repo.AssertNotCalled(t, "CreateRun")
	})
	t.Run("Should skip overlapping runs of the same workflow", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		runner.block = make(chan struct{})
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "* * * * *", "UTC")
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		repo.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateRunStatus", mock.Anything, mock.Anything, workflow.RunCompleted).Return(nil)
		svc.tick(context.Background(), time.Now())
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("runner was not invoked")
		}
		// Second tick while the first run is still blocked.
		svc.tick(context.Background(), time.Now())
		assert.Equal(t, 1, runner.count())
		close(runner.block)
	})
	t.Run("Should mark failed runs", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		runner.err = assert.AnError
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "* * * * *", "UTC")
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		repo.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		repo.On("UpdateRunStatus", mock.Anything, mock.Anything, workflow.RunFailed).Return(nil)
		svc.tick(context.Background(), time.Now())
		select {
		case <-runner.started:
		case <-time.After(2 * time.Second):
			t.Fatal("runner was not invoked")
		}
		assert.Eventually(t, func() bool {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			return len(svc.inFlight) == 0
		}, 2*time.Second, 10*time.Millisecond)
		repo.AssertCalled(t, "UpdateRunStatus", mock.Anything, mock.Anything, workflow.RunFailed)
	})
	t.Run("Should ignore archived workflows", func(t *testing.T) {
		repo := new(MockRepository)
		runner := newRecordingRunner()
		svc := newTestService(repo, runner)
		wf := cronWorkflow(t, "* * * * *", "UTC")
		wf.Status = workflow.StatusArchived
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{wf}, nil)
		svc.tick(context.Background(), time.Now())
		assert.Equal(t, 0, runner.count())
	})
}

func TestService_StartStop(t *testing.T) {
	t.Run("Should stop cleanly", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{}, nil).Maybe()
		svc := NewService(context.Background(), repo, newRecordingRunner(), Config{
			PollInterval: 10 * time.Millisecond,
			MaxWorkers:   1,
		}, nil)
		require.NoError(t, svc.Start(context.Background()))
		time.Sleep(30 * time.Millisecond)
		svc.Stop()
	})
	t.Run("Should reject a second start", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListCronEnabled", mock.Anything).Return([]*workflow.Workflow{}, nil).Maybe()
		svc := newTestService(repo, newRecordingRunner())
		require.NoError(t, svc.Start(context.Background()))
		assert.Error(t, svc.Start(context.Background()))
		svc.Stop()
	})
}
