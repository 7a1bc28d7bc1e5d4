// Package trigger implements the polling cron trigger. It periodically
// scans cron-enabled workflows, computes which schedules came due within
// the last poll interval, and dispatches a run for each.
package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/cronspec"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/pkg/logger"
	"go.opentelemetry.io/otel/metric"
)

const (
	skipReasonOverlap     = "overlap"
	skipReasonInvalidSpec = "invalid_spec"
)

// Config controls the trigger loop.
type Config struct {
	PollInterval time.Duration
	MaxWorkers   int
}

// Service is the polling cron trigger.
type Service struct {
	repo     workflow.Repository
	runner   Runner
	cfg      Config
	metrics  *Metrics
	sem      chan struct{}
	mu       sync.Mutex
	inFlight map[core.ID]struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewService creates a trigger service. A nil meter disables metrics.
func NewService(ctx context.Context, repo workflow.Repository, runner Runner, cfg Config, meter metric.Meter) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 10
	}
	return &Service{
		repo:     repo,
		runner:   runner,
		cfg:      cfg,
		metrics:  mustMetrics(ctx, meter),
		sem:      make(chan struct{}, cfg.MaxWorkers),
		inFlight: make(map[core.ID]struct{}),
	}
}

// Start runs the trigger loop until Stop is called or the context is
// canceled.
func (s *Service) Start(ctx context.Context) error {
	if s.done != nil {
		return fmt.Errorf("trigger service already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	log := logger.FromContext(ctx)
	log.Info("cron trigger started",
		"poll_interval", s.cfg.PollInterval, "max_workers", s.cfg.MaxWorkers)
	go s.loop(runCtx)
	return nil
}

// Stop terminates the loop and waits for it to exit. In-flight runs are
// not interrupted beyond context cancellation.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Service) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.FromContext(ctx).Info("cron trigger stopped")
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

// tick evaluates every cron-enabled workflow against the tick time.
func (s *Service) tick(ctx context.Context, now time.Time) {
	log := logger.FromContext(ctx)
	start := time.Now()
	defer func() {
		s.metrics.recordTick(ctx, time.Since(start).Seconds())
	}()
	var workflows []*workflow.Workflow
	backoff := retry.WithMaxRetries(3, retry.NewExponential(1*time.Second))
	err := retry.Do(ctx, backoff, func(retryCtx context.Context) error {
		var listErr error
		workflows, listErr = s.repo.ListCronEnabled(retryCtx)
		if listErr != nil {
			return retry.RetryableError(listErr)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to list cron-enabled workflows", "error", err)
		return
	}
	for _, wf := range workflows {
		if !wf.IsSchedulable() {
			continue
		}
		due, err := s.isDue(wf, now)
		if err != nil {
			// Stored rows can hold expressions the grammar check let
			// through but the parser rejects. Skip them, never crash
			// the loop.
			log.Warn("skipping workflow with invalid schedule",
				"workflow_id", wf.ID, "cron", *wf.CronSchedule, "error", err)
			s.metrics.recordSkipped(ctx, skipReasonInvalidSpec)
			continue
		}
		if !due {
			continue
		}
		s.dispatch(ctx, wf, now)
	}
}

// isDue reports whether the workflow's most recent scheduled activation
// falls within the last poll interval, evaluated in the workflow's
// timezone.
func (s *Service) isDue(wf *workflow.Workflow, now time.Time) (bool, error) {
	sched, err := cronspec.Schedule(*wf.CronSchedule, wf.Timezone)
	if err != nil {
		return false, err
	}
	next := sched.Next(now.Add(-s.cfg.PollInterval))
	return !next.IsZero() && !next.After(now), nil
}

// dispatch records and executes a run unless the workflow is already
// running.
func (s *Service) dispatch(ctx context.Context, wf *workflow.Workflow, now time.Time) {
	log := logger.FromContext(ctx)
	s.mu.Lock()
	if _, running := s.inFlight[wf.ID]; running {
		s.mu.Unlock()
		log.Info("skipping workflow, previous run still in flight", "workflow_id", wf.ID)
		s.metrics.recordSkipped(ctx, skipReasonOverlap)
		return
	}
	s.inFlight[wf.ID] = struct{}{}
	s.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(wf.ID)
		return
	}
	go func() {
		defer func() {
			<-s.sem
			s.release(wf.ID)
		}()
		s.execute(ctx, wf, now)
	}()
}

func (s *Service) execute(ctx context.Context, wf *workflow.Workflow, scheduledAt time.Time) {
	log := logger.FromContext(ctx)
	runID, err := core.NewID()
	if err != nil {
		log.Error("failed to generate run ID", "workflow_id", wf.ID, "error", err)
		s.metrics.recordFailed(ctx)
		return
	}
	run := &workflow.Run{
		ID:          runID,
		WorkflowID:  wf.ID,
		TriggerType: workflow.TriggerCron,
		Status:      workflow.RunDispatched,
		ScheduledAt: scheduledAt,
		StartedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		log.Error("failed to record workflow run", "workflow_id", wf.ID, "error", err)
		s.metrics.recordFailed(ctx)
		return
	}
	s.metrics.recordDispatched(ctx)
	if err := s.runner.Run(ctx, wf, run); err != nil {
		log.Error("workflow run failed", "workflow_id", wf.ID, "run_id", run.ID, "error", err)
		s.metrics.recordFailed(ctx)
		if updateErr := s.repo.UpdateRunStatus(ctx, run.ID, workflow.RunFailed); updateErr != nil {
			log.Error("failed to mark run failed", "run_id", run.ID, "error", updateErr)
		}
		return
	}
	if err := s.repo.UpdateRunStatus(ctx, run.ID, workflow.RunCompleted); err != nil {
		log.Error("failed to mark run completed", "run_id", run.ID, "error", err)
	}
}

func (s *Service) release(id core.ID) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}
