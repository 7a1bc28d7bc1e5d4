package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/cronspec"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/pkg/logger"
)

// ErrScheduleNotFound indicates the workflow has no schedule configured.
var ErrScheduleNotFound = errors.New("schedule not found")

// Info describes the schedule state of a workflow.
type Info struct {
	WorkflowID         core.ID    `json:"workflow_id"`
	WorkflowName       string     `json:"workflow_name"`
	Cron               string     `json:"cron"`
	Timezone           string     `json:"timezone"`
	Enabled            bool       `json:"enabled"`
	NextRunTime        *time.Time `json:"next_run_time,omitempty"`
	NextRunDescription string     `json:"next_run_description,omitempty"`
	LastRunTime        *time.Time `json:"last_run_time,omitempty"`
	LastRunStatus      string     `json:"last_run_status,omitempty"`
}

// SetRequest replaces the full schedule of a workflow.
type SetRequest struct {
	Cron     string `json:"cron"`
	Enabled  bool   `json:"enabled"`
	Timezone string `json:"timezone"`
}

// UpdateRequest contains the fields of a partial schedule update. At
// least one field must be set.
type UpdateRequest struct {
	Enabled  *bool   `json:"enabled"`
	Cron     *string `json:"cron"`
	Timezone *string `json:"timezone"`
}

// IsEmpty reports whether no field was provided.
func (r *UpdateRequest) IsEmpty() bool {
	return r.Enabled == nil && r.Cron == nil && r.Timezone == nil
}

// Manager exposes schedule operations over workflows.
type Manager interface {
	GetSchedule(ctx context.Context, workflowID core.ID) (*Info, error)
	SetSchedule(ctx context.Context, workflowID core.ID, req SetRequest) (*Info, error)
	UpdateSchedule(ctx context.Context, workflowID core.ID, req UpdateRequest) (*Info, error)
	DeleteSchedule(ctx context.Context, workflowID core.ID) error
	ListSchedules(ctx context.Context) ([]*Info, error)
}

const listBatchSize = 200

type manager struct {
	repo workflow.Repository
}

// NewManager creates a schedule manager over the given repository.
func NewManager(repo workflow.Repository) Manager {
	return &manager{repo: repo}
}

func (m *manager) GetSchedule(ctx context.Context, workflowID core.ID) (*Info, error) {
	wf, err := m.repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.CronSchedule == nil {
		return nil, ErrScheduleNotFound
	}
	return m.buildInfo(ctx, wf), nil
}

func (m *manager) SetSchedule(ctx context.Context, workflowID core.ID, req SetRequest) (*Info, error) {
	settings := workflow.ScheduleSettings{
		CronSchedule: &req.Cron,
		CronEnabled:  req.Enabled,
		Timezone:     req.Timezone,
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	wf, err := m.repo.UpdateScheduleSettings(ctx, workflowID, settings)
	if err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)
	log.Info("schedule set",
		"workflow_id", workflowID,
		"cron", req.Cron,
		"timezone", settings.Timezone,
		"enabled", req.Enabled,
	)
	return m.buildInfo(ctx, wf), nil
}

func (m *manager) UpdateSchedule(ctx context.Context, workflowID core.ID, req UpdateRequest) (*Info, error) {
	wf, err := m.repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if wf.CronSchedule == nil {
		return nil, ErrScheduleNotFound
	}
	settings := workflow.ScheduleSettings{
		CronSchedule: wf.CronSchedule,
		CronEnabled:  wf.CronEnabled,
		Timezone:     wf.Timezone,
	}
	if req.Cron != nil {
		settings.CronSchedule = req.Cron
	}
	if req.Enabled != nil {
		settings.CronEnabled = *req.Enabled
	}
	if req.Timezone != nil {
		settings.Timezone = *req.Timezone
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	updated, err := m.repo.UpdateScheduleSettings(ctx, workflowID, settings)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("schedule updated", "workflow_id", workflowID)
	return m.buildInfo(ctx, updated), nil
}

func (m *manager) DeleteSchedule(ctx context.Context, workflowID core.ID) error {
	wf, err := m.repo.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}
	if wf.CronSchedule == nil {
		return ErrScheduleNotFound
	}
	settings := workflow.ScheduleSettings{
		CronSchedule: nil,
		CronEnabled:  false,
		Timezone:     wf.Timezone,
	}
	if _, err := m.repo.UpdateScheduleSettings(ctx, workflowID, settings); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("schedule cleared", "workflow_id", workflowID)
	return nil
}

func (m *manager) ListSchedules(ctx context.Context) ([]*Info, error) {
	infos := make([]*Info, 0)
	for offset := 0; ; offset += listBatchSize {
		workflows, err := m.repo.List(ctx, listBatchSize, offset)
		if err != nil {
			return nil, err
		}
		for _, wf := range workflows {
			if wf.CronSchedule == nil {
				continue
			}
			infos = append(infos, m.buildInfo(ctx, wf))
		}
		if len(workflows) < listBatchSize {
			return infos, nil
		}
	}
}

// buildInfo derives the presentable schedule state of a workflow. Run
// history and next-run computation are best effort; failures there do
// not fail the request.
func (m *manager) buildInfo(ctx context.Context, wf *workflow.Workflow) *Info {
	info := &Info{
		WorkflowID:   wf.ID,
		WorkflowName: wf.Name,
		Timezone:     wf.Timezone,
		Enabled:      wf.CronEnabled,
	}
	if wf.CronSchedule == nil {
		return info
	}
	info.Cron = *wf.CronSchedule
	info.NextRunDescription = cronspec.Describe(info.Cron)
	if wf.CronEnabled {
		next, err := cronspec.NextRun(info.Cron, wf.Timezone, time.Now())
		if err != nil {
			logger.FromContext(ctx).Warn("failed to compute next run",
				"workflow_id", wf.ID, "cron", info.Cron, "error", err)
		} else {
			info.NextRunTime = &next
		}
	}
	runs, err := m.repo.ListRuns(ctx, wf.ID, 1)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load run history",
			"workflow_id", wf.ID, "error", err)
		return info
	}
	if len(runs) > 0 {
		started := runs[0].StartedAt
		info.LastRunTime = &started
		info.LastRunStatus = string(runs[0].Status)
	}
	return info
}
