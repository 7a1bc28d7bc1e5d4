package trigger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/taskweave/taskweave/engine/workflow"
	"github.com/taskweave/taskweave/pkg/logger"
)

// Runner executes a dispatched workflow run.
type Runner interface {
	Run(ctx context.Context, wf *workflow.Workflow, run *workflow.Run) error
}

// WebhookRunner delivers run notifications to the workflow's webhook
// URL. Workflows without a webhook are logged and treated as completed.
type WebhookRunner struct {
	client *resty.Client
}

// NewWebhookRunner creates a runner with retrying HTTP delivery.
func NewWebhookRunner(timeout time.Duration) *WebhookRunner {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			status := r.StatusCode()
			return status >= http.StatusInternalServerError ||
				status == http.StatusTooManyRequests ||
				status == http.StatusRequestTimeout
		})
	return &WebhookRunner{client: client}
}

type webhookPayload struct {
	RunID       string    `json:"run_id"`
	WorkflowID  string    `json:"workflow_id"`
	Workflow    string    `json:"workflow"`
	TriggerType string    `json:"trigger_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (r *WebhookRunner) Run(ctx context.Context, wf *workflow.Workflow, run *workflow.Run) error {
	log := logger.FromContext(ctx)
	if wf.WebhookURL == "" {
		log.Info("workflow run dispatched",
			"workflow_id", wf.ID, "run_id", run.ID, "scheduled_at", run.ScheduledAt)
		return nil
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			RunID:       run.ID.String(),
			WorkflowID:  wf.ID.String(),
			Workflow:    wf.Name,
			TriggerType: string(run.TriggerType),
			ScheduledAt: run.ScheduledAt,
		}).
		Post(wf.WebhookURL)
	if err != nil {
		return fmt.Errorf("failed to deliver webhook for workflow %s: %w", wf.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook for workflow %s returned status %d", wf.ID, resp.StatusCode())
	}
	log.Info("workflow run delivered",
		"workflow_id", wf.ID, "run_id", run.ID, "status", resp.StatusCode())
	return nil
}
