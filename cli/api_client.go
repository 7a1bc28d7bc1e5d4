package cli

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/taskweave/taskweave/engine/core"
	"github.com/taskweave/taskweave/engine/workflow"
	wfrouter "github.com/taskweave/taskweave/engine/workflow/router"
	"github.com/taskweave/taskweave/engine/workflow/schedule"
	"github.com/taskweave/taskweave/pkg/config"
	"github.com/taskweave/taskweave/pkg/logger"
)

// APIClient provides access to the server's REST API.
type APIClient struct {
	client  *resty.Client
	baseURL string
}

// NewAPIClient creates an API client from CLI configuration.
func NewAPIClient(cfg *config.Config) (*APIClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	baseURL, err := buildBaseURL(cfg.CLI.ServerURL)
	if err != nil {
		return nil, err
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.CLI.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)
	if apiKey := cfg.CLI.APIKey.Value(); apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	if cfg.Runtime.LogLevel == "debug" {
		client.SetDebug(true)
	}
	return &APIClient{client: client, baseURL: baseURL}, nil
}

// buildBaseURL validates the server URL and appends the API prefix.
func buildBaseURL(serverURL string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", fmt.Errorf("server URL must be absolute, got: %s", serverURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("server URL scheme must be http or https, got: %s", parsed.Scheme)
	}
	return serverURL + "/api/v1", nil
}

// retryCondition determines if a request should be retried
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == 429 || code == 408
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// errorEnvelope matches the server's error response shape.
type errorEnvelope struct {
	Status int       `json:"status"`
	Error  *APIError `json:"error"`
}

// doRequest performs a request and decodes the data envelope into result.
func (c *APIClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	log := logger.FromContext(ctx)
	req := c.client.R().SetContext(ctx).SetError(&errorEnvelope{})
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if envelope, ok := resp.Error().(*errorEnvelope); ok && envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("API error: %s (status %d)", resp.String(), resp.StatusCode())
	}
	log.Debug("API request completed", "method", method, "path", path, "status", resp.StatusCode())
	return nil
}

// ListWorkflows retrieves workflows from the server.
func (c *APIClient) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	var result struct {
		Data struct {
			Workflows []*workflow.Workflow `json:"workflows"`
		} `json:"data"`
	}
	if err := c.doRequest(ctx, "GET", "/workflows", nil, &result); err != nil {
		return nil, err
	}
	return result.Data.Workflows, nil
}

// GetWorkflow retrieves a single workflow.
func (c *APIClient) GetWorkflow(ctx context.Context, id core.ID) (*workflow.Workflow, error) {
	var result struct {
		Data workflow.Workflow `json:"data"`
	}
	if err := c.doRequest(ctx, "GET", "/workflows/"+id.String(), nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// CreateWorkflow registers a new workflow.
func (c *APIClient) CreateWorkflow(
	ctx context.Context,
	req wfrouter.CreateWorkflowRequest,
) (*workflow.Workflow, error) {
	var result struct {
		Data workflow.Workflow `json:"data"`
	}
	if err := c.doRequest(ctx, "POST", "/workflows", req, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// DeleteWorkflow removes a workflow.
func (c *APIClient) DeleteWorkflow(ctx context.Context, id core.ID) error {
	return c.doRequest(ctx, "DELETE", "/workflows/"+id.String(), nil, nil)
}

// GetSchedule retrieves the schedule of a workflow.
func (c *APIClient) GetSchedule(ctx context.Context, workflowID core.ID) (*schedule.Info, error) {
	var result struct {
		Data schedule.Info `json:"data"`
	}
	path := "/workflows/" + workflowID.String() + "/schedule"
	if err := c.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// SetSchedule replaces the schedule of a workflow.
func (c *APIClient) SetSchedule(
	ctx context.Context,
	workflowID core.ID,
	req schedule.SetRequest,
) (*schedule.Info, error) {
	var result struct {
		Data schedule.Info `json:"data"`
	}
	path := "/workflows/" + workflowID.String() + "/schedule"
	if err := c.doRequest(ctx, "PUT", path, req, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// UpdateSchedule applies a partial schedule update.
func (c *APIClient) UpdateSchedule(
	ctx context.Context,
	workflowID core.ID,
	req schedule.UpdateRequest,
) (*schedule.Info, error) {
	var result struct {
		Data schedule.Info `json:"data"`
	}
	path := "/workflows/" + workflowID.String() + "/schedule"
	if err := c.doRequest(ctx, "PATCH", path, req, &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

// ClearSchedule removes the schedule of a workflow.
func (c *APIClient) ClearSchedule(ctx context.Context, workflowID core.ID) error {
	path := "/workflows/" + workflowID.String() + "/schedule"
	return c.doRequest(ctx, "DELETE", path, nil, nil)
}

// ListSchedules retrieves every configured schedule.
func (c *APIClient) ListSchedules(ctx context.Context) ([]*schedule.Info, error) {
	var result struct {
		Data struct {
			Schedules []*schedule.Info `json:"schedules"`
		} `json:"data"`
	}
	if err := c.doRequest(ctx, "GET", "/schedules", nil, &result); err != nil {
		return nil, err
	}
	return result.Data.Schedules, nil
}
