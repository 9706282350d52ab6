package apiclient

import (
	"context"
	"net/http"
)

// Execution is the subset of an n8n execution record the CLI surfaces.
type Execution struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	Status     string `json:"status"`
	StartedAt  string `json:"startedAt"`
	StoppedAt  string `json:"stoppedAt,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// ListExecutions lists executions, optionally scoped to a workflow id
// (spec §6 "GET /executions list").
func (c *Client) ListExecutions(ctx context.Context, workflowID string) ([]Execution, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutList)
	defer cancel()
	var out struct {
		Data []Execution `json:"data"`
	}
	req := Request{Method: http.MethodGet, Path: "/executions"}
	if workflowID != "" {
		req.Query = map[string]string{"workflowId": workflowID}
	}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetExecution fetches one execution, asking for its run data when
// includeData is set — a potentially heavier payload than the other
// single-resource gets, hence the longer timeout, which applies either way
// (spec §4.4 "complex-get (executions with data) 60 s").
func (c *Client) GetExecution(ctx context.Context, id string, includeData bool) (*Execution, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutComplexGet)
	defer cancel()
	var exec Execution
	req := Request{Method: http.MethodGet, Path: "/executions/" + id}
	if includeData {
		req.Query = map[string]string{"includeData": "true"}
	}
	if err := c.Do(ctx, req, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}

// DeleteExecution removes an execution record.
func (c *Client) DeleteExecution(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutSingleGet)
	defer cancel()
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/executions/" + id}, nil)
}

// RetryExecution re-runs a failed execution (spec §6 "POST retry").
func (c *Client) RetryExecution(ctx context.Context, id string) (*Execution, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutComplexGet)
	defer cancel()
	var exec Execution
	req := Request{Method: http.MethodPost, Path: "/executions/" + id + "/retry"}
	if err := c.Do(ctx, req, &exec); err != nil {
		return nil, err
	}
	return &exec, nil
}
