package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/workflow"
)

// ListWorkflows returns every workflow the credential can see (spec §6
// "Remote server API" — GET /workflows).
func (c *Client) ListWorkflows(ctx context.Context) ([]*workflow.Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutList)
	defer cancel()
	var out struct {
		Data []*workflow.Workflow `json:"data"`
	}
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/workflows"}, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetWorkflow fetches one workflow by id (GET /workflows/{id}).
func (c *Client) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutSingleGet)
	defer cancel()
	var wf workflow.Workflow
	if err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/workflows/" + id}, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// CreateWorkflow creates a new workflow (POST /workflows).
func (c *Client) CreateWorkflow(ctx context.Context, wf *workflow.Workflow) (*workflow.Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutSingleGet)
	defer cancel()
	var created workflow.Workflow
	req := Request{Method: http.MethodPost, Path: "/workflows", Body: wf}
	if err := c.Do(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateWorkflow replaces a workflow via PUT, falling back to a sparse PATCH
// built from fields when the server rejects a full PUT with 405 (spec
// §4.4 "update via PUT with PATCH fallback"). fields is a flat set of
// dotted field paths to values, assembled into a JSON patch body with
// github.com/tidwall/sjson (spec §0 "JSON path / partial-patch
// construction").
func (c *Client) UpdateWorkflow(ctx context.Context, id string, wf *workflow.Workflow, fields map[string]any) (*workflow.Workflow, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutSingleGet)
	defer cancel()

	var updated workflow.Workflow
	putReq := Request{Method: http.MethodPut, Path: "/workflows/" + id, Body: wf}
	err := c.Do(ctx, putReq, &updated)
	if err == nil {
		return &updated, nil
	}
	if statusOf(err) != http.StatusMethodNotAllowed {
		return nil, err
	}

	patchBody, perr := buildPatchBody(fields)
	if perr != nil {
		return nil, apperr.Wrap(apperr.Internal, "build patch body", perr)
	}
	patchReq := Request{Method: http.MethodPatch, Path: "/workflows/" + id, Body: patchBody}
	if err := c.Do(ctx, patchReq, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// buildPatchBody assembles a sparse JSON object from dotted field paths
// using sjson, rather than marshaling a full struct, so the PATCH body only
// contains the fields the caller actually changed.
func buildPatchBody(fields map[string]any) (any, error) {
	doc := "{}"
	var err error
	for path, value := range fields {
		doc, err = sjson.Set(doc, path, value)
		if err != nil {
			return nil, err
		}
	}
	var decoded any
	if err := json.Unmarshal([]byte(doc), &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// DeleteWorkflow removes a workflow (DELETE /workflows/{id}).
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutSingleGet)
	defer cancel()
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: "/workflows/" + id}, nil)
}

// TriggerWebhook invokes a published webhook URL. waitForResponse selects
// the fire-and-forget vs response-awaiting timeout (spec §4.4 "Timeouts").
func (c *Client) TriggerWebhook(ctx context.Context, path string, payload any, waitForResponse bool) (any, error) {
	timeout := TimeoutWebhookFire
	if waitForResponse {
		timeout = TimeoutWebhookAwait
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	var out any
	req := Request{Method: http.MethodPost, Path: path, Body: payload}
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HealthCheck pings the server's healthz endpoint (spec §6 "a healthz
// endpoint outside the versioned prefix").
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, TimeoutHealth)
	defer cancel()
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/healthz"}, nil)
}
