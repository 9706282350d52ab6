// Package apiclient is the HTTP client for the remote n8n-compatible server
// API (spec §4.4 "HTTP Client"). It wraps net/http with a per-operation
// retry loop grounded on the teacher's internal/linear/client.go Execute()
// (attempt counting, 429 handling, exponential backoff, context-aware
// sleep), generalized from "retry only on 429" to the full retryable-error
// policy spec §4.4 requires.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/logging"
)

// Per-operation timeout defaults (spec §4.4 "Timeouts").
const (
	TimeoutHealth       = 5 * time.Second
	TimeoutList         = 15 * time.Second
	TimeoutSingleGet    = 30 * time.Second
	TimeoutComplexGet   = 60 * time.Second
	TimeoutWebhookFire  = 30 * time.Second
	TimeoutWebhookAwait = 120 * time.Second
)

// Config is the client's immutable construction configuration.
type Config struct {
	Host          string
	APIKey        string
	InsecureHTTPS bool
	// DefaultTimeout is stored with the configuration but no operation reads
	// it: every operation applies its own Timeout* constant, and a caller can
	// only tighten that by passing a context with an earlier deadline.
	DefaultTimeout time.Duration
}

// Client is the shared HTTP client instance (spec §5 "Shared resources" —
// keep-alive enabled, small per-host socket cap to play well with rate
// limits).
type Client struct {
	cfg          Config
	http         *http.Client
	log          *logging.Logger
	apiKeyHeader string
}

// New builds a Client. The transport's per-host connection cap mirrors
// spec §5's "small per-host socket cap (e.g., 10)".
func New(cfg Config, log *logging.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxConnsPerHost = 10
	transport.MaxIdleConnsPerHost = 10
	if cfg.InsecureHTTPS {
		transport.TLSClientConfig = insecureTLSConfig()
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		cfg:          cfg,
		http:         &http.Client{Transport: transport},
		log:          log,
		apiKeyHeader: "X-N8N-API-KEY",
	}
}

// Request describes one logical API call before retry/sanitization wrapping.
type Request struct {
	Method string
	Path   string // joined with cfg.Host
	Query  map[string]string
	Body   any // marshaled to JSON when non-nil
}

// Do executes req against the server, applying the full retry policy (spec
// §4.4 "Retry policy"). The supplied ctx's deadline bounds the entire
// operation including retries; callers should derive it from one of the
// Timeout* constants via context.WithTimeout.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "marshal request body", err)
		}
		body = b
	}

	url := c.cfg.Host + req.Path
	if len(req.Query) > 0 {
		q := make([]byte, 0, 64)
		q = append(q, '?')
		first := true
		for k, v := range req.Query {
			if !first {
				q = append(q, '&')
			}
			first = false
			q = append(q, []byte(k)...)
			q = append(q, '=')
			q = append(q, []byte(v)...)
		}
		url += string(q)
	}

	idempotent := isIdempotentMethod(req.Method)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bytes.NewReader(body))
		if err != nil {
			return apperr.Wrap(apperr.Internal, "build request", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set(c.apiKeyHeader, c.cfg.APIKey)

		resp, err := c.http.Do(httpReq)
		if err != nil {
			lastErr = c.classifyTransportErr(err)
			if !idempotent || !isRetryableTransportError(err) || attempt == maxAttempts-1 {
				return lastErr
			}
			c.log.Debug("apiclient: retrying after transport error", "attempt", attempt+1, "err", err)
			if serr := sleepOrCancel(ctx, backoffDelay(attempt, jitter)); serr != nil {
				return apperr.Wrap(apperr.Cancelled, "request cancelled during backoff", serr)
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = apperr.Wrap(apperr.TransportError, "read response body", readErr)
			if !idempotent || attempt == maxAttempts-1 {
				return lastErr
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, hasHeader := retryAfterDelay(resp.Header.Get("Retry-After"))
			rlErr := apperr.New(apperr.RateLimited, "rate limited by server")
			rlErr.RetryAfterSeconds = int(retryAfter / time.Second)
			lastErr = rlErr
			if !idempotent || attempt == maxAttempts-1 {
				return lastErr
			}
			wait := retryAfter
			if !hasHeader {
				wait = backoffDelay(attempt, jitter)
			}
			c.log.Debug("apiclient: rate limited, retrying", "attempt", attempt+1, "wait", wait)
			if serr := sleepOrCancel(ctx, wait); serr != nil {
				return apperr.Wrap(apperr.Cancelled, "request cancelled during rate-limit wait", serr)
			}
			continue
		}

		if isRetryableStatus(resp.StatusCode) {
			lastErr = c.errorForStatus(resp.StatusCode, respBody)
			if !idempotent || attempt == maxAttempts-1 {
				return lastErr
			}
			c.log.Debug("apiclient: retrying after server error", "attempt", attempt+1, "status", resp.StatusCode)
			if serr := sleepOrCancel(ctx, backoffDelay(attempt, jitter)); serr != nil {
				return apperr.Wrap(apperr.Cancelled, "request cancelled during backoff", serr)
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return c.errorForStatus(resp.StatusCode, respBody)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return apperr.Wrap(apperr.Internal, "decode response body", err)
			}
		}
		return nil
	}

	return lastErr
}

func (c *Client) classifyTransportErr(err error) error {
	return apperr.Wrap(apperr.TransportError, "request failed", err)
}

func (c *Client) errorForStatus(code int, body []byte) error {
	kind := apperr.ServerError
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = apperr.AuthFailed
	case code == http.StatusNotFound:
		kind = apperr.NotFound
	case code >= 400 && code < 500:
		kind = apperr.ValidationFailed
	}
	msg := fmt.Sprintf("server responded with status %d", code)
	if m := gjson.GetBytes(body, "message"); m.Exists() && m.String() != "" {
		msg = fmt.Sprintf("%s: %s", msg, m.String())
	}
	e := apperr.New(kind, msg).WithDetail(map[string]any{
		"status": code,
		"body":   sanitizeBody(decodeBestEffort(body)),
	})
	return e
}

// statusOf extracts the HTTP status code apiclient attached to err's Detail,
// or 0 if err did not originate from errorForStatus.
func statusOf(err error) int {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return 0
	}
	detail, ok := e.Detail.(map[string]any)
	if !ok {
		return 0
	}
	code, _ := detail["status"].(int)
	return code
}

func decodeBestEffort(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}
	return v
}

// jitter applies +/-20% randomization to d, per spec §4.4 "exponential with
// jitter".
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	delta := float64(d) * 0.2
	offset := (rand.Float64()*2 - 1) * delta
	return d + time.Duration(offset)
}
