package apiclient

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"
)

const (
	maxAttempts  = 3
	backoffBase  = 1 * time.Second
	backoffCap   = 8 * time.Second
	minRetryWait = 1 * time.Second
)

// retryableTransportErrors mirrors spec §4.4's named transport-error set.
// Go's net package does not expose these as a closed enum, so classification
// runs on the error chain: net.Error timeouts, *net.DNSError, *net.OpError
// (connection reset / refused / unreachable), and io.EOF /
// io.ErrUnexpectedEOF for a connection the server dropped before answering.
// Context cancellation and deadline expiry are never retried here.
func isRetryableTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	return false
}

// isRetryableStatus implements spec §4.4's "5xx or 429" rule. 4xx other
// than 429 are never retried.
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// isIdempotentMethod reports whether method is safe to resend after a
// failed attempt whose outcome on the server is unknown (spec §4.4 "Retry
// policy" is scoped to idempotent operations). GET/HEAD never mutate state;
// PUT and DELETE are idempotent by HTTP semantics (a repeated PUT/DELETE
// leaves the resource in the same end state). POST and PATCH are not: a
// create, webhook fire, or execution-retry that the server already
// processed must not be resent just because the client never saw the
// response.
func isIdempotentMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	default:
		return false
	}
}

// backoffDelay returns the exponential-with-jitter wait before the given
// zero-based attempt, capped at backoffCap (spec §4.4 "Backoff").
func backoffDelay(attempt int, jitter func(n time.Duration) time.Duration) time.Duration {
	d := backoffBase << attempt
	if d > backoffCap || d <= 0 {
		d = backoffCap
	}
	if jitter != nil {
		d = jitter(d)
	}
	return d
}

// retryAfterDelay parses a Retry-After header value (seconds or HTTP-date)
// and applies the spec §4.4 floor: max(1s, header-value). ok is false when
// the header is absent or unparseable, in which case the caller falls back
// to ordinary backoff.
func retryAfterDelay(header string) (d time.Duration, ok bool) {
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil {
		d = time.Duration(secs) * time.Second
	} else if when, err := http.ParseTime(header); err == nil {
		d = time.Until(when)
	} else {
		return 0, false
	}
	if d < minRetryWait {
		d = minRetryWait
	}
	return d, true
}

// sleepOrCancel waits for d, honoring ctx cancellation (spec §5 "Suspension
// points" — sleep between retries must respect the cancellation signal).
func sleepOrCancel(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
