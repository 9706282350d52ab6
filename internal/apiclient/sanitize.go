package apiclient

import (
	"net/http"
	"strings"
)

const redacted = "[REDACTED]"

var secretHeaders = map[string]struct{}{
	"authorization": {},
	"cookie":        {},
	"x-n8n-api-key": {},
	"api-key":       {},
}

var secretBodyKeys = map[string]struct{}{
	"apikey":        {},
	"password":      {},
	"secret":        {},
	"token":         {},
	"authorization": {},
}

const maxSanitizeDepth = 20

// sanitizeHeaders returns a copy of h with every secret-bearing header
// value replaced (spec §4.4 "Sanitization"). Idempotent: re-sanitizing an
// already-redacted header is a no-op since "[REDACTED]" never matches a
// secret header's original value.
func sanitizeHeaders(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vs := range h {
		if _, secret := secretHeaders[strings.ToLower(k)]; secret {
			out[k] = []string{redacted}
			continue
		}
		cp := make([]string, len(vs))
		copy(cp, vs)
		out[k] = cp
	}
	return out
}

// sanitizeBody recursively redacts secret-named keys in a JSON-decoded
// body tree (map[string]any / []any), bounded in depth so a pathological
// document can't blow the stack (spec §4.4 "bounded depth").
func sanitizeBody(v any) any {
	return sanitizeBodyDepth(v, 0)
}

func sanitizeBodyDepth(v any, depth int) any {
	if depth > maxSanitizeDepth {
		return v
	}
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if _, secret := secretBodyKeys[strings.ToLower(k)]; secret {
				out[k] = redacted
				continue
			}
			out[k] = sanitizeBodyDepth(vv, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = sanitizeBodyDepth(vv, depth+1)
		}
		return out
	default:
		return v
	}
}
