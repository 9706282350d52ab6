package catalog

import "strings"

const (
	basePackagePrefix = "n8n-nodes-base."
	dbFormPrefix      = "nodes-base."
)

// normalizeResult is the outcome of walking the ordered resolution rules in
// spec §4.1 "Type normalization".
type normalizeResult struct {
	fullType string
	ok       bool
}

// normalizeType resolves a user-supplied type string (short, DB-form, full,
// or AI-package form) to the catalog's canonical full type, by consulting
// the exists and byShortName callbacks. Pure and deterministic given
// those callbacks (spec §4.1 "Normalization is pure and deterministic").
func normalizeType(input string, exists func(fullType string) bool, byShortName func(short string) []string, preferTrigger bool) normalizeResult {
	if input == "" {
		return normalizeResult{}
	}

	// (1) exact full-type match, including AI-package forms (start with "@").
	if exists(input) {
		return normalizeResult{fullType: input, ok: true}
	}

	// (2) DB-form expansion: "nodes-base.X" -> "n8n-nodes-base.X".
	if strings.HasPrefix(input, dbFormPrefix) {
		candidate := basePackagePrefix + strings.TrimPrefix(input, dbFormPrefix)
		if exists(candidate) {
			return normalizeResult{fullType: candidate, ok: true}
		}
	}

	// (3) short-name lookup, case-insensitive, preferring non-trigger unless
	// the caller requested the trigger form.
	short := input
	if idx := strings.LastIndex(input, "."); idx >= 0 {
		short = input[idx+1:]
	}
	candidates := byShortName(strings.ToLower(short))
	if len(candidates) == 0 {
		return normalizeResult{}
	}
	if len(candidates) == 1 {
		return normalizeResult{fullType: candidates[0], ok: true}
	}
	// Multiple candidates: prefer the one whose trigger-ness matches the
	// caller's request; non-trigger wins ties otherwise.
	var nonTrigger, trigger string
	for _, c := range candidates {
		isTrig := strings.Contains(strings.ToLower(c), "trigger")
		if isTrig && trigger == "" {
			trigger = c
		}
		if !isTrig && nonTrigger == "" {
			nonTrigger = c
		}
	}
	if preferTrigger && trigger != "" {
		return normalizeResult{fullType: trigger, ok: true}
	}
	if nonTrigger != "" {
		return normalizeResult{fullType: nonTrigger, ok: true}
	}
	return normalizeResult{fullType: candidates[0], ok: true}
}
