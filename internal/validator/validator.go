package validator

import (
	"strings"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// Stats summarizes a validation run.
type Stats struct {
	TotalNodes   int
	ErrorCount   int
	WarningCount int
	InfoCount    int
}

// Result is the outcome of a validation run (spec §4.2 "validate").
type Result struct {
	Issues []Diagnostic
	Stats  Stats
}

// accumulator collects diagnostics during a run and applies the profile
// filter as each one is appended (spec §4.2 "The profile filters which
// diagnostics survive").
type accumulator struct {
	profile Profile
	issues  []Diagnostic
}

func (a *accumulator) add(d Diagnostic) {
	if !a.profile.Keep(d.Code) {
		return
	}
	a.issues = append(a.issues, d)
}

// recoverToInfo runs fn and, if it panics, appends an info-severity
// diagnostic identifying the checker instead of propagating the panic
// (spec §4.2 "Failure semantics": the validator never throws for user
// input; any internal invariant violation is reported as an info
// diagnostic).
func recoverToInfo(a *accumulator, checkerName string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.add(Diagnostic{
				Code:     CodeInternalInvariant,
				Severity: SeverityInfo,
				Message:  checkerName + " failed internally",
				Context:  map[string]any{"recovered": toString(r)},
			})
		}
	}()
	fn()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "unknown"
}

// Validate runs the checker pipeline in the fixed order from spec §4.2
// "Order of evaluation": structural -> per-node property typing ->
// expression format -> node-specific semantics -> AI topology ->
// version/upgrade checks. Later phases may assume invariants established by
// earlier phases.
func Validate(wf *workflow.Workflow, store *catalog.Store, profile Profile, mode Mode) Result {
	a := &accumulator{profile: profile}

	recoverToInfo(a, "structural", func() { checkStructural(wf, store, a) })

	if mode == ModeOperation || mode == ModeFull {
		recoverToInfo(a, "property-typing", func() { checkPropertyTypes(wf, store, a) })
		recoverToInfo(a, "expression-format", func() { checkExpressions(wf, a) })
		recoverToInfo(a, "node-specific", func() { checkNodeSpecific(wf, a) })
	}

	if mode == ModeFull {
		recoverToInfo(a, "ai-topology", func() { checkAITopology(wf, store, a) })
	}

	if mode == ModeOperation || mode == ModeFull {
		recoverToInfo(a, "versioning", func() { checkVersioning(wf, store, a) })
	}

	stats := Stats{TotalNodes: len(wf.Nodes)}
	for _, d := range a.issues {
		switch d.Severity {
		case SeverityError:
			stats.ErrorCount++
		case SeverityWarning:
			stats.WarningCount++
		case SeverityInfo:
			stats.InfoCount++
		}
	}
	return Result{Issues: a.issues, Stats: stats}
}

// hasExpressionPrefix reports whether s has the "=" expression prefix n8n requires
// for any string containing a "{{ ... }}" template (spec §4.2
// "Expression").
func hasExpressionPrefix(s string) bool {
	return strings.HasPrefix(s, "=")
}
