package autofix

import (
	"fmt"
	"sort"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/validator"
	"github.com/n8n-cli/wf/internal/workflow"
)

// Generate implements generateFixes: it runs the detector pipeline, filters
// the result by fixTypes/confidenceThreshold/maxFixes, optionally applies
// the surviving fixes to a copy of the workflow, and generates best-effort
// PostUpdateGuidance (spec §4.3 "Contract").
func Generate(wf *workflow.Workflow, diags []validator.Diagnostic, store *catalog.Store, opts Options) Result {
	all := detect(wf, diags, store, opts.UpgradeVersions)

	var filtered []Fix
	for _, f := range all {
		if !opts.allows(f.Type) {
			continue
		}
		if !opts.meetsThreshold(f.Confidence) {
			continue
		}
		filtered = append(filtered, f)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].NodeName != filtered[j].NodeName {
			return filtered[i].NodeName < filtered[j].NodeName
		}
		return filtered[i].Path < filtered[j].Path
	})

	capped, dropped := capFixes(filtered, opts.maxFixes())

	result := Result{
		Fixes:   capped,
		Stats:   statsFor(capped),
		Summary: summarize(capped, dropped),
	}

	if opts.ApplyFixes {
		result.ModifiedWorkflow = apply(wf, capped)
		result.Guidance = buildGuidance(capped)
	}
	return result
}

func capFixes(fixes []Fix, max int) (kept []Fix, dropped int) {
	if len(fixes) <= max {
		return fixes, 0
	}
	return fixes[:max], len(fixes) - max
}

func statsFor(fixes []Fix) Stats {
	s := Stats{
		TotalFixes:   len(fixes),
		ByType:       map[Type]int{},
		ByConfidence: map[Confidence]int{},
	}
	for _, f := range fixes {
		s.ByType[f.Type]++
		s.ByConfidence[f.Confidence]++
	}
	return s
}

func summarize(fixes []Fix, dropped int) string {
	if len(fixes) == 0 {
		return "no fixes available"
	}
	msg := fmt.Sprintf("%d fix(es) generated", len(fixes))
	if dropped > 0 {
		msg += fmt.Sprintf(" (%d more dropped by maxFixes)", dropped)
	}
	return msg
}
