package validator

import (
	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// checkVersioning flags nodes pinned to a typeVersion older than the
// catalog's latest known version, and nodes whose type carries a breaking
// change between the pinned version and latest (spec §4.2 "version/upgrade
// checks"). The detailed migration registry that knows WHAT changed lives in
// the Auto-Fix Engine; the validator only needs to know THAT an upgrade
// exists, which it gets from the catalog's version list, so no dependency on
// autofix is required here.
func checkVersioning(wf *workflow.Workflow, store *catalog.Store, a *accumulator) {
	for _, n := range wf.Nodes {
		rec, ok := store.LookupByType(n.Type)
		if !ok {
			continue
		}
		max := rec.MaxVersion()
		if max <= 0 || n.TypeVersion >= max {
			continue
		}
		a.add(Diagnostic{
			Code:     CodeTypeVersionOutdated,
			Severity: SeverityWarning,
			Message:  "node " + quote(n.Name) + " is pinned to an outdated typeVersion",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "typeVersion"},
			Context:  map[string]any{"current": n.TypeVersion, "latest": max},
		})

		if rec.HasBreakingChangeBetween(n.TypeVersion, max) {
			a.add(Diagnostic{
				Code:     CodeBreakingChangeExists,
				Severity: SeverityWarning,
				Message:  "node " + quote(n.Name) + " has a breaking change between its pinned version and latest",
				Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "typeVersion"},
				Context:  map[string]any{"current": n.TypeVersion, "latest": max},
			})
		}
	}
}
