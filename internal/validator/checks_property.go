package validator

import (
	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// checkPropertyTypes verifies each node carries its catalog-declared
// required properties (spec §4.2 "per-node property typing").
func checkPropertyTypes(wf *workflow.Workflow, store *catalog.Store, a *accumulator) {
	for _, n := range wf.Nodes {
		rec, ok := store.LookupByType(n.Type)
		if !ok {
			continue // already reported by checkNodeType
		}
		vs, found := rec.VersionSchemaFor(n.TypeVersion)
		if !found {
			continue
		}
		for _, req := range vs.Required {
			if _, present := n.Parameters[req]; !present {
				a.add(Diagnostic{
					Code:     CodeMissingRequired,
					Severity: SeverityError,
					Message:  "node " + quote(n.Name) + " is missing required property " + quote(req),
					Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "parameters." + req},
				})
			}
		}
	}
}
