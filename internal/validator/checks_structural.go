package validator

import (
	"math"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

func checkStructural(wf *workflow.Workflow, store *catalog.Store, a *accumulator) {
	if wf.Name == "" {
		a.add(Diagnostic{
			Code:     CodeMissingRequiredTopLevel,
			Severity: SeverityError,
			Message:  "workflow is missing required property \"name\"",
			Location: &Location{Path: "name"},
		})
	}
	if len(wf.Nodes) == 0 {
		a.add(Diagnostic{
			Code:     CodeMissingRequiredTopLevel,
			Severity: SeverityError,
			Message:  "workflow is missing required property \"nodes\"",
			Location: &Location{Path: "nodes"},
		})
	}

	for _, dup := range wf.DuplicateNames() {
		a.add(Diagnostic{
			Code:     CodeDuplicateNodeName,
			Severity: SeverityError,
			Message:  "duplicate node name " + quote(dup),
			Location: &Location{NodeName: dup},
		})
	}

	for _, n := range wf.Nodes {
		checkNodeType(n, store, a)
		checkPosition(n, a)
	}

	checkConnectionEndpoints(wf, store, a)
}

func checkNodeType(n *workflow.Node, store *catalog.Store, a *accumulator) {
	if n.Type == "" {
		a.add(Diagnostic{
			Code:     CodeMissingRequired,
			Severity: SeverityError,
			Message:  "node " + quote(n.Name) + " is missing required property \"type\"",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "type"},
		})
		return
	}
	rec, ok := store.LookupByType(n.Type)
	if !ok {
		a.add(Diagnostic{
			Code:     CodeUnknownNodeType,
			Severity: SeverityError,
			Message:  "unknown node type " + quote(n.Type),
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "type"},
			Context:  map[string]any{"type": n.Type},
		})
		return
	}
	if max := rec.MaxVersion(); max > 0 && n.TypeVersion > max {
		a.add(Diagnostic{
			Code:     CodeTypeVersionExceedsMax,
			Severity: SeverityError,
			Message:  "typeVersion exceeds maximum",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "typeVersion"},
			Context:  map[string]any{"declared": n.TypeVersion, "maximum": max},
		})
	}
}

func checkPosition(n *workflow.Node, a *accumulator) {
	x, y := n.Position[0], n.Position[1]
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		a.add(Diagnostic{
			Code:     CodeInvalidPosition,
			Severity: SeverityError,
			Message:  "node " + quote(n.Name) + " has a non-finite position",
			Location: &Location{NodeName: n.Name, NodeID: n.ID, Path: "position"},
		})
	}
}

func checkConnectionEndpoints(wf *workflow.Workflow, store *catalog.Store, a *accumulator) {
	names := make(map[string]*workflow.Node, len(wf.Nodes))
	for _, n := range wf.Nodes {
		names[n.Name] = n
	}

	for src, nc := range wf.Connections {
		srcNode, srcExists := names[src]
		if !srcExists {
			a.add(Diagnostic{
				Code:     CodeInvalidConnectionEnd,
				Severity: SeverityError,
				Message:  "connection source " + quote(src) + " does not exist",
				Location: &Location{NodeName: src},
			})
			continue
		}
		for class, occ := range nc {
			var arity int
			var variadic, known bool
			if rec, ok := store.LookupByType(srcNode.Type); ok {
				arity, variadic, known = rec.OutputArity(srcNode.TypeVersion, class)
			}
			for branchIdx, branch := range occ {
				if known && !variadic && branchIdx >= arity {
					a.add(Diagnostic{
						Code:     CodeBranchIndexOutOfRange,
						Severity: SeverityError,
						Message:  "output branch index out of range for node " + quote(src),
						Location: &Location{NodeName: src, Path: class},
						Context:  map[string]any{"branch": branchIdx, "arity": arity},
					})
				}
				for _, ep := range branch {
					if _, ok := names[ep.Node]; !ok {
						a.add(Diagnostic{
							Code:     CodeInvalidConnectionEnd,
							Severity: SeverityError,
							Message:  "connection target " + quote(ep.Node) + " does not exist",
							Location: &Location{NodeName: src, Path: class},
						})
					}
				}
			}
		}
	}
}

func quote(s string) string { return "\"" + s + "\"" }
