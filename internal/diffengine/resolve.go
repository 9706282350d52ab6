package diffengine

import (
	"fmt"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

const (
	nodeTypeIf     = "n8n-nodes-base.if"
	nodeTypeSwitch = "n8n-nodes-base.switch"
)

// resolveBranch turns a BranchSelector into a concrete output index by
// consulting the Catalog Store for the source node's type (spec §4.5
// "Symbolic parameter resolution"): "true" -> 0 and "false" -> 1 for
// if-nodes, "case: N" -> N for switch-nodes (validated against the
// declared output arity). An explicit index passes through unresolved.
func resolveBranch(sourceNode *workflow.Node, sel BranchSelector, store *catalog.Store) (int, error) {
	if sel.Explicit {
		return sel.Index, nil
	}

	rec, ok := store.LookupByType(sourceNode.Type)
	if !ok {
		return 0, fmt.Errorf("diffengine: cannot resolve symbolic branch, unknown node type %q", sourceNode.Type)
	}

	switch {
	case sel.Symbol != "" && rec.Type == nodeTypeIf:
		switch sel.Symbol {
		case "true":
			return 0, nil
		case "false":
			return 1, nil
		default:
			return 0, fmt.Errorf("diffengine: unresolvable branch symbol %q for if-node", sel.Symbol)
		}

	case sel.HasCase && rec.Type == nodeTypeSwitch:
		arity, variadic, known := rec.OutputArity(sourceNode.TypeVersion, "main")
		if known && !variadic && sel.Case >= arity {
			return 0, fmt.Errorf("diffengine: case %d exceeds switch node's %d declared outputs", sel.Case, arity)
		}
		return sel.Case, nil

	case sel.Symbol != "":
		return 0, fmt.Errorf("diffengine: node type %q does not support symbolic branch %q", rec.Type, sel.Symbol)

	case sel.HasCase:
		return 0, fmt.Errorf("diffengine: node type %q does not support case selectors", rec.Type)

	default:
		return sel.Index, nil
	}
}
