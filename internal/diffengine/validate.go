package diffengine

import (
	"fmt"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// validateOp is the conflict detector: name collisions, missing endpoints,
// branch overflow, unresolvable symbols (spec §4.5 "Atomicity"). It never
// mutates wf; it only checks whether applyOp would succeed against the
// workflow's current state.
func validateOp(wf *workflow.Workflow, op Operation, store *catalog.Store) error {
	switch o := op.(type) {
	case AddNode:
		if o.Node == nil || o.Node.Name == "" {
			return fmt.Errorf("addNode: node must have a name")
		}
		if wf.NodeByName(o.Node.Name) != nil {
			return fmt.Errorf("addNode: name %q already in use", o.Node.Name)
		}

	case RemoveNode:
		if wf.NodeByName(o.Name) == nil {
			return fmt.Errorf("removeNode: no node named %q", o.Name)
		}

	case UpdateNode:
		if wf.NodeByName(o.Name) == nil {
			return fmt.Errorf("updateNode: no node named %q", o.Name)
		}
		if o.NewName != "" && o.NewName != o.Name && wf.NodeByName(o.NewName) != nil {
			return fmt.Errorf("updateNode: rename target %q already in use", o.NewName)
		}

	case MoveNode:
		if wf.NodeByName(o.Name) == nil {
			return fmt.Errorf("moveNode: no node named %q", o.Name)
		}

	case EnableNode:
		if wf.NodeByName(o.Name) == nil {
			return fmt.Errorf("enableNode: no node named %q", o.Name)
		}

	case DisableNode:
		if wf.NodeByName(o.Name) == nil {
			return fmt.Errorf("disableNode: no node named %q", o.Name)
		}

	case AddConnection:
		src := wf.NodeByName(o.SourceNode)
		if src == nil {
			return fmt.Errorf("addConnection: no source node %q", o.SourceNode)
		}
		if wf.NodeByName(o.TargetNode) == nil {
			return fmt.Errorf("addConnection: no target node %q", o.TargetNode)
		}
		if _, err := resolveBranch(src, o.Branch, store); err != nil {
			return err
		}

	case RemoveConnection:
		src := wf.NodeByName(o.SourceNode)
		if src == nil {
			return fmt.Errorf("removeConnection: no source node %q", o.SourceNode)
		}
		if _, err := resolveBranch(src, o.Branch, store); err != nil {
			return err
		}

	case RewireConnection:
		src := wf.NodeByName(o.SourceNode)
		if src == nil {
			return fmt.Errorf("rewireConnection: no source node %q", o.SourceNode)
		}
		if wf.NodeByName(o.ToTarget) == nil {
			return fmt.Errorf("rewireConnection: no target node %q", o.ToTarget)
		}
		if _, err := resolveBranch(src, o.Branch, store); err != nil {
			return err
		}

	case CleanStaleConnections, ReplaceConnections, UpdateSettings, UpdateName,
		AddTag, RemoveTag, ActivateWorkflow, DeactivateWorkflow:
		// No preconditions beyond the workflow existing.

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind())
	}
	return nil
}
