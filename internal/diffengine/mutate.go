package diffengine

import (
	"fmt"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// applyOp performs the per-Kind mutation against wf. It assumes validateOp
// has already passed for the same (wf, op) pair; it does not re-check
// preconditions it can trust the validator to have caught, except where a
// check is itself part of computing the mutation (e.g. resolveBranch, which
// both validates and yields the concrete index needed here).
func applyOp(wf *workflow.Workflow, op Operation, store *catalog.Store) error {
	switch o := op.(type) {
	case AddNode:
		wf.Nodes = append(wf.Nodes, o.Node.Clone())

	case RemoveNode:
		removeNode(wf, o.Name)

	case UpdateNode:
		return applyUpdateNode(wf, o)

	case MoveNode:
		n := wf.NodeByName(o.Name)
		if n == nil {
			return fmt.Errorf("moveNode: no node named %q", o.Name)
		}
		n.Position = o.Position

	case EnableNode:
		n := wf.NodeByName(o.Name)
		if n == nil {
			return fmt.Errorf("enableNode: no node named %q", o.Name)
		}
		n.Disabled = false

	case DisableNode:
		n := wf.NodeByName(o.Name)
		if n == nil {
			return fmt.Errorf("disableNode: no node named %q", o.Name)
		}
		n.Disabled = true

	case AddConnection:
		return applyAddConnection(wf, o, store)

	case RemoveConnection:
		return applyRemoveConnection(wf, o, store)

	case RewireConnection:
		return applyRewireConnection(wf, o, store)

	case CleanStaleConnections:
		cleanStaleConnections(wf)

	case ReplaceConnections:
		wf.Connections = o.Connections

	case UpdateSettings:
		wf.Settings = o.Settings

	case UpdateName:
		wf.Name = o.Name

	case AddTag:
		wf.Tags = append(wf.Tags, o.Tag)

	case RemoveTag:
		removeTag(wf, o.TagID)

	case ActivateWorkflow:
		wf.Active = true

	case DeactivateWorkflow:
		wf.Active = false

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind())
	}
	return nil
}

// removeNode deletes a node by name and every connection touching it, as
// source or as target endpoint (spec §4.5 "removeNode also removes every
// connection that touches it").
func removeNode(wf *workflow.Workflow, name string) {
	kept := wf.Nodes[:0]
	for _, n := range wf.Nodes {
		if n.Name != name {
			kept = append(kept, n)
		}
	}
	wf.Nodes = kept

	delete(wf.Connections, name)
	for src, nc := range wf.Connections {
		for class, occ := range nc {
			for i, branch := range occ {
				filtered := branch[:0]
				for _, ep := range branch {
					if ep.Node != name {
						filtered = append(filtered, ep)
					}
				}
				occ[i] = filtered
			}
			nc[class] = occ
		}
		wf.Connections[src] = nc
	}
}

func applyUpdateNode(wf *workflow.Workflow, o UpdateNode) error {
	n := wf.NodeByName(o.Name)
	if n == nil {
		return fmt.Errorf("updateNode: no node named %q", o.Name)
	}
	for k, v := range o.Parameters {
		n.Parameters[k] = v
	}
	if o.OnError != nil {
		n.OnError = *o.OnError
	}
	if o.Disabled != nil {
		n.Disabled = *o.Disabled
	}
	if o.NewName != "" && o.NewName != o.Name {
		wf.RenameNode(o.Name, o.NewName)
		n.Name = o.NewName
	}
	return nil
}

func applyAddConnection(wf *workflow.Workflow, o AddConnection, store *catalog.Store) error {
	src := wf.NodeByName(o.SourceNode)
	if src == nil {
		return fmt.Errorf("addConnection: no source node %q", o.SourceNode)
	}
	idx, err := resolveBranch(src, o.Branch, store)
	if err != nil {
		return err
	}
	class := o.OutputClass
	if class == "" {
		class = "main"
	}
	ep := workflow.Endpoint{Node: o.TargetNode, OutputClass: class, Index: o.TargetIndex}

	if wf.Connections == nil {
		wf.Connections = workflow.ConnectionMap{}
	}
	nc, ok := wf.Connections[o.SourceNode]
	if !ok {
		nc = workflow.NodeConnections{}
		wf.Connections[o.SourceNode] = nc
	}
	occ := nc[class]
	for len(occ) <= idx {
		occ = append(occ, nil)
	}
	for _, existing := range occ[idx] {
		if existing == ep {
			return nil // idempotent: already wired
		}
	}
	occ[idx] = append(occ[idx], ep)
	nc[class] = occ
	return nil
}

func applyRemoveConnection(wf *workflow.Workflow, o RemoveConnection, store *catalog.Store) error {
	src := wf.NodeByName(o.SourceNode)
	if src == nil {
		return fmt.Errorf("removeConnection: no source node %q", o.SourceNode)
	}
	idx, err := resolveBranch(src, o.Branch, store)
	if err != nil {
		return err
	}
	class := o.OutputClass
	if class == "" {
		class = "main"
	}
	nc, ok := wf.Connections[o.SourceNode]
	if !ok {
		return nil
	}
	occ, ok := nc[class]
	if !ok || idx >= len(occ) {
		return nil
	}
	filtered := occ[idx][:0]
	for _, ep := range occ[idx] {
		if ep.Node != o.TargetNode {
			filtered = append(filtered, ep)
		}
	}
	occ[idx] = filtered
	return nil
}

func applyRewireConnection(wf *workflow.Workflow, o RewireConnection, store *catalog.Store) error {
	src := wf.NodeByName(o.SourceNode)
	if src == nil {
		return fmt.Errorf("rewireConnection: no source node %q", o.SourceNode)
	}
	idx, err := resolveBranch(src, o.Branch, store)
	if err != nil {
		return err
	}
	class := o.OutputClass
	if class == "" {
		class = "main"
	}
	nc, ok := wf.Connections[o.SourceNode]
	if !ok {
		return fmt.Errorf("rewireConnection: no connections from %q", o.SourceNode)
	}
	occ, ok := nc[class]
	if !ok || idx >= len(occ) {
		return fmt.Errorf("rewireConnection: no branch %d on output class %q of %q", idx, class, o.SourceNode)
	}
	found := false
	for i, ep := range occ[idx] {
		if ep.Node == o.FromTarget {
			occ[idx][i].Node = o.ToTarget
			found = true
		}
	}
	if !found {
		return fmt.Errorf("rewireConnection: no edge to %q on branch %d of %q", o.FromTarget, idx, o.SourceNode)
	}
	return nil
}

// cleanStaleConnections removes every connection endpoint referencing a
// node name absent from the workflow (spec §4.5 "cleanStaleConnections").
func cleanStaleConnections(wf *workflow.Workflow) {
	names := make(map[string]struct{}, len(wf.Nodes))
	for _, n := range wf.Nodes {
		names[n.Name] = struct{}{}
	}
	for src, nc := range wf.Connections {
		if _, ok := names[src]; !ok {
			delete(wf.Connections, src)
			continue
		}
		for class, occ := range nc {
			for i, branch := range occ {
				filtered := branch[:0]
				for _, ep := range branch {
					if _, ok := names[ep.Node]; ok {
						filtered = append(filtered, ep)
					}
				}
				occ[i] = filtered
			}
			nc[class] = occ
		}
	}
}

func removeTag(wf *workflow.Workflow, tagID string) {
	kept := wf.Tags[:0]
	for _, t := range wf.Tags {
		if t.ID != tagID {
			kept = append(kept, t)
		}
	}
	wf.Tags = kept
}
