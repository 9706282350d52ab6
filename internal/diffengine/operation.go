// Package diffengine applies ordered, typed mutations to a workflow
// document (spec §4.5 "Diff Engine"). Operations form a closed tagged
// union; apply either commits a deep-cloned copy in full or, under
// continueOnError, mutates per-operation and records failures as it goes.
package diffengine

import "github.com/n8n-cli/wf/internal/workflow"

// Kind is the closed set of operation tags.
type Kind string

const (
	KindAddNode               Kind = "addNode"
	KindRemoveNode             Kind = "removeNode"
	KindUpdateNode             Kind = "updateNode"
	KindMoveNode               Kind = "moveNode"
	KindEnableNode             Kind = "enableNode"
	KindDisableNode            Kind = "disableNode"
	KindAddConnection          Kind = "addConnection"
	KindRemoveConnection       Kind = "removeConnection"
	KindRewireConnection       Kind = "rewireConnection"
	KindCleanStaleConnections Kind = "cleanStaleConnections"
	KindReplaceConnections     Kind = "replaceConnections"
	KindUpdateSettings         Kind = "updateSettings"
	KindUpdateName             Kind = "updateName"
	KindAddTag                 Kind = "addTag"
	KindRemoveTag              Kind = "removeTag"
	KindActivateWorkflow       Kind = "activateWorkflow"
	KindDeactivateWorkflow     Kind = "deactivateWorkflow"
)

// Operation is the closed tagged-union interface every op type implements.
// kind() is unexported so no type outside this package can satisfy it,
// keeping the union closed (spec §9 design note "Closed tagged-union
// Operation pattern").
type Operation interface {
	Kind() Kind
	kind()
}

type base struct{ k Kind }

func (b base) Kind() Kind { return b.k }
func (b base) kind()      {}

// AddNode inserts a new node.
type AddNode struct {
	base
	Node *workflow.Node
}

func NewAddNode(n *workflow.Node) AddNode { return AddNode{base{KindAddNode}, n} }

// RemoveNode deletes a node by name and every connection touching it.
type RemoveNode struct {
	base
	Name string
}

func NewRemoveNode(name string) RemoveNode { return RemoveNode{base{KindRemoveNode}, name} }

// UpdateNode applies a partial parameter patch, optionally renaming.
type UpdateNode struct {
	base
	Name       string
	NewName    string // empty ⇒ no rename
	Parameters map[string]any
	OnError    *workflow.OnErrorPolicy
	Disabled   *bool
}

func NewUpdateNode(name string) UpdateNode { return UpdateNode{base: base{KindUpdateNode}, Name: name} }

// MoveNode repositions a node on the canvas.
type MoveNode struct {
	base
	Name     string
	Position workflow.Position
}

func NewMoveNode(name string, pos workflow.Position) MoveNode {
	return MoveNode{base{KindMoveNode}, name, pos}
}

// EnableNode / DisableNode toggle a node's Disabled flag.
type EnableNode struct {
	base
	Name string
}
type DisableNode struct {
	base
	Name string
}

func NewEnableNode(name string) EnableNode   { return EnableNode{base{KindEnableNode}, name} }
func NewDisableNode(name string) DisableNode { return DisableNode{base{KindDisableNode}, name} }

// BranchSelector is either an explicit output index or a symbolic branch
// that requires catalog resolution (spec §4.5 "Symbolic parameter
// resolution").
type BranchSelector struct {
	Index    int
	Symbol   string // "true"/"false" for if-nodes, "" if Index is explicit
	Case     int
	HasCase  bool
	Explicit bool
}

// AddConnection wires a new edge.
type AddConnection struct {
	base
	SourceNode  string
	OutputClass string
	Branch      BranchSelector
	TargetNode  string
	TargetIndex int
}

func NewAddConnection(source, target string) AddConnection {
	return AddConnection{base: base{KindAddConnection}, SourceNode: source, OutputClass: "main", TargetNode: target}
}

// RemoveConnection deletes a specific edge.
type RemoveConnection struct {
	base
	SourceNode  string
	OutputClass string
	Branch      BranchSelector
	TargetNode  string
}

func NewRemoveConnection(source, target string) RemoveConnection {
	return RemoveConnection{base: base{KindRemoveConnection}, SourceNode: source, OutputClass: "main", TargetNode: target}
}

// RewireConnection retargets an existing edge's endpoint.
type RewireConnection struct {
	base
	SourceNode  string
	OutputClass string
	Branch      BranchSelector
	FromTarget  string
	ToTarget    string
}

// CleanStaleConnections removes every connection referencing a missing node.
type CleanStaleConnections struct{ base }

func NewCleanStaleConnections() CleanStaleConnections {
	return CleanStaleConnections{base{KindCleanStaleConnections}}
}

// ReplaceConnections swaps the entire connection map.
type ReplaceConnections struct {
	base
	Connections workflow.ConnectionMap
}

// UpdateSettings replaces workflow-level settings.
type UpdateSettings struct {
	base
	Settings workflow.Settings
}

// UpdateName renames the workflow itself (not a node).
type UpdateName struct {
	base
	Name string
}

// AddTag / RemoveTag mutate the workflow's tag list.
type AddTag struct {
	base
	Tag workflow.Tag
}
type RemoveTag struct {
	base
	TagID string
}

// ActivateWorkflow / DeactivateWorkflow toggle Workflow.Active.
type ActivateWorkflow struct{ base }
type DeactivateWorkflow struct{ base }

func NewActivateWorkflow() ActivateWorkflow     { return ActivateWorkflow{base{KindActivateWorkflow}} }
func NewDeactivateWorkflow() DeactivateWorkflow { return DeactivateWorkflow{base{KindDeactivateWorkflow}} }
