package diffengine

import (
	"encoding/json"
	"fmt"

	"github.com/n8n-cli/wf/internal/workflow"
)

// wireOp is the on-the-wire shape of one operation in a diff file: every
// field any Kind might need, discriminated by Kind. Unused fields for a
// given Kind are simply absent from the JSON.
type wireOp struct {
	Kind Kind `json:"kind"`

	Node *workflow.Node `json:"node,omitempty"`

	Name    string `json:"name,omitempty"`
	NewName string `json:"newName,omitempty"`

	Parameters map[string]any           `json:"parameters,omitempty"`
	OnError    *workflow.OnErrorPolicy  `json:"onError,omitempty"`
	Disabled   *bool                    `json:"disabled,omitempty"`
	Position   *workflow.Position       `json:"position,omitempty"`

	SourceNode  string          `json:"sourceNode,omitempty"`
	OutputClass string          `json:"outputClass,omitempty"`
	Branch      *wireBranch     `json:"branch,omitempty"`
	TargetNode  string          `json:"targetNode,omitempty"`
	TargetIndex int             `json:"targetIndex,omitempty"`
	FromTarget  string          `json:"fromTarget,omitempty"`
	ToTarget    string          `json:"toTarget,omitempty"`

	Connections workflow.ConnectionMap `json:"connections,omitempty"`
	Settings    *workflow.Settings     `json:"settings,omitempty"`
	Tag         *workflow.Tag          `json:"tag,omitempty"`
	TagID       string                 `json:"tagId,omitempty"`
}

// wireBranch is the JSON form of BranchSelector: either an explicit integer
// index, a symbolic branch name ("true"/"false" for if-nodes), or a switch
// case number.
type wireBranch struct {
	Index  *int    `json:"index,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
	Case   *int    `json:"case,omitempty"`
}

func (b *wireBranch) toSelector() BranchSelector {
	if b == nil {
		return BranchSelector{Explicit: true}
	}
	if b.Case != nil {
		return BranchSelector{Case: *b.Case, HasCase: true}
	}
	if b.Symbol != "" {
		return BranchSelector{Symbol: b.Symbol}
	}
	if b.Index != nil {
		return BranchSelector{Index: *b.Index, Explicit: true}
	}
	return BranchSelector{Explicit: true}
}

// DecodeOperations parses a JSON array of wire-format operations into the
// closed Operation set, in file order (spec §4.5: "operations apply in
// caller-specified order").
func DecodeOperations(data []byte) ([]Operation, error) {
	var wire []wireOp
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("diffengine: decode operations: %w", err)
	}
	ops := make([]Operation, len(wire))
	for i, w := range wire {
		op, err := w.toOperation()
		if err != nil {
			return nil, fmt.Errorf("diffengine: operation %d: %w", i, err)
		}
		ops[i] = op
	}
	return ops, nil
}

func (w wireOp) toOperation() (Operation, error) {
	switch w.Kind {
	case KindAddNode:
		if w.Node == nil {
			return nil, fmt.Errorf("addNode requires \"node\"")
		}
		return NewAddNode(w.Node), nil
	case KindRemoveNode:
		return NewRemoveNode(w.Name), nil
	case KindUpdateNode:
		op := NewUpdateNode(w.Name)
		op.NewName = w.NewName
		op.Parameters = w.Parameters
		op.OnError = w.OnError
		op.Disabled = w.Disabled
		return op, nil
	case KindMoveNode:
		if w.Position == nil {
			return nil, fmt.Errorf("moveNode requires \"position\"")
		}
		return NewMoveNode(w.Name, *w.Position), nil
	case KindEnableNode:
		return NewEnableNode(w.Name), nil
	case KindDisableNode:
		return NewDisableNode(w.Name), nil
	case KindAddConnection:
		op := NewAddConnection(w.SourceNode, w.TargetNode)
		if w.OutputClass != "" {
			op.OutputClass = w.OutputClass
		}
		op.Branch = w.Branch.toSelector()
		op.TargetIndex = w.TargetIndex
		return op, nil
	case KindRemoveConnection:
		op := NewRemoveConnection(w.SourceNode, w.TargetNode)
		if w.OutputClass != "" {
			op.OutputClass = w.OutputClass
		}
		op.Branch = w.Branch.toSelector()
		return op, nil
	case KindRewireConnection:
		outputClass := w.OutputClass
		if outputClass == "" {
			outputClass = "main"
		}
		return RewireConnection{
			base:        base{KindRewireConnection},
			SourceNode:  w.SourceNode,
			OutputClass: outputClass,
			Branch:      w.Branch.toSelector(),
			FromTarget:  w.FromTarget,
			ToTarget:    w.ToTarget,
		}, nil
	case KindCleanStaleConnections:
		return NewCleanStaleConnections(), nil
	case KindReplaceConnections:
		return ReplaceConnections{base: base{KindReplaceConnections}, Connections: w.Connections}, nil
	case KindUpdateSettings:
		if w.Settings == nil {
			return nil, fmt.Errorf("updateSettings requires \"settings\"")
		}
		return UpdateSettings{base: base{KindUpdateSettings}, Settings: *w.Settings}, nil
	case KindUpdateName:
		return UpdateName{base: base{KindUpdateName}, Name: w.Name}, nil
	case KindAddTag:
		if w.Tag == nil {
			return nil, fmt.Errorf("addTag requires \"tag\"")
		}
		return AddTag{base: base{KindAddTag}, Tag: *w.Tag}, nil
	case KindRemoveTag:
		return RemoveTag{base: base{KindRemoveTag}, TagID: w.TagID}, nil
	case KindActivateWorkflow:
		return NewActivateWorkflow(), nil
	case KindDeactivateWorkflow:
		return NewDeactivateWorkflow(), nil
	default:
		return nil, fmt.Errorf("unknown operation kind %q", w.Kind)
	}
}
