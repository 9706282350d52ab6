package diffengine

import (
	"testing"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

func testStore() *catalog.Store {
	return catalog.NewForTesting([]*catalog.Record{
		{Type: "n8n-nodes-base.if", DisplayName: "If", Category: "Core", Versions: []float64{1, 2}},
		{
			Type: "n8n-nodes-base.switch", DisplayName: "Switch", Category: "Core",
			Versions: []float64{1, 2, 3},
			VersionSpecs: []catalog.VersionSchema{
				{Version: 3, Outputs: []catalog.OutputClass{{Name: "main", Arity: 4}}},
			},
		},
		{Type: "n8n-nodes-base.set", DisplayName: "Set", Category: "Core", Versions: []float64{1, 2, 3}},
	})
}

func node(name, typ string) *workflow.Node {
	return &workflow.Node{
		ID:         name + "-id",
		Name:       name,
		Type:       typ,
		Parameters: map[string]any{},
	}
}

func wf(nodes ...*workflow.Node) *workflow.Workflow {
	return &workflow.Workflow{
		Name:        "test",
		Nodes:       nodes,
		Connections: workflow.ConnectionMap{},
	}
}

func TestApplyAddNode(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	res := Apply(w, []Operation{NewAddNode(node("B", "n8n-nodes-base.set"))}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Workflow.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Workflow.Nodes))
	}
	if len(w.Nodes) != 1 {
		t.Fatalf("original workflow must not be mutated, got %d nodes", len(w.Nodes))
	}
}

func TestApplyAddNodeRejectsDuplicateName(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	res := Apply(w, []Operation{NewAddNode(node("A", "n8n-nodes-base.set"))}, testStore(), Options{})
	if len(res.Errors) == 0 {
		t.Fatal("expected a name-collision error")
	}
}

func TestApplyRemoveNodeCascadesConnections(t *testing.T) {
	a, b := node("A", "n8n-nodes-base.set"), node("B", "n8n-nodes-base.set")
	w := wf(a, b)
	w.Connections["A"] = workflow.NodeConnections{
		"main": workflow.OutputClassConnections{
			workflow.Branch{{Node: "B", OutputClass: "main", Index: 0}},
		},
	}
	res := Apply(w, []Operation{NewRemoveNode("B")}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Workflow.Nodes) != 1 {
		t.Fatalf("expected 1 node left, got %d", len(res.Workflow.Nodes))
	}
	if len(res.Workflow.Connections["A"]["main"][0]) != 0 {
		t.Fatal("expected dangling connection to B to be removed")
	}
}

func TestApplyUpdateNodeRenamePropagates(t *testing.T) {
	a, b := node("A", "n8n-nodes-base.set"), node("B", "n8n-nodes-base.set")
	w := wf(a, b)
	w.Connections["A"] = workflow.NodeConnections{
		"main": workflow.OutputClassConnections{
			workflow.Branch{{Node: "B", OutputClass: "main", Index: 0}},
		},
	}
	op := NewUpdateNode("A")
	op.NewName = "A2"
	res := Apply(w, []Operation{op}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Workflow.NodeByName("A2") == nil {
		t.Fatal("expected renamed node A2")
	}
	if _, ok := res.Workflow.Connections["A"]; ok {
		t.Fatal("expected old source key removed")
	}
	if _, ok := res.Workflow.Connections["A2"]; !ok {
		t.Fatal("expected connections moved to new source key")
	}
}

func TestApplyUpdateNodeRenameCollision(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"), node("B", "n8n-nodes-base.set"))
	op := NewUpdateNode("A")
	op.NewName = "B"
	res := Apply(w, []Operation{op}, testStore(), Options{})
	if len(res.Errors) == 0 {
		t.Fatal("expected rename-collision error")
	}
}

func TestApplyAddConnectionResolvesIfBranchSymbol(t *testing.T) {
	a, b := node("A", "n8n-nodes-base.if"), node("B", "n8n-nodes-base.set")
	w := wf(a, b)
	op := NewAddConnection("A", "B")
	op.Branch = BranchSelector{Symbol: "false"}
	res := Apply(w, []Operation{op}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	occ := res.Workflow.Connections["A"]["main"]
	if len(occ) < 2 || len(occ[1]) != 1 || occ[1][0].Node != "B" {
		t.Fatalf("expected edge on false(index 1) branch, got %+v", occ)
	}
}

func TestApplyAddConnectionSwitchCaseOverflow(t *testing.T) {
	a, b := node("A", "n8n-nodes-base.switch"), node("B", "n8n-nodes-base.set")
	a.TypeVersion = 3
	w := wf(a, b)
	op := NewAddConnection("A", "B")
	op.Branch = BranchSelector{HasCase: true, Case: 99}
	res := Apply(w, []Operation{op}, testStore(), Options{})
	if len(res.Errors) == 0 {
		t.Fatal("expected branch-overflow error for out-of-range switch case")
	}
}

func TestApplyRewireConnection(t *testing.T) {
	a, b, c := node("A", "n8n-nodes-base.set"), node("B", "n8n-nodes-base.set"), node("C", "n8n-nodes-base.set")
	w := wf(a, b, c)
	w.Connections["A"] = workflow.NodeConnections{
		"main": workflow.OutputClassConnections{
			workflow.Branch{{Node: "B", OutputClass: "main", Index: 0}},
		},
	}
	op := RewireConnection{base: base{KindRewireConnection}, SourceNode: "A", OutputClass: "main", FromTarget: "B", ToTarget: "C"}
	res := Apply(w, []Operation{op}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	occ := res.Workflow.Connections["A"]["main"]
	if occ[0][0].Node != "C" {
		t.Fatalf("expected edge retargeted to C, got %+v", occ)
	}
}

func TestApplyCleanStaleConnections(t *testing.T) {
	a := node("A", "n8n-nodes-base.set")
	w := wf(a)
	w.Connections["A"] = workflow.NodeConnections{
		"main": workflow.OutputClassConnections{
			workflow.Branch{{Node: "ghost", OutputClass: "main", Index: 0}},
		},
	}
	w.Connections["ghost-source"] = workflow.NodeConnections{}

	res := Apply(w, []Operation{NewCleanStaleConnections()}, testStore(), Options{})
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if _, ok := res.Workflow.Connections["ghost-source"]; ok {
		t.Fatal("expected stale source entry removed")
	}
	if len(res.Workflow.Connections["A"]["main"][0]) != 0 {
		t.Fatal("expected dangling target endpoint removed")
	}
}

func TestApplyActivateDeactivate(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	res := Apply(w, []Operation{NewActivateWorkflow()}, testStore(), Options{})
	if !res.Workflow.Active {
		t.Fatal("expected workflow activated")
	}
	res2 := Apply(res.Workflow, []Operation{NewDeactivateWorkflow()}, testStore(), Options{})
	if res2.Workflow.Active {
		t.Fatal("expected workflow deactivated")
	}
}

func TestApplyTagsAddRemove(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	res := Apply(w, []Operation{AddTag{base{KindAddTag}, workflow.Tag{ID: "t1", Name: "prod"}}}, testStore(), Options{})
	if len(res.Workflow.Tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(res.Workflow.Tags))
	}
	res2 := Apply(res.Workflow, []Operation{RemoveTag{base{KindRemoveTag}, "t1"}}, testStore(), Options{})
	if len(res2.Workflow.Tags) != 0 {
		t.Fatalf("expected tag removed, got %d", len(res2.Workflow.Tags))
	}
}

func TestApplyAtomicRollsBackOnFailure(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	ops := []Operation{
		NewActivateWorkflow(),
		NewRemoveNode("does-not-exist"),
	}
	res := Apply(w, ops, testStore(), Options{})
	if len(res.Errors) == 0 {
		t.Fatal("expected an error from the second operation")
	}
	if res.Workflow.Active {
		t.Fatal("atomic mode must not commit the first operation when a later one fails")
	}
}

func TestApplyContinueOnErrorAppliesSurvivors(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	ops := []Operation{
		NewActivateWorkflow(),
		NewRemoveNode("does-not-exist"),
	}
	res := Apply(w, ops, testStore(), Options{ContinueOnError: true})
	if len(res.Errors) != 1 {
		t.Fatalf("expected exactly 1 recorded error, got %d", len(res.Errors))
	}
	if !res.Workflow.Active {
		t.Fatal("continueOnError must keep successfully applied operations")
	}
}

func TestApplyDryRunLeavesWorkflowUntouched(t *testing.T) {
	w := wf(node("A", "n8n-nodes-base.set"))
	res := Apply(w, []Operation{NewActivateWorkflow()}, testStore(), Options{DryRun: true})
	if res.Workflow.Active {
		t.Fatal("dry run must not mutate")
	}
	if len(res.Applied) != 1 {
		t.Fatalf("expected dry run to report the operation as applied, got %d", len(res.Applied))
	}
}

func TestResolveBranchRejectsUnknownSymbolForNonIfNode(t *testing.T) {
	a := node("A", "n8n-nodes-base.set")
	_, err := resolveBranch(a, BranchSelector{Symbol: "true"}, testStore())
	if err == nil {
		t.Fatal("expected error: set-node does not support symbolic branches")
	}
}
