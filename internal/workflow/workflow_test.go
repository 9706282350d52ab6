package workflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleWorkflow() *Workflow {
	return &Workflow{
		ID:   "wf1",
		Name: "Sample",
		Nodes: []*Node{
			{ID: "1", Name: "A", Type: "n8n-nodes-base.set", Parameters: map[string]any{"x": 1}},
			{ID: "2", Name: "B", Type: "n8n-nodes-base.noOp", Parameters: map[string]any{}},
		},
		Connections: ConnectionMap{
			"A": NodeConnections{
				"main": OutputClassConnections{
					Branch{{Node: "B", OutputClass: "main", Index: 0}},
				},
			},
		},
		Tags: []Tag{{ID: "t1", Name: "prod"}},
	}
}

func TestCloneProducesDeepEqualIndependentCopy(t *testing.T) {
	orig := sampleWorkflow()
	clone := orig.Clone()

	if diff := cmp.Diff(orig, clone); diff != "" {
		t.Fatalf("clone diverged from original before any mutation (-orig +clone):\n%s", diff)
	}

	clone.Nodes[0].Parameters["x"] = 999
	clone.Connections["A"]["main"][0][0].Node = "Z"
	clone.Tags[0].Name = "staging"

	if orig.Nodes[0].Parameters["x"] != 1 {
		t.Fatal("mutating the clone's node parameters affected the original")
	}
	if orig.Connections["A"]["main"][0][0].Node != "B" {
		t.Fatal("mutating the clone's connections affected the original")
	}
	if orig.Tags[0].Name != "prod" {
		t.Fatal("mutating the clone's tags affected the original")
	}
}

func TestRenameNodePropagatesThroughConnectionsOnly(t *testing.T) {
	wf := sampleWorkflow()
	wf.RenameNode("A", "A2")

	want := ConnectionMap{
		"A2": NodeConnections{
			"main": OutputClassConnections{
				Branch{{Node: "B", OutputClass: "main", Index: 0}},
			},
		},
	}
	if diff := cmp.Diff(want, wf.Connections); diff != "" {
		t.Fatalf("unexpected connections after rename (-want +got):\n%s", diff)
	}
	if wf.Nodes[0].Name != "A" {
		t.Fatal("RenameNode must not rename the node value itself; callers do that separately")
	}
}

func TestDuplicateNamesAndDanglingEndpoints(t *testing.T) {
	wf := sampleWorkflow()
	wf.Nodes = append(wf.Nodes, &Node{ID: "3", Name: "A", Type: "n8n-nodes-base.noOp"})

	dups := wf.DuplicateNames()
	if len(dups) != 1 || dups[0] != "A" {
		t.Fatalf("expected duplicate name 'A', got %v", dups)
	}

	wf.Connections["A"]["main"][0][0].Node = "missing"
	dangling := wf.DanglingEndpoints()
	found := false
	for _, d := range dangling {
		if d == "missing" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'missing' among dangling endpoints, got %v", dangling)
	}
}
