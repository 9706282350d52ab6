package validator

import (
	"testing"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

func versionStore() *catalog.Store {
	return catalog.NewForTesting([]*catalog.Record{
		{
			Type:     "n8n-nodes-base.set",
			Versions: []float64{1, 2, 3},
			VersionSpecs: []catalog.VersionSchema{
				{Version: 1},
				{Version: 2, Breaking: true},
				{Version: 3},
			},
		},
	})
}

func TestCheckVersioningOutdatedAndBreaking(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", TypeVersion: 1}
	wf := &workflow.Workflow{Name: "wf", Nodes: []*workflow.Node{n}, Connections: workflow.ConnectionMap{}}
	a := &accumulator{profile: ProfileStrict}
	checkVersioning(wf, versionStore(), a)
	if !hasCode(a.issues, CodeTypeVersionOutdated) {
		t.Fatalf("expected %s, got %+v", CodeTypeVersionOutdated, a.issues)
	}
	if !hasCode(a.issues, CodeBreakingChangeExists) {
		t.Fatalf("expected %s, got %+v", CodeBreakingChangeExists, a.issues)
	}
}

func TestCheckVersioningUpToDateNoDiagnostic(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", TypeVersion: 3}
	wf := &workflow.Workflow{Name: "wf", Nodes: []*workflow.Node{n}, Connections: workflow.ConnectionMap{}}
	a := &accumulator{profile: ProfileStrict}
	checkVersioning(wf, versionStore(), a)
	if hasCode(a.issues, CodeTypeVersionOutdated) {
		t.Fatalf("unexpected diagnostic: %+v", a.issues)
	}
}

func TestCheckVersioningOutdatedNoBreakingChange(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", TypeVersion: 2}
	wf := &workflow.Workflow{Name: "wf", Nodes: []*workflow.Node{n}, Connections: workflow.ConnectionMap{}}
	a := &accumulator{profile: ProfileStrict}
	checkVersioning(wf, versionStore(), a)
	if !hasCode(a.issues, CodeTypeVersionOutdated) {
		t.Fatalf("expected outdated diagnostic, got %+v", a.issues)
	}
	if hasCode(a.issues, CodeBreakingChangeExists) {
		t.Fatalf("unexpected breaking-change diagnostic between 2 and 3: %+v", a.issues)
	}
}
