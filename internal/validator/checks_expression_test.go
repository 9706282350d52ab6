package validator

import (
	"testing"

	"github.com/n8n-cli/wf/internal/workflow"
)

func nodeWithParams(params map[string]any) *workflow.Node {
	return &workflow.Node{Name: "N1", ID: "n1", Type: "n8n-nodes-base.set", Parameters: params}
}

func runExpr(params map[string]any) []Diagnostic {
	wf := &workflow.Workflow{Name: "wf", Nodes: []*workflow.Node{nodeWithParams(params)}, Connections: workflow.ConnectionMap{}}
	a := &accumulator{profile: ProfileStrict}
	checkExpressions(wf, a)
	return a.issues
}

func TestCheckExpressionsMissingPrefix(t *testing.T) {
	issues := runExpr(map[string]any{"value": "{{ $json.foo }}"})
	if !hasCode(issues, CodeExpressionMissingPrefix) {
		t.Fatalf("expected %s, got %+v", CodeExpressionMissingPrefix, issues)
	}
}

func TestCheckExpressionsWithPrefixOK(t *testing.T) {
	issues := runExpr(map[string]any{"value": "={{ $json.foo }}"})
	if hasCode(issues, CodeExpressionMissingPrefix) {
		t.Fatalf("unexpected missing-prefix diagnostic: %+v", issues)
	}
}

func TestCheckExpressionsUnbalanced(t *testing.T) {
	issues := runExpr(map[string]any{"value": "={{ $json.foo "})
	if !hasCode(issues, CodeExpressionUnbalanced) {
		t.Fatalf("expected %s, got %+v", CodeExpressionUnbalanced, issues)
	}
}

func TestCheckExpressionsEmpty(t *testing.T) {
	issues := runExpr(map[string]any{"value": "={{ }}"})
	if !hasCode(issues, CodeExpressionEmpty) {
		t.Fatalf("expected %s, got %+v", CodeExpressionEmpty, issues)
	}
}

func TestCheckExpressionsNested(t *testing.T) {
	issues := runExpr(map[string]any{
		"outer": map[string]any{
			"inner": []any{"={{ $json.a }}", "{{ $json.b }}"},
		},
	})
	if !hasCode(issues, CodeExpressionMissingPrefix) {
		t.Fatalf("expected missing-prefix to surface from nested structure, got %+v", issues)
	}
}

func TestCheckExpressionsDepthCapNeverPanics(t *testing.T) {
	var deep any = "leaf"
	for i := 0; i < 150; i++ {
		deep = map[string]any{"k": deep}
	}
	issues := runExpr(map[string]any{"tree": deep})
	if !hasCode(issues, CodeExpressionDepthExceeded) {
		t.Fatalf("expected depth-exceeded warning, got %+v", issues)
	}
}

func TestCheckExpressionsCyclicVisitedSetNoInfiniteLoop(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic
	issues := runExpr(map[string]any{"tree": cyclic})
	_ = issues // must simply return, not hang or panic
}

func hasCode(issues []Diagnostic, code string) bool {
	for _, d := range issues {
		if d.Code == code {
			return true
		}
	}
	return false
}
