package autofix

import (
	"testing"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/validator"
	"github.com/n8n-cli/wf/internal/workflow"
)

func testStore() *catalog.Store {
	return catalog.NewForTesting([]*catalog.Record{
		{
			Type: "n8n-nodes-base.httpRequest", DisplayName: "HTTP Request",
			Versions: []float64{1, 2, 3},
			VersionSpecs: []catalog.VersionSchema{
				{Version: 1}, {Version: 2}, {Version: 3},
			},
		},
		{Type: "n8n-nodes-base.webhook", DisplayName: "Webhook", Versions: []float64{1, 2}},
	})
}

func wfWithNode(n *workflow.Node) *workflow.Workflow {
	return &workflow.Workflow{Name: "wf", Nodes: []*workflow.Node{n}, Connections: workflow.ConnectionMap{}}
}

func TestDetectExpressionFormatMissingPrefix(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", Parameters: map[string]any{"value": "{{ $json.foo }}"}}
	fixes := detectExpressionFormat(wfWithNode(n))
	if len(fixes) != 1 || fixes[0].Type != TypeExpressionFormat {
		t.Fatalf("got %+v", fixes)
	}
	if fixes[0].After != "={{ $json.foo }}" {
		t.Fatalf("after = %v", fixes[0].After)
	}
}

func TestDetectSwitchOptionsRemovesEmptyAndMovesFallback(t *testing.T) {
	n := &workflow.Node{
		Name: "Switch", ID: "n1", Type: nodeTypeSwitch, TypeVersion: 3,
		Parameters: map[string]any{
			"options": map[string]any{},
			"rules":   map[string]any{"fallbackOutput": "extra"},
		},
	}
	fixes := detectSwitchOptions(wfWithNode(n))
	var sawEmptyRemoval, sawFallbackMove, sawDefaultOptions bool
	for _, f := range fixes {
		switch f.Path {
		case "options":
			sawEmptyRemoval = f.Deleted
		case "rules.fallbackOutput":
			sawFallbackMove = f.Deleted
		case "conditions.options":
			sawDefaultOptions = true
		}
	}
	if !sawEmptyRemoval {
		t.Error("expected empty options removal")
	}
	if !sawFallbackMove {
		t.Error("expected fallbackOutput move out of rules")
	}
	_ = sawDefaultOptions // conditions param absent in this fixture, so no default synth expected
}

func TestDetectWebhookMissingPathGeneratesUUIDAndBumpsVersion(t *testing.T) {
	n := &workflow.Node{Name: "Webhook", ID: "n1", Type: nodeTypeWebhook, TypeVersion: 1, Parameters: map[string]any{}}
	fixes := detectWebhookMissingPath(wfWithNode(n))
	var sawPath, sawBump bool
	for _, f := range fixes {
		if f.Path == "path" {
			sawPath = true
			if f.After.(string) == "" {
				t.Error("expected non-empty generated path")
			}
		}
		if f.Path == "typeVersion" {
			sawBump = true
		}
	}
	if !sawPath || !sawBump {
		t.Fatalf("got %+v", fixes)
	}
}

func TestDetectWebhookMissingPathSkipsWhenPresent(t *testing.T) {
	n := &workflow.Node{Name: "Webhook", ID: "n1", Type: nodeTypeWebhook, TypeVersion: 2, Parameters: map[string]any{"path": "already-set"}}
	fixes := detectWebhookMissingPath(wfWithNode(n))
	if len(fixes) != 0 {
		t.Fatalf("expected no fixes, got %+v", fixes)
	}
}

func TestDetectNodeTypeCorrectionAcceptsHighScoreOnly(t *testing.T) {
	n := &workflow.Node{Name: "HTTP", ID: "n1", Type: "n8n-nodes-base.httpRequst", Parameters: map[string]any{}}
	diags := []validator.Diagnostic{
		{Code: validator.CodeUnknownNodeType, Location: &validator.Location{NodeName: "HTTP"}},
	}
	fixes := detectNodeTypeCorrection(wfWithNode(n), diags, testStore())
	if len(fixes) != 1 || fixes[0].After != "n8n-nodes-base.httpRequest" {
		t.Fatalf("got %+v", fixes)
	}
}

func TestDetectTypeVersionCorrection(t *testing.T) {
	n := &workflow.Node{Name: "HTTP", ID: "n1", Type: "n8n-nodes-base.httpRequest", TypeVersion: 5}
	diags := []validator.Diagnostic{
		{
			Code:     validator.CodeTypeVersionExceedsMax,
			Location: &validator.Location{NodeName: "HTTP"},
			Context:  map[string]any{"declared": 5.0, "maximum": 3.0},
		},
	}
	fixes := detectTypeVersionCorrection(wfWithNode(n), diags)
	if len(fixes) != 1 || fixes[0].After != 3.0 {
		t.Fatalf("got %+v", fixes)
	}
}

func TestDetectErrorOutputConfigRemovesUnwiredOnError(t *testing.T) {
	n := &workflow.Node{Name: "HTTP", ID: "n1", Type: "n8n-nodes-base.httpRequest", OnError: workflow.OnErrorContinueErrorOutput}
	fixes := detectErrorOutputConfig(wfWithNode(n))
	if len(fixes) != 1 || fixes[0].Type != TypeErrorOutputConfig {
		t.Fatalf("got %+v", fixes)
	}
}

func TestDetectErrorOutputConfigKeepsWiredOnError(t *testing.T) {
	n := &workflow.Node{Name: "HTTP", ID: "n1", Type: "n8n-nodes-base.httpRequest", OnError: workflow.OnErrorContinueErrorOutput}
	wf := wfWithNode(n)
	wf.Connections["HTTP"] = workflow.NodeConnections{
		classMain: {{}, {{Node: "ErrorHandler"}}},
	}
	fixes := detectErrorOutputConfig(wf)
	if len(fixes) != 0 {
		t.Fatalf("expected no fixes, got %+v", fixes)
	}
}

func TestApplyExpressionFormatFix(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", Parameters: map[string]any{"value": "{{ $json.foo }}"}}
	wf := wfWithNode(n)
	fixes := []Fix{{Type: TypeExpressionFormat, Path: "value", After: "={{ $json.foo }}", NodeName: "Set"}}
	cp := apply(wf, fixes)
	if cp.NodeByName("Set").Parameters["value"] != "={{ $json.foo }}" {
		t.Fatalf("fix not applied: %+v", cp.NodeByName("Set").Parameters)
	}
	if n.Parameters["value"] != "{{ $json.foo }}" {
		t.Fatal("original workflow was mutated")
	}
}

func TestApplyWebhookMissingPathSetsWebhookID(t *testing.T) {
	n := &workflow.Node{Name: "Webhook", ID: "n1", Type: nodeTypeWebhook, TypeVersion: 1, Parameters: map[string]any{}}
	wf := wfWithNode(n)
	fixes := []Fix{
		{Type: TypeWebhookMissingPath, Path: "path", After: "abc-123", NodeName: "Webhook"},
		{Type: TypeWebhookMissingPath, Path: "typeVersion", After: 2.0, NodeName: "Webhook"},
	}
	cp := apply(wf, fixes)
	got := cp.NodeByName("Webhook")
	if got.WebhookID != "abc-123" {
		t.Fatalf("webhookId = %q", got.WebhookID)
	}
	if got.TypeVersion != 2.0 {
		t.Fatalf("typeVersion = %v", got.TypeVersion)
	}
}

func TestGenerateRespectsMaxFixes(t *testing.T) {
	var nodes []*workflow.Node
	for i := 0; i < 5; i++ {
		nodes = append(nodes, &workflow.Node{
			Name: "Set" + string(rune('A'+i)), ID: "n" + string(rune('A'+i)),
			Type: "n8n-nodes-base.set", Parameters: map[string]any{"value": "{{ $json.x }}"},
		})
	}
	wf := &workflow.Workflow{Name: "wf", Nodes: nodes, Connections: workflow.ConnectionMap{}}
	result := Generate(wf, nil, testStore(), Options{MaxFixes: 2})
	if len(result.Fixes) != 2 {
		t.Fatalf("expected 2 fixes after cap, got %d", len(result.Fixes))
	}
}

func TestGenerateConfidenceThresholdFilters(t *testing.T) {
	n := &workflow.Node{Name: "HTTP", ID: "n1", Type: "n8n-nodes-base.httpRequest", OnError: workflow.OnErrorContinueErrorOutput}
	wf := wfWithNode(n)
	result := Generate(wf, nil, testStore(), Options{ConfidenceThreshold: ConfidenceHigh})
	if hasType(result.Fixes, TypeErrorOutputConfig) {
		t.Fatalf("medium-confidence fix should have been filtered: %+v", result.Fixes)
	}
}

func TestGenerateApplyFixesProducesModifiedWorkflow(t *testing.T) {
	n := &workflow.Node{Name: "Set", ID: "n1", Type: "n8n-nodes-base.set", Parameters: map[string]any{"value": "{{ $json.x }}"}}
	wf := wfWithNode(n)
	result := Generate(wf, nil, testStore(), Options{ApplyFixes: true})
	if result.ModifiedWorkflow == nil {
		t.Fatal("expected ModifiedWorkflow to be populated")
	}
	if result.ModifiedWorkflow.NodeByName("Set").Parameters["value"] != "={{ $json.x }}" {
		t.Fatalf("got %+v", result.ModifiedWorkflow.NodeByName("Set").Parameters)
	}
}

func TestMigrateRenamesWildcardProperty(t *testing.T) {
	legacy := true
	n := &workflow.Node{Name: "N", ID: "n1", Type: "n8n-nodes-base.noOp", ContinueOnFail: &legacy}
	toVersion, applied, remaining := migrate(n, 0, 1)
	if toVersion != 1 {
		t.Fatalf("toVersion = %v", toVersion)
	}
	if len(applied) != 1 || applied[0].PropertyName != "continueOnFail" {
		t.Fatalf("applied = %+v", applied)
	}
	if n.ContinueOnFail != nil {
		t.Fatal("continueOnFail should have been cleared")
	}
	if n.OnError != workflow.OnErrorContinueRegularOutput {
		t.Fatalf("onError = %v", n.OnError)
	}
	_ = remaining
}

func TestMigrateLeavesOnErrorAloneWithoutLegacyFlag(t *testing.T) {
	n := &workflow.Node{Name: "N", ID: "n1", Type: "n8n-nodes-base.noOp"}
	_, applied, _ := migrate(n, 0, 1)
	for _, am := range applied {
		if am.PropertyName == "continueOnFail" {
			t.Fatalf("unexpected continueOnFail migration on a node that never set it: %+v", applied)
		}
	}
}

func hasType(fixes []Fix, t Type) bool {
	for _, f := range fixes {
		if f.Type == t {
			return true
		}
	}
	return false
}
