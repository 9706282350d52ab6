package autofix

import (
	"sort"

	"github.com/n8n-cli/wf/internal/jsonpath"
	"github.com/n8n-cli/wf/internal/workflow"
)

// topLevelFields are Fix.Path values that address a Node struct field
// directly rather than a parameters path. Everything else walks through
// jsonpath against the node's Parameters map (spec §4.3 "Application").
var topLevelFields = map[string]bool{"type": true, "typeVersion": true, "webhookId": true, "onError": true}

// apply constructs a deep copy of wf, groups fixes by target node, and
// applies each in field-path order through the jsonpath walker (spec §4.3
// "Application"). It returns the modified workflow; fixes of type
// TypeVersionMigration are always skipped since that type is never applied.
func apply(wf *workflow.Workflow, fixes []Fix) *workflow.Workflow {
	cp := wf.Clone()
	byNode := groupByNode(fixes)

	for nodeName, nodeFixes := range byNode {
		n := cp.NodeByName(nodeName)
		if n == nil {
			continue
		}
		sort.Slice(nodeFixes, func(i, j int) bool { return nodeFixes[i].Path < nodeFixes[j].Path })
		for _, f := range nodeFixes {
			applyOne(n, f)
		}
	}
	return cp
}

func groupByNode(fixes []Fix) map[string][]Fix {
	byNode := make(map[string][]Fix)
	for _, f := range fixes {
		if f.Type == TypeVersionMigration {
			continue
		}
		byNode[f.NodeName] = append(byNode[f.NodeName], f)
	}
	return byNode
}

func applyOne(n *workflow.Node, f Fix) {
	switch f.Type {
	case TypeWebhookMissingPath:
		applyWebhookMissingPath(n, f)
		return
	case TypeTypeVersionUpgrade:
		applyTypeVersionUpgrade(n, f)
		return
	}

	if topLevelFields[f.Path] {
		applyTopLevel(n, f)
		return
	}
	applyParameterPath(n, f)
}

func applyTopLevel(n *workflow.Node, f Fix) {
	switch f.Path {
	case "type":
		if s, ok := f.After.(string); ok {
			n.Type = s
		}
	case "typeVersion":
		if v, ok := f.After.(float64); ok {
			n.TypeVersion = v
		}
	case "webhookId":
		if s, ok := f.After.(string); ok {
			n.WebhookID = s
		}
	case "onError":
		if f.Deleted {
			n.OnError = ""
		}
	}
}

func applyParameterPath(n *workflow.Node, f Fix) {
	if n.Parameters == nil {
		n.Parameters = map[string]any{}
	}
	path, err := jsonpath.Parse(f.Path)
	if err != nil {
		return
	}
	if f.Deleted {
		jsonpath.Delete(n.Parameters, path)
		return
	}
	_ = jsonpath.Set(n.Parameters, path, f.After)
}

// applyWebhookMissingPath covers the special-case rule: also sets
// webhookId and bumps typeVersion to 2 if below (spec §4.3 "Special-case
// application rules").
func applyWebhookMissingPath(n *workflow.Node, f Fix) {
	switch f.Path {
	case "path":
		if s, ok := f.After.(string); ok {
			applyParameterPath(n, f)
			n.WebhookID = s
		}
	case "typeVersion":
		if v, ok := f.After.(float64); ok {
			n.TypeVersion = v
		}
	}
}

// applyTypeVersionUpgrade updates typeVersion and replays the version
// migration pipeline directly against the real node so every sub-migration
// strategy (add/remove/rename/set-default) runs through the same path
// walker used at detection time (spec §4.3 "Special-case application
// rules"). migrate is pure over registry + current parameter state, so
// re-running it here reproduces exactly what detectTypeVersionUpgrade
// computed against the throwaway clone.
func applyTypeVersionUpgrade(n *workflow.Node, f Fix) {
	from, _ := f.Before.(float64)
	to, _ := f.After.(float64)
	migrate(n, from, to)
	n.TypeVersion = to
}
