package autofix

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/validator"
	"github.com/n8n-cli/wf/internal/workflow"
)

const (
	nodeTypeSwitch  = "n8n-nodes-base.switch"
	nodeTypeWebhook = "n8n-nodes-base.webhook"
)

// detect runs every independent detector over wf in the fixed order spec
// §4.3 defines, returning the unfiltered fix set. Generate applies the
// fixTypes/confidenceThreshold/maxFixes filters afterward.
func detect(wf *workflow.Workflow, diags []validator.Diagnostic, store *catalog.Store, upgradeVersions bool) []Fix {
	var fixes []Fix
	fixes = append(fixes, detectExpressionFormat(wf)...)
	fixes = append(fixes, detectSwitchOptions(wf)...)
	fixes = append(fixes, detectWebhookMissingPath(wf)...)
	fixes = append(fixes, detectNodeTypeCorrection(wf, diags, store)...)
	fixes = append(fixes, detectTypeVersionCorrection(wf, diags)...)
	fixes = append(fixes, detectErrorOutputConfig(wf)...)
	if upgradeVersions {
		fixes = append(fixes, detectTypeVersionUpgrade(wf, store)...)
	}
	fixes = append(fixes, detectVersionMigration(wf, store)...)
	return fixes
}

// detectExpressionFormat finds parameter strings containing "{{ ... }}"
// without the leading "=" (spec §4.3 "Expression prefix").
func detectExpressionFormat(wf *workflow.Workflow) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		walkStrings(n.Parameters, "", func(path, s string) {
			if !strings.Contains(s, "{{") || strings.HasPrefix(s, "=") {
				return
			}
			fixes = append(fixes, Fix{
				Type:       TypeExpressionFormat,
				Confidence: ConfidenceHigh,
				NodeName:   n.Name,
				NodeID:     n.ID,
				Path:       path,
				Before:     s,
				After:      "=" + s,
				Message:    "prefix expression with \"=\" so it evaluates",
			})
		})
	}
	return fixes
}

func walkStrings(v any, path string, emit func(path, s string)) {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			sub := k
			if path != "" {
				sub = path + "." + k
			}
			walkStrings(vv, sub, emit)
		}
	case []any:
		for i, vv := range t {
			walkStrings(vv, path+"["+strconv.Itoa(i)+"]", emit)
		}
	case string:
		emit(path, t)
	}
}

// detectSwitchOptions covers the three Switch/If cosmetic fixes (spec §4.3
// "Switch/If options"): drop an empty options object, synthesize the
// default conditions.options for Switch v3+, and move fallbackOutput out of
// rules into options.
func detectSwitchOptions(wf *workflow.Workflow) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		if n.Type != nodeTypeSwitch {
			continue
		}
		if opts, ok := n.Parameters["options"].(map[string]any); ok && len(opts) == 0 {
			fixes = append(fixes, Fix{
				Type: TypeSwitchOptions, Confidence: ConfidenceHigh,
				NodeName: n.Name, NodeID: n.ID, Path: "options", NodeType: n.Type,
				Before: opts, Deleted: true,
				Message: "remove empty options object",
			})
		}

		if n.TypeVersion >= 3 {
			if conditions, ok := n.Parameters["conditions"].(map[string]any); ok {
				if _, has := conditions["options"]; !has {
					version := 1.0
					if n.TypeVersion >= 3.2 {
						version = 2
					}
					fixes = append(fixes, Fix{
						Type: TypeSwitchOptions, Confidence: ConfidenceHigh,
						NodeName: n.Name, NodeID: n.ID, Path: "conditions.options", NodeType: n.Type,
						After: map[string]any{
							"caseSensitive":  true,
							"leftValue":      "",
							"typeValidation": "strict",
							"version":        version,
						},
						Message: "synthesize default conditions.options",
					})
				}
			}
		}

		if rules, ok := n.Parameters["rules"].(map[string]any); ok {
			if fb, has := rules["fallbackOutput"]; has {
				fixes = append(fixes, Fix{
					Type: TypeSwitchOptions, Confidence: ConfidenceHigh,
					NodeName: n.Name, NodeID: n.ID, Path: "rules.fallbackOutput", NodeType: n.Type,
					Before: fb, Deleted: true,
					Message: "move fallbackOutput from rules into options",
				})
				fixes = append(fixes, Fix{
					Type: TypeSwitchOptions, Confidence: ConfidenceHigh,
					NodeName: n.Name, NodeID: n.ID, Path: "options.fallbackOutput", NodeType: n.Type,
					After:   fb,
					Message: "move fallbackOutput from rules into options",
				})
			}
		}
	}
	return fixes
}

// detectWebhookMissingPath assigns a fresh v4 UUID path to webhook nodes
// missing one, and schedules a version bump when the node predates v2 (spec
// §4.3 "Webhook missing path").
func detectWebhookMissingPath(wf *workflow.Workflow) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		if n.Type != nodeTypeWebhook {
			continue
		}
		if p, ok := n.Parameters["path"].(string); ok && p != "" {
			continue
		}
		id := uuid.NewString()
		fixes = append(fixes, Fix{
			Type: TypeWebhookMissingPath, Confidence: ConfidenceHigh,
			NodeName: n.Name, NodeID: n.ID, Path: "path", NodeType: n.Type,
			After:   id,
			Message: "generate missing webhook path",
		})
		if n.TypeVersion < 2 {
			fixes = append(fixes, Fix{
				Type: TypeWebhookMissingPath, Confidence: ConfidenceHigh,
				NodeName: n.Name, NodeID: n.ID, Path: "typeVersion", NodeType: n.Type,
				Before: n.TypeVersion, After: 2.0,
				Message: "bump typeVersion to 2 so the generated path is honored",
			})
		}
	}
	return fixes
}

// detectNodeTypeCorrection consults the catalog's similarity service for
// UNKNOWN_NODE_TYPE diagnostics, accepting only near-certain matches (spec
// §4.3 "Node-type correction": score >= 0.9).
func detectNodeTypeCorrection(wf *workflow.Workflow, diags []validator.Diagnostic, store *catalog.Store) []Fix {
	var fixes []Fix
	for _, d := range diags {
		if d.Code != validator.CodeUnknownNodeType || d.Location == nil {
			continue
		}
		n := wf.NodeByName(d.Location.NodeName)
		if n == nil {
			continue
		}
		suggestion, ok := store.SuggestSimilarType(n.Type)
		if !ok || suggestion.NameSimilarity < catalog.AutoFixThreshold {
			continue
		}
		fixes = append(fixes, Fix{
			Type: TypeNodeTypeCorrection, Confidence: ConfidenceHigh,
			NodeName: n.Name, NodeID: n.ID, Path: "type", NodeType: n.Type,
			Before: n.Type, After: suggestion.Record.Type,
			Message: "correct unrecognized node type to closest catalog match",
		})
	}
	return fixes
}

// detectTypeVersionCorrection clamps a typeVersion that exceeds its
// catalog-declared maximum back down to that maximum (spec §4.3
// "TypeVersion correction").
func detectTypeVersionCorrection(wf *workflow.Workflow, diags []validator.Diagnostic) []Fix {
	var fixes []Fix
	for _, d := range diags {
		if d.Code != validator.CodeTypeVersionExceedsMax || d.Location == nil {
			continue
		}
		n := wf.NodeByName(d.Location.NodeName)
		if n == nil {
			continue
		}
		maxV, ok := d.Context["maximum"].(float64)
		if !ok {
			continue
		}
		fixes = append(fixes, Fix{
			Type: TypeTypeVersionCorrection, Confidence: ConfidenceMedium,
			NodeName: n.Name, NodeID: n.ID, Path: "typeVersion", NodeType: n.Type,
			Before: n.TypeVersion, After: maxV,
			Message: "clamp typeVersion down to the catalog maximum",
		})
	}
	return fixes
}

// detectErrorOutputConfig removes a node's onError=continueErrorOutput
// declaration when the connection graph has no wired error output (spec
// §4.3 "Error-output config").
func detectErrorOutputConfig(wf *workflow.Workflow) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		if n.OnError != workflow.OnErrorContinueErrorOutput {
			continue
		}
		if hasErrorOutput(wf, n.Name) {
			continue
		}
		fixes = append(fixes, Fix{
			Type: TypeErrorOutputConfig, Confidence: ConfidenceMedium,
			NodeName: n.Name, NodeID: n.ID, Path: "onError", NodeType: n.Type,
			Before: n.OnError, Deleted: true,
			Message: "remove onError=continueErrorOutput; no error output is wired",
		})
	}
	return fixes
}

func hasErrorOutput(wf *workflow.Workflow, nodeName string) bool {
	nc, ok := wf.Connections[nodeName]
	if !ok {
		return false
	}
	branches, ok := nc[classMain]
	return ok && len(branches) > 1 && len(branches[1]) > 0
}

const classMain = "main"

// detectTypeVersionUpgrade runs the version-migration pipeline for every
// catalog-tracked node whose version is outdated, producing a single
// typeversion-upgrade fix per node that carries the applied sub-migrations
// and any remaining manual issues (spec §4.3 "TypeVersion upgrade").
func detectTypeVersionUpgrade(wf *workflow.Workflow, store *catalog.Store) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		rec, ok := store.LookupByType(n.Type)
		if !ok {
			continue
		}
		latest := rec.MaxVersion()
		if latest <= 0 || n.TypeVersion >= latest {
			continue
		}
		clone := n.Clone()
		toVersion, applied, remaining := migrate(clone, n.TypeVersion, latest)

		confidence := ConfidenceHigh
		switch {
		case len(remaining) > 2:
			confidence = ConfidenceLow
		case len(remaining) > 0:
			confidence = ConfidenceMedium
		}
		if rec.HasBreakingChangeBetween(n.TypeVersion, latest) {
			confidence = confidence.atMost(ConfidenceMedium)
		}

		fixes = append(fixes, Fix{
			Type: TypeTypeVersionUpgrade, Confidence: confidence,
			NodeName: n.Name, NodeID: n.ID, Path: "typeVersion", NodeType: n.Type,
			Before:        n.TypeVersion,
			After:         toVersion,
			Message:       "upgrade node to the latest tracked typeVersion",
			subMigrations: applied,
			remaining:     remaining,
		})
	}
	return fixes
}

// detectVersionMigration emits an info-only summary fix for every tracked
// node with a known registry change in its version range. This type is
// never applied even when applyFixes is set (spec §4.3 "Version migration
// (informational)").
func detectVersionMigration(wf *workflow.Workflow, store *catalog.Store) []Fix {
	var fixes []Fix
	for _, n := range wf.Nodes {
		rec, ok := store.LookupByType(n.Type)
		if !ok {
			continue
		}
		latest := rec.MaxVersion()
		if latest <= 0 || n.TypeVersion >= latest {
			continue
		}
		changes := changesFor(n.Type, n.TypeVersion, latest)
		if len(changes) == 0 {
			continue
		}
		var hints []string
		for _, c := range changes {
			hints = append(hints, c.Hint)
		}
		fixes = append(fixes, Fix{
			Type: TypeVersionMigration, Confidence: ConfidenceLow,
			NodeName: n.Name, NodeID: n.ID, NodeType: n.Type,
			Message: strings.Join(hints, "; "),
		})
	}
	return fixes
}
