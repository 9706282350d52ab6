// Package autofix generates and applies corrective edits to a workflow
// document from its diagnostics (spec §4.3 "Auto-Fix Engine"). Detectors run
// in a fixed, independent order; application walks a deep copy of the
// workflow through the jsonpath package, grouped by node and ordered by
// field path.
package autofix

import "github.com/n8n-cli/wf/internal/workflow"

// Type is the closed set of fix kinds (spec §4.3 "Fix type enumeration").
type Type string

const (
	TypeExpressionFormat     Type = "expression-format"
	TypeTypeVersionCorrection Type = "typeversion-correction"
	TypeErrorOutputConfig    Type = "error-output-config"
	TypeNodeTypeCorrection   Type = "node-type-correction"
	TypeWebhookMissingPath   Type = "webhook-missing-path"
	TypeSwitchOptions        Type = "switch-options"
	TypeTypeVersionUpgrade   Type = "typeversion-upgrade"
	TypeVersionMigration     Type = "version-migration"
)

// Confidence is the closed set of fix-confidence bands. A fix may only
// downgrade its type's default confidence, never upgrade it (spec §4.3).
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// rank orders confidence from weakest to strongest so detectors can compare
// a candidate downgrade against a type's default band.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// atMost returns the weaker of c and other — the "never upgrade" rule
// expressed as a single helper (spec §4.3 "may downgrade... never upgrade").
func (c Confidence) atMost(other Confidence) Confidence {
	if other.rank() < c.rank() {
		return other
	}
	return c
}

// Fix is one proposed edit to a single node field (spec §3 "Fix
// Operation"). Path uses the jsonpath dotted/indexed syntax relative to the
// node's Parameters map, e.g. "options.caseSensitive" or "rules[0].output".
type Fix struct {
	Type       Type       `json:"type"`
	Confidence Confidence `json:"confidence"`
	NodeName   string     `json:"nodeName"`
	NodeID     string     `json:"nodeId"`
	NodeType   string     `json:"nodeType"`
	Path       string     `json:"path"`
	Before     any        `json:"before,omitempty"`
	After      any        `json:"after,omitempty"`
	Deleted    bool       `json:"deleted,omitempty"` // true ⇒ deletion; After is then ignored
	Message    string     `json:"message"`

	// subMigrations and remaining carry the extra state typeversion-upgrade
	// needs for application and for PostUpdateGuidance; they are not part
	// of the public JSON surface other fix types expose.
	subMigrations []appliedMigration
	remaining     []remainingIssue
}

// Options configures a generateFixes run (spec §4.3 "Contract").
type Options struct {
	ApplyFixes          bool
	FixTypes            []Type // nil/empty ⇒ all types
	ConfidenceThreshold  Confidence
	MaxFixes            int // 0 ⇒ default 50
	UpgradeVersions     bool
}

const defaultMaxFixes = 50

func (o Options) allows(t Type) bool {
	if len(o.FixTypes) == 0 {
		return true
	}
	for _, want := range o.FixTypes {
		if want == t {
			return true
		}
	}
	return false
}

func (o Options) meetsThreshold(c Confidence) bool {
	if o.ConfidenceThreshold == "" {
		return true
	}
	return c.rank() >= o.ConfidenceThreshold.rank()
}

func (o Options) maxFixes() int {
	if o.MaxFixes > 0 {
		return o.MaxFixes
	}
	return defaultMaxFixes
}

// Stats summarizes a generateFixes run.
type Stats struct {
	TotalFixes   int
	ByType       map[Type]int
	ByConfidence map[Confidence]int
}

// Result is the outcome of a generateFixes run (spec §4.3 "Contract").
type Result struct {
	Fixes            []Fix
	Stats            Stats
	Summary          string
	ModifiedWorkflow *workflow.Workflow // nil unless Options.ApplyFixes
	Guidance         []PostUpdateGuidance
}
