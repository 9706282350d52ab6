// Package workflow is the in-memory representation of an n8n workflow
// document: nodes, typed connections, settings. It carries no validation or
// catalog logic of its own — only shape and the structural utilities other
// packages build on (spec §3 "Workflow").
package workflow

import "encoding/json"

// OnErrorPolicy is the closed set of per-node error-handling strategies.
type OnErrorPolicy string

const (
	OnErrorStopWorkflow          OnErrorPolicy = "stopWorkflow"
	OnErrorContinueRegularOutput OnErrorPolicy = "continueRegularOutput"
	OnErrorContinueErrorOutput   OnErrorPolicy = "continueErrorOutput"
)

// Position is the node's 2D canvas location. Both components must be finite
// (spec §3 "position has exactly two finite numbers").
type Position [2]float64

// Node is a single step in a workflow.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    Position       `json:"position"`
	Parameters  map[string]any `json:"parameters"`
	Credentials map[string]any `json:"credentials,omitempty"`
	OnError     OnErrorPolicy  `json:"onError,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	WebhookID   string         `json:"webhookId,omitempty"`
	// ContinueOnFail captures the legacy pre-OnError top-level flag exactly
	// as it appears on the wire in documents saved before onError existed.
	// It is a raw field rather than a Parameters entry because it was never
	// nested under "parameters" in real n8n documents; autofix's wildcard
	// continueOnFail->onError migration reads and clears it directly.
	ContinueOnFail *bool `json:"continueOnFail,omitempty"`
}

// Clone returns a deep copy of the node. Auto-Fix and Diff both require a
// value that can be mutated without observing the original (spec §3
// "applying them produces a new workflow value").
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Parameters = deepCopyValue(n.Parameters).(map[string]any)
	if n.Credentials != nil {
		cp.Credentials = deepCopyValue(n.Credentials).(map[string]any)
	}
	return &cp
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		cp := make(map[string]any, len(t))
		for k, vv := range t {
			cp[k] = deepCopyValue(vv)
		}
		return cp
	case []any:
		cp := make([]any, len(t))
		for i, vv := range t {
			cp[i] = deepCopyValue(vv)
		}
		return cp
	default:
		return v
	}
}

// Endpoint is one target of a connection fan-out.
type Endpoint struct {
	Node        string `json:"node"`
	OutputClass string `json:"type"`
	Index       int    `json:"index"`
}

// Branch is the fan-out of endpoints reached from one source output index.
type Branch []Endpoint

// OutputClassConnections maps a source output's branch index to its fan-out.
// The outer slice index is the source output index (spec §3 "Connection Map").
type OutputClassConnections []Branch

// NodeConnections maps output class (main, ai_languageModel, ...) to its
// per-branch fan-out.
type NodeConnections map[string]OutputClassConnections

// ConnectionMap maps source node name to its per-output-class connections.
type ConnectionMap map[string]NodeConnections

// Settings holds workflow-level execution configuration. Only the fields the
// core inspects are modeled; unrecognized keys on the wire are dropped on
// round-trip.
type Settings struct {
	SaveExecutionProgress    *bool  `json:"saveExecutionProgress,omitempty"`
	SaveManualExecutions     *bool  `json:"saveManualExecutions,omitempty"`
	SaveDataErrorExecution   string `json:"saveDataErrorExecution,omitempty"`
	SaveDataSuccessExecution string `json:"saveDataSuccessExecution,omitempty"`
	ExecutionTimeout         *int   `json:"executionTimeout,omitempty"`
	ErrorWorkflow            string `json:"errorWorkflow,omitempty"`
	Timezone                 string `json:"timezone,omitempty"`
	ExecutionOrder           string `json:"executionOrder,omitempty"`
}

// Tag is a workflow tag reference.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workflow is the full document (spec §3 "Workflow").
type Workflow struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Active      bool          `json:"active,omitempty"`
	Nodes       []*Node       `json:"nodes"`
	Connections ConnectionMap `json:"connections"`
	Settings    Settings      `json:"settings"`
	Tags        []Tag         `json:"tags,omitempty"`
}

// Clone returns a deep copy of the workflow so callers can mutate freely
// without affecting the original (spec §3 Lifecycles).
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}
	cp := &Workflow{
		ID:       w.ID,
		Name:     w.Name,
		Active:   w.Active,
		Settings: w.Settings,
	}
	cp.Nodes = make([]*Node, len(w.Nodes))
	for i, n := range w.Nodes {
		cp.Nodes[i] = n.Clone()
	}
	cp.Connections = make(ConnectionMap, len(w.Connections))
	for src, nc := range w.Connections {
		newNC := make(NodeConnections, len(nc))
		for class, occ := range nc {
			newOCC := make(OutputClassConnections, len(occ))
			for i, branch := range occ {
				newBranch := make(Branch, len(branch))
				copy(newBranch, branch)
				newOCC[i] = newBranch
			}
			newNC[class] = newOCC
		}
		cp.Connections[src] = newNC
	}
	if w.Tags != nil {
		cp.Tags = append([]Tag(nil), w.Tags...)
	}
	return cp
}

// NodeByName returns the node with the given name, or nil.
func (w *Workflow) NodeByName(name string) *Node {
	for _, n := range w.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NodeByID returns the node with the given opaque id, or nil.
func (w *Workflow) NodeByID(id string) *Node {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// DuplicateNames returns every node name used by more than one node (spec §3
// invariant "node names are unique within a workflow").
func (w *Workflow) DuplicateNames() []string {
	seen := make(map[string]int, len(w.Nodes))
	for _, n := range w.Nodes {
		seen[n.Name]++
	}
	var dups []string
	for name, count := range seen {
		if count > 1 {
			dups = append(dups, name)
		}
	}
	return dups
}

// DanglingEndpoints returns every connection endpoint (source or target)
// that references a node name absent from the workflow (spec §3 invariant
// "every connection endpoint references an existing node by name").
func (w *Workflow) DanglingEndpoints() []string {
	names := make(map[string]struct{}, len(w.Nodes))
	for _, n := range w.Nodes {
		names[n.Name] = struct{}{}
	}
	var dangling []string
	for src, nc := range w.Connections {
		if _, ok := names[src]; !ok {
			dangling = append(dangling, src)
		}
		for _, occ := range nc {
			for _, branch := range occ {
				for _, ep := range branch {
					if _, ok := names[ep.Node]; !ok {
						dangling = append(dangling, ep.Node)
					}
				}
			}
		}
	}
	return dangling
}

// RenameNode propagates a node rename through the connection map in a single
// pass (spec §4.5 "Rename propagation", §8 property "Rename propagation").
// It does not touch w.Nodes; callers rename the node value separately.
func (w *Workflow) RenameNode(oldName, newName string) {
	if nc, ok := w.Connections[oldName]; ok {
		delete(w.Connections, oldName)
		w.Connections[newName] = nc
	}
	for _, nc := range w.Connections {
		for _, occ := range nc {
			for _, branch := range occ {
				for i := range branch {
					if branch[i].Node == oldName {
						branch[i].Node = newName
					}
				}
			}
		}
	}
}

// Marshal serializes the workflow to canonical JSON.
func (w *Workflow) Marshal() ([]byte, error) {
	return json.Marshal(w)
}

// Unmarshal parses strict JSON into a Workflow. Lenient parsing (spec §6
// "relaxed superset") is handled by the caller's decoder of choice before
// reaching this function; Unmarshal itself never repairs malformed input.
func Unmarshal(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Connections == nil {
		w.Connections = ConnectionMap{}
	}
	return &w, nil
}
