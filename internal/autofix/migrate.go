package autofix

import (
	"github.com/n8n-cli/wf/internal/jsonpath"
	"github.com/n8n-cli/wf/internal/workflow"
)

// appliedMigration records one sub-migration that migrate applied to a
// node's parameters (spec §4.3 "a sequence of applied sub-migrations", each
// "a {propertyName, action, oldValue?, newValue?} tuple").
type appliedMigration struct {
	PropertyName string     `json:"propertyName"`
	Action       ChangeKind `json:"action"`
	OldValue     any        `json:"oldValue,omitempty"`
	NewValue     any        `json:"newValue,omitempty"`
}

// remainingIssue is a breaking change migrate could not apply automatically.
type remainingIssue struct {
	PropertyName string `json:"propertyName"`
	Hint         string `json:"hint"`
	IsBreaking   bool   `json:"isBreaking"`
}

// migrate finds every auto-migratable registry change whose (fromVersion,
// toVersion) range overlaps (current, latest), applies them in registry
// order directly against node's parameters, and returns the resulting
// version, the sub-migrations applied, and the changes that still need
// manual attention (spec §4.3.1 "migrate(node)").
func migrate(node *workflow.Node, current, latest float64) (toVersion float64, applied []appliedMigration, remaining []remainingIssue) {
	for _, bc := range changesFor(node.Type, current, latest) {
		if !bc.AutoMigratable {
			remaining = append(remaining, remainingIssue{
				PropertyName: bc.PropertyName,
				Hint:         bc.Hint,
				IsBreaking:   bc.IsBreaking,
			})
			continue
		}
		am, ok := applyMigrationStrategy(node, bc)
		if ok {
			applied = append(applied, am)
		}
	}
	return latest, applied, remaining
}

func applyMigrationStrategy(node *workflow.Node, bc BreakingChange) (appliedMigration, bool) {
	if bc.PropertyName == "continueOnFail" && bc.Strategy == StrategyRenameProperty {
		return migrateContinueOnFail(node)
	}

	path, err := jsonpath.Parse(bc.PropertyName)
	if err != nil {
		return appliedMigration{}, false
	}

	switch bc.Strategy {
	case StrategyAddProperty:
		if _, exists := jsonpath.Get(node.Parameters, path); exists {
			return appliedMigration{}, false
		}
		val := bc.StrategyParams["value"]
		if err := jsonpath.Set(node.Parameters, path, val); err != nil {
			return appliedMigration{}, false
		}
		return appliedMigration{PropertyName: bc.PropertyName, Action: ChangeAdded, NewValue: val}, true

	case StrategyRemoveProperty:
		old, existed := jsonpath.Get(node.Parameters, path)
		if !existed {
			return appliedMigration{}, false
		}
		jsonpath.Delete(node.Parameters, path)
		return appliedMigration{PropertyName: bc.PropertyName, Action: ChangeRemoved, OldValue: old}, true

	case StrategyRenameProperty:
		old, existed := jsonpath.Get(node.Parameters, path)
		if !existed {
			return appliedMigration{}, false
		}
		newName, _ := bc.StrategyParams["to"].(string)
		newPath, err := jsonpath.Parse(newName)
		if err != nil {
			return appliedMigration{}, false
		}
		jsonpath.Delete(node.Parameters, path)
		if err := jsonpath.Set(node.Parameters, newPath, old); err != nil {
			return appliedMigration{}, false
		}
		return appliedMigration{PropertyName: bc.PropertyName, Action: ChangeRenamed, OldValue: old, NewValue: newName}, true

	case StrategySetDefault:
		if _, exists := jsonpath.Get(node.Parameters, path); exists {
			return appliedMigration{}, false
		}
		val := bc.StrategyParams["value"]
		if err := jsonpath.Set(node.Parameters, path, val); err != nil {
			return appliedMigration{}, false
		}
		return appliedMigration{PropertyName: bc.PropertyName, Action: ChangeDefaultChanged, NewValue: val}, true
	}
	return appliedMigration{}, false
}

// migrateContinueOnFail applies the registry's wildcard "continueOnFail" ->
// "onError" rename (spec §4.3.1's named example of the "*" nodeType). The
// legacy flag is a top-level Node field, not a Parameters entry, so it
// cannot be reached through the generic jsonpath-over-Parameters strategies
// above; this reads workflow.Node.ContinueOnFail directly, sets the
// equivalent OnError policy, and clears the legacy field.
func migrateContinueOnFail(node *workflow.Node) (appliedMigration, bool) {
	if node.ContinueOnFail == nil {
		return appliedMigration{}, false
	}
	old := *node.ContinueOnFail
	node.OnError = workflow.OnErrorStopWorkflow
	if old {
		node.OnError = workflow.OnErrorContinueRegularOutput
	}
	node.ContinueOnFail = nil
	return appliedMigration{
		PropertyName: "continueOnFail",
		Action:       ChangeRenamed,
		OldValue:     old,
		NewValue:     string(node.OnError),
	}, true
}
