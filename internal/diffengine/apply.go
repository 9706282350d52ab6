package diffengine

import (
	"fmt"

	"github.com/n8n-cli/wf/internal/catalog"
	"github.com/n8n-cli/wf/internal/workflow"
)

// Options configures an Apply run (spec §4.5 "Contract").
type Options struct {
	DryRun           bool
	ContinueOnError  bool
}

// OpError pairs a failed operation with its index and reason.
type OpError struct {
	Index int
	Op    Operation
	Err   error
}

func (e OpError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index, e.Op.Kind(), e.Err)
}

// Result is the outcome of an Apply run (spec §4.5 "Contract").
type Result struct {
	Workflow *workflow.Workflow
	Applied  []Operation
	Errors   []OpError
}

// Apply runs operations against wf (spec §4.5 "apply"). Default mode is
// all-or-nothing: every operation is pre-validated against a conflict
// detector on a deep clone before any mutation commits. ContinueOnError
// relaxes this to a per-operation best-effort pass.
func Apply(wf *workflow.Workflow, ops []Operation, store *catalog.Store, opts Options) Result {
	if opts.ContinueOnError {
		return applyContinueOnError(wf, ops, store, opts.DryRun)
	}
	return applyAtomic(wf, ops, store, opts.DryRun)
}

func applyAtomic(wf *workflow.Workflow, ops []Operation, store *catalog.Store, dryRun bool) Result {
	candidate := wf.Clone()
	for i, op := range ops {
		if err := validateOp(candidate, op, store); err != nil {
			return Result{Workflow: wf, Errors: []OpError{{Index: i, Op: op, Err: err}}}
		}
		if err := applyOp(candidate, op, store); err != nil {
			return Result{Workflow: wf, Errors: []OpError{{Index: i, Op: op, Err: err}}}
		}
	}
	if dryRun {
		return Result{Workflow: wf, Applied: ops}
	}
	return Result{Workflow: candidate, Applied: ops}
}

func applyContinueOnError(wf *workflow.Workflow, ops []Operation, store *catalog.Store, dryRun bool) Result {
	working := wf.Clone()
	var applied []Operation
	var errs []OpError

	for i, op := range ops {
		if err := validateOp(working, op, store); err != nil {
			errs = append(errs, OpError{Index: i, Op: op, Err: err})
			continue
		}
		if err := applyOp(working, op, store); err != nil {
			errs = append(errs, OpError{Index: i, Op: op, Err: err})
			continue
		}
		applied = append(applied, op)
	}

	if dryRun {
		return Result{Workflow: wf, Applied: applied, Errors: errs}
	}
	return Result{Workflow: working, Applied: applied, Errors: errs}
}
