package main

import (
	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/workflow"
)

var workflowCmd = &cobra.Command{
	Use:     "workflow",
	GroupID: "workflow",
	Short:   "Manage workflows on the remote server",
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every workflow the credential can see",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		workflows, err := a.http.ListWorkflows(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(workflows)
	},
}

var workflowGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one workflow by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := a.http.GetWorkflow(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(wf)
	},
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a new workflow from a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := readWorkflowFileCmd(cmd, args[0])
		if err != nil {
			return err
		}
		created, err := a.http.CreateWorkflow(cmd.Context(), wf)
		if err != nil {
			return err
		}
		if err := a.local.RecordSnapshot(cmd.Context(), created.ID, created.Name, "create", mustMarshal(created)); err != nil {
			return err
		}
		return printJSON(created)
	},
}

var workflowUpdateCmd = &cobra.Command{
	Use:   "update <id> <file>",
	Short: "Replace a workflow's document on the server",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := readWorkflowFileCmd(cmd, args[1])
		if err != nil {
			return err
		}

		if existing, ferr := a.http.GetWorkflow(cmd.Context(), args[0]); ferr == nil {
			if berr := backupAndRecord(cmd, a, existing, "update"); berr != nil {
				return berr
			}
		}

		updated, err := a.http.UpdateWorkflow(cmd.Context(), args[0], wf, nil)
		if err != nil {
			return err
		}
		return printJSON(updated)
	},
}

var workflowDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if existing, ferr := a.http.GetWorkflow(cmd.Context(), args[0]); ferr == nil {
			if berr := backupAndRecord(cmd, a, existing, "delete"); berr != nil {
				return berr
			}
		}
		return a.http.DeleteWorkflow(cmd.Context(), args[0])
	},
}

var workflowActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkflowActive(cmd, args[0], true)
	},
}

var workflowDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWorkflowActive(cmd, args[0], false)
	},
}

// setWorkflowActive fetches the current document, flips Active, backs it up,
// and pushes the change via UpdateWorkflow's PUT-with-PATCH-fallback path —
// activation is a workflow-property update, not a distinct endpoint (spec
// §6 "Remote server API" lists no separate activate/deactivate route).
func setWorkflowActive(cmd *cobra.Command, id string, active bool) error {
	a := appFrom(cmd)
	wf, err := a.http.GetWorkflow(cmd.Context(), id)
	if err != nil {
		return err
	}
	operation := "deactivate"
	if active {
		operation = "activate"
	}
	if err := backupAndRecord(cmd, a, wf, operation); err != nil {
		return err
	}
	wf.Active = active
	updated, err := a.http.UpdateWorkflow(cmd.Context(), id, wf, map[string]any{"active": active})
	if err != nil {
		return err
	}
	return printJSON(updated)
}

func mustMarshal(wf *workflow.Workflow) string {
	data, err := wf.Marshal()
	if err != nil {
		return "{}"
	}
	return string(data)
}

func init() {
	workflowCreateCmd.Flags().Bool("lenient", false, "Accept a relaxed JSON superset: unquoted keys, trailing commas, comments")
	workflowUpdateCmd.Flags().Bool("lenient", false, "Accept a relaxed JSON superset: unquoted keys, trailing commas, comments")
	workflowCmd.AddCommand(workflowListCmd, workflowGetCmd, workflowCreateCmd, workflowUpdateCmd,
		workflowDeleteCmd, workflowActivateCmd, workflowDeactivateCmd)
	rootCmd.AddCommand(workflowCmd)
}
