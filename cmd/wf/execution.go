package main

import (
	"github.com/spf13/cobra"
)

var executionCmd = &cobra.Command{
	Use:     "execution",
	GroupID: "workflow",
	Short:   "Inspect and manage workflow executions",
}

var executionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List executions, optionally scoped to a workflow",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		workflowID, _ := cmd.Flags().GetString("workflow-id")
		execs, err := a.http.ListExecutions(cmd.Context(), workflowID)
		if err != nil {
			return err
		}
		return printJSON(execs)
	},
}

var executionGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch one execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		includeData, _ := cmd.Flags().GetBool("include-data")
		exec, err := a.http.GetExecution(cmd.Context(), args[0], includeData)
		if err != nil {
			return err
		}
		return printJSON(exec)
	},
}

var executionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an execution record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		return a.http.DeleteExecution(cmd.Context(), args[0])
	},
}

var executionRetryCmd = &cobra.Command{
	Use:   "retry <id>",
	Short: "Re-run a failed execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		exec, err := a.http.RetryExecution(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(exec)
	},
}

func init() {
	executionListCmd.Flags().String("workflow-id", "", "Restrict to executions of this workflow")
	executionGetCmd.Flags().Bool("include-data", false, "Include the execution's run data")
	executionCmd.AddCommand(executionListCmd, executionGetCmd, executionDeleteCmd, executionRetryCmd)
	rootCmd.AddCommand(executionCmd)
}
