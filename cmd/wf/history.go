package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:     "history",
	GroupID: "workflow",
	Short:   "Inspect the local workflow-version snapshot history",
}

var historyListCmd = &cobra.Command{
	Use:   "list [workflow-id]",
	Short: "List snapshots for a workflow, or every tracked workflow id if none is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if len(args) == 0 {
			ids, err := a.local.WorkflowIDs(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(ids)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		snaps, err := a.local.ListSnapshots(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}
		return printJSON(snaps)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <workflow-id>",
	Short: "Show the most recent snapshot content for a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		snap, ok, err := a.local.LatestSnapshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no recorded snapshots for workflow %q", args[0])
		}
		fmt.Println(snap.Content)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "Maximum number of snapshots to return (0 = no limit)")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
