package main

import (
	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/diffengine"
)

var diffCmd = &cobra.Command{
	Use:     "diff",
	GroupID: "diff",
	Short:   "Apply structural edits to a workflow document",
}

var diffApplyCmd = &cobra.Command{
	Use:   "apply <workflow-file> <ops-file>",
	Short: "Apply a sequence of diff operations to a workflow",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := readWorkflowFileCmd(cmd, args[0])
		if err != nil {
			return err
		}

		opsData, err := readFileOrStdin(args[1])
		if err != nil {
			return err
		}
		ops, err := diffengine.DecodeOperations(opsData)
		if err != nil {
			return apperr.Wrap(apperr.ParseFailed, "decoding diff operations", err)
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		continueOnError, _ := cmd.Flags().GetBool("continue-on-error")
		out, _ := cmd.Flags().GetString("out")

		result := diffengine.Apply(wf, ops, a.catalog, diffengine.Options{
			DryRun:          dryRun,
			ContinueOnError: continueOnError,
		})

		if err := printJSON(result); err != nil {
			return err
		}
		if len(result.Errors) > 0 && !continueOnError {
			return apperr.New(apperr.ValidationFailed, "diff apply failed; workflow left unchanged")
		}
		if dryRun {
			return nil
		}

		if out != "" {
			if err := backupAndRecord(cmd, a, wf, "diff-apply"); err != nil {
				return err
			}
			return writeWorkflowFile(out, result.Workflow)
		}
		return nil
	},
}

func init() {
	diffApplyCmd.Flags().Bool("dry-run", false, "Report what would change without writing the result")
	diffApplyCmd.Flags().Bool("continue-on-error", false, "Apply operations best-effort instead of all-or-nothing")
	diffApplyCmd.Flags().String("out", "", "Write the resulting workflow to this path instead of only reporting it")
	diffApplyCmd.Flags().Bool("lenient", false, "Accept a relaxed JSON superset: unquoted keys, trailing commas, comments")
	diffCmd.AddCommand(diffApplyCmd)
	rootCmd.AddCommand(diffCmd)
}
