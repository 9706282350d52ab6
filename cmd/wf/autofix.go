package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/autofix"
	"github.com/n8n-cli/wf/internal/validator"
)

var autofixCmd = &cobra.Command{
	Use:     "autofix <file>",
	GroupID: "diff",
	Short:   "Generate (and optionally apply) corrective edits for a workflow",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := readWorkflowFileCmd(cmd, args[0])
		if err != nil {
			return err
		}

		diags := validator.Validate(wf, a.catalog, validator.ProfileStrict, validator.ModeFull).Issues

		apply, _ := cmd.Flags().GetBool("apply")
		confidence, _ := cmd.Flags().GetString("confidence")
		maxFixes, _ := cmd.Flags().GetInt("max-fixes")
		upgrade, _ := cmd.Flags().GetBool("upgrade-versions")
		fixTypesFlag, _ := cmd.Flags().GetStringSlice("fix-types")
		out, _ := cmd.Flags().GetString("out")

		var fixTypes []autofix.Type
		for _, t := range fixTypesFlag {
			fixTypes = append(fixTypes, autofix.Type(strings.TrimSpace(t)))
		}

		opts := autofix.Options{
			ApplyFixes:          apply,
			FixTypes:            fixTypes,
			ConfidenceThreshold: autofix.Confidence(confidence),
			MaxFixes:            maxFixes,
			UpgradeVersions:     upgrade,
		}

		result := autofix.Generate(wf, diags, a.catalog, opts)
		if err := printJSON(result); err != nil {
			return err
		}

		if apply && result.ModifiedWorkflow != nil && out != "" {
			if err := backupAndRecord(cmd, a, wf, "autofix"); err != nil {
				return err
			}
			return writeWorkflowFile(out, result.ModifiedWorkflow)
		}
		return nil
	},
}

func init() {
	autofixCmd.Flags().Bool("apply", false, "Apply the generated fixes and emit the modified workflow")
	autofixCmd.Flags().String("confidence", "", "Minimum confidence band to keep: high, medium, low")
	autofixCmd.Flags().Int("max-fixes", 0, "Cap on the number of fixes generated (0 = default 50)")
	autofixCmd.Flags().Bool("upgrade-versions", false, "Also generate typeVersion upgrade fixes")
	autofixCmd.Flags().StringSlice("fix-types", nil, "Restrict to these fix types (default: all)")
	autofixCmd.Flags().String("out", "", "Write the modified workflow to this path (requires --apply)")
	autofixCmd.Flags().Bool("lenient", false, "Accept a relaxed JSON superset: unquoted keys, trailing commas, comments")
	rootCmd.AddCommand(autofixCmd)
}
