package main

import (
	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:     "validate <file>",
	GroupID: "diff",
	Short:   "Validate a workflow document against the node catalog",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wf, err := readWorkflowFileCmd(cmd, args[0])
		if err != nil {
			return err
		}

		profile, _ := cmd.Flags().GetString("profile")
		mode, _ := cmd.Flags().GetString("mode")

		result := validator.Validate(wf, a.catalog, validator.Profile(profile), validator.Mode(mode))
		if err := printJSON(result); err != nil {
			return err
		}
		if result.Stats.ErrorCount > 0 {
			return apperr.New(apperr.ValidationFailed, "workflow has validation errors")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("profile", string(validator.ProfileRuntime), "Diagnostic profile: minimal, runtime, ai-friendly, strict")
	validateCmd.Flags().String("mode", string(validator.ModeFull), "Inspection depth: structure, operation, full")
	validateCmd.Flags().Bool("lenient", false, "Accept a relaxed JSON superset: unquoted keys, trailing commas, comments")
	rootCmd.AddCommand(validateCmd)
}
