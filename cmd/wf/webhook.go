package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/apperr"
)

var webhookCmd = &cobra.Command{
	Use:     "webhook <path>",
	GroupID: "workflow",
	Short:   "Trigger a published webhook",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		wait, _ := cmd.Flags().GetBool("wait")
		payloadFlag, _ := cmd.Flags().GetString("data")

		var payload any
		if payloadFlag != "" {
			if err := json.Unmarshal([]byte(payloadFlag), &payload); err != nil {
				return apperr.Wrap(apperr.ParseFailed, "parsing --data as JSON", err)
			}
		}

		result, err := a.http.TriggerWebhook(cmd.Context(), args[0], payload, wait)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	webhookCmd.Flags().Bool("wait", false, "Wait for the workflow's response instead of firing and forgetting")
	webhookCmd.Flags().String("data", "", "JSON payload to send as the webhook body")
	rootCmd.AddCommand(webhookCmd)
}
