package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/workflow"
)

// backupAndRecord takes a pre-mutation snapshot of wf before a mutating
// command commits its change: a JSON file under the backups directory
// (lifecycle.Backuper) and a queryable row in the local snapshot history
// (localstore.Store) (spec §4.6 "Lifecycle & Backup": "every mutating
// command takes a backup first").
func backupAndRecord(cmd *cobra.Command, a *app, wf *workflow.Workflow, operation string) error {
	data, err := wf.Marshal()
	if err != nil {
		return err
	}
	id := wf.ID
	if id == "" {
		id = wf.Name
	}

	warning, err := a.backuper.Backup(cmd.Context(), operation, id, data)
	if err != nil {
		return err
	}
	if warning != "" {
		fmt.Fprintln(os.Stderr, warning)
	}

	if err := a.local.RecordSnapshot(cmd.Context(), id, wf.Name, operation, string(data)); err != nil {
		return err
	}
	return nil
}
