package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/apperr"
	"github.com/n8n-cli/wf/internal/workflow"
)

// readWorkflowFileCmd loads a workflow document from path, or from stdin
// when path is "-" (supplemented convention: every file-consuming command
// accepts "-" for piping, matching the spec's CLI orientation toward
// automation agents), reading --lenient off cmd's flags to opt into the
// relaxed-superset repair pass (spec §6 "External interfaces").
func readWorkflowFileCmd(cmd *cobra.Command, path string) (*workflow.Workflow, error) {
	lenient, _ := cmd.Flags().GetBool("lenient")
	return readWorkflowFileOpts(path, lenient)
}

func readWorkflowFileOpts(path string, lenient bool) (*workflow.Workflow, error) {
	data, err := readFileOrStdin(path)
	if err != nil {
		return nil, err
	}
	wf, err := workflow.ParseDocument(data, workflow.ParseOptions{Lenient: lenient})
	if err != nil {
		return nil, apperr.Wrap(apperr.ParseFailed, "parsing workflow document", err)
	}
	return wf, nil
}

func readFileOrStdin(path string) ([]byte, error) {
	if path == "-" || path == "" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "reading stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.NotFound, fmt.Sprintf("reading %s", path), err)
	}
	return data, nil
}

func writeWorkflowFile(path string, wf *workflow.Workflow) error {
	data, err := wf.Marshal()
	if err != nil {
		return apperr.Wrap(apperr.Internal, "marshaling workflow", err)
	}
	if path == "-" || path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperr.Wrap(apperr.Internal, fmt.Sprintf("writing %s", path), err)
	}
	return nil
}
