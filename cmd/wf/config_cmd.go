package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/config"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Manage CLI configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config.json under ./.n8n-cli/",
	Args:  cobra.NoArgs,
	// config init must work before any config exists, so it skips the root
	// PersistentPreRunE's full app wiring (catalog store, HTTP client, local
	// store) entirely rather than depend on the thing it is bootstrapping.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			path = filepath.Join(".", ".n8n-cli", "config.json")
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Println("wrote", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "Path to write the config file to (default ./.n8n-cli/config.json)")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
