package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n8n-cli/wf/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	GroupID: "catalog",
	Short:   "Query the bundled node-type catalog",
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <type>",
	Short: "Look up a node type's full catalog record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		rec, ok := a.catalog.LookupByType(args[0])
		if !ok {
			return fmt.Errorf("no catalog entry for type %q", args[0])
		}
		return printJSON(rec)
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog by name, display name, or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		mode, _ := cmd.Flags().GetString("mode")
		limit, _ := cmd.Flags().GetInt("limit")
		envelope := a.catalog.Search(cmd.Context(), args[0], catalog.Mode(mode), limit)
		return printJSON(map[string]any{
			"method":  envelope.Method,
			"results": envelope.Results,
		})
	},
}

var catalogVersionsCmd = &cobra.Command{
	Use:   "versions <type>",
	Short: "List the known typeVersion values for a node type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		versions, ok := a.catalog.Versions(args[0])
		if !ok {
			return fmt.Errorf("no catalog entry for type %q", args[0])
		}
		return printJSON(versions)
	},
}

var catalogSchemaCmd = &cobra.Command{
	Use:   "schema <type> <version>",
	Short: "Print the property schema for a node type at a given typeVersion",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		var version float64
		if _, err := fmt.Sscanf(args[1], "%g", &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		schema, ok := a.catalog.PropertySchema(args[0], version)
		if !ok {
			return fmt.Errorf("no schema for type %q at version %s", args[0], args[1])
		}
		return printJSON(schema)
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list-by-category <category>",
	Short: "List every catalog record in a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		return printJSON(a.catalog.ListByCategory(args[0]))
	},
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func init() {
	catalogSearchCmd.Flags().String("mode", "OR", "Search mode: OR, AND, or FUZZY")
	catalogSearchCmd.Flags().Int("limit", 20, "Maximum results to return")

	catalogCmd.AddCommand(catalogLookupCmd, catalogSearchCmd, catalogVersionsCmd, catalogSchemaCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
