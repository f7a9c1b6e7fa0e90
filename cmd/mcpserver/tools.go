package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var flagSchemas bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		w := cmd.OutOrStdout()
		for _, t := range a.Registry.GetTools() {
			fmt.Fprintf(w, "%-16s %s\n", t.Name(), t.Description())
			if !flagSchemas {
				continue
			}
			schema, err := json.MarshalIndent(t.InputSchema(), "  ", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s\n", schema)
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&flagSchemas, "schemas", false, "also print each tool's input schema")
	rootCmd.AddCommand(toolsCmd)
}
