package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke one tool and print the result envelope as JSON",
	Example: `  mcpserver call greet '{"name":"Tom","language":"ko"}'
  mcpserver call calculator '{"num1":10,"num2":4,"operator":"/"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := map[string]any{}
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
				return fmt.Errorf("arguments must be a JSON object: %w", err)
			}
		}

		a, cleanup, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := a.Server.Call(cmd.Context(), args[0], input)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		if res.IsError {
			return fmt.Errorf("tool %q returned an error", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
