package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <tool>",
	Short: "Dump an installed tool's self-described parameter schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}
		schema, err := m.Schema(cmd.Context(), args[0])
		if err != nil {
			return fail(f, err)
		}

		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fail(f, err)
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
