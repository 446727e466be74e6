package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the registry from the upstream manifest",
	Long: `Update fetches the manifest from the configured source repository and
rebuilds the registry. A manifest that fails to parse leaves the previous
registry untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}
		reg, err := m.Refresh(cmd.Context())
		if err != nil {
			return fail(f, err)
		}

		if f.JSON() {
			f.FormatToolTable(toolRows(m, reg.Tools()))
			return nil
		}
		if warnings := f.FormatWarnings(reg.Warnings); warnings != "" {
			fmt.Fprint(os.Stderr, warnings)
		}
		fmt.Println(f.FormatSummary(reg))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}
