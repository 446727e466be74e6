package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCategory string

var findCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Search tools by name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}
		tools, err := m.Search(cmd.Context(), args[0], findCategory)
		if err != nil {
			return fail(f, err)
		}
		if len(tools) == 0 && !f.JSON() {
			fmt.Printf("no tools match %q\n", args[0])
			return nil
		}

		f.FormatToolTable(toolRows(m, tools))
		return nil
	},
}

func init() {
	findCmd.Flags().StringVar(&findCategory, "category", "", "restrict the search to one category")
	rootCmd.AddCommand(findCmd)
}
