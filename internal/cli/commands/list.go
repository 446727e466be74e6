package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/fractalic-hive/hivectl/internal/cli/errors"
	"github.com/fractalic-hive/hivectl/internal/cli/output"
	"github.com/fractalic-hive/hivectl/internal/domain/market"
	"github.com/fractalic-hive/hivectl/internal/domain/registry"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
)

var listCategory string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tools in the marketplace registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}
		tools, err := m.Search(cmd.Context(), "", listCategory)
		if err != nil {
			return fail(f, err)
		}
		reg, err := m.Registry(cmd.Context())
		if err != nil {
			return fail(f, err)
		}

		f.FormatToolTable(toolRows(m, tools))
		if !f.JSON() {
			if warnings := f.FormatWarnings(reg.Warnings); warnings != "" {
				fmt.Fprint(os.Stderr, warnings)
			}
			fmt.Println(f.FormatSummary(reg))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "restrict the listing to one category")
	rootCmd.AddCommand(listCmd)
}

func toolRows(m *market.Market, tools []*registry.Tool) []output.ToolRow {
	rows := make([]output.ToolRow, 0, len(tools))
	for _, t := range tools {
		status := "available"
		if m.Installed(t.Path) {
			status = "installed"
			if rec, ok := m.Status(t.Path); ok {
				status = string(rec.Status)
				if rec.Status == verify.StatusFailed {
					status = "installed (" + rec.Failure + ")"
				}
			}
		}
		rows = append(rows, output.ToolRow{
			Name:        t.Name,
			Category:    t.Category,
			Subcategory: t.Subcategory,
			Status:      status,
			Description: t.Description,
		})
	}
	return rows
}

// errHandled marks an error already printed by fail; Execute's caller only
// turns it into a non-zero exit.
var errHandled = errors.New("handled")

func fail(f *output.Formatter, err error) error {
	fmt.Fprintln(os.Stderr, f.FormatError(clierrors.Classify(err)))
	return errHandled
}
