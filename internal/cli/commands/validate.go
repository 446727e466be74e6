package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fractalic-hive/hivectl/internal/domain/manifest"
	"github.com/fractalic-hive/hivectl/internal/domain/registry"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate <manifest-file>",
	Short: "Validate a local manifest file without touching the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fail(f, err)
		}
		reg, err := registry.Build(manifest.Parse(string(data)))
		if err != nil {
			return fail(f, err)
		}

		if warnings := f.FormatWarnings(reg.Warnings); warnings != "" {
			fmt.Fprint(os.Stderr, warnings)
		}
		if !f.JSON() {
			fmt.Println(f.FormatSummary(reg))
		}
		if validateStrict && len(reg.Warnings) > 0 {
			return fail(f, fmt.Errorf("manifest has %d validation warning(s)", len(reg.Warnings)))
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat validation warnings as errors")
	rootCmd.AddCommand(validateCmd)
}
