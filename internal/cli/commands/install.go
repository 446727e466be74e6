package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/fractalic-hive/hivectl/internal/cli/errors"
	"github.com/fractalic-hive/hivectl/internal/cli/output"
	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
)

var (
	installAll      bool
	installCategory string
)

var installCmd = &cobra.Command{
	Use:   "install [tool]",
	Short: "Install a tool (or every tool) with its sidecar dependencies",
	Long: `Install fetches a tool's primary .py file plus its sidecar files
(requirements.txt and *_helpers.py siblings) into the install root, then runs
the autodiscovery verification. A tool that fails verification stays
installed but is flagged until 'hivectl verify' passes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		if installAll == (len(args) == 1) {
			return fail(f, fmt.Errorf("name exactly one tool, or pass --all"))
		}

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}

		if installAll {
			outcomes, reports, err := m.InstallAll(cmd.Context(), installCategory)
			if err != nil {
				return fail(f, err)
			}
			return printBatch(f, outcomes, reports)
		}

		res, rep, err := m.Install(cmd.Context(), args[0])
		if err != nil {
			return fail(f, err)
		}
		fmt.Println(f.FormatInstallResult(res))
		fmt.Println(f.FormatVerifyReport(rep))
		if rep.Status == verify.StatusFailed {
			return errHandled
		}
		return nil
	},
}

func init() {
	installCmd.Flags().BoolVar(&installAll, "all", false, "install every tool in the registry")
	installCmd.Flags().StringVar(&installCategory, "category", "", "with --all, restrict to one category")
	rootCmd.AddCommand(installCmd)
}

type batchSummary struct {
	Installed []*install.Result `json:"installed"`
	Failed    []string          `json:"failed,omitempty"`
	Reports   []*verify.Report  `json:"reports,omitempty"`
}

func printBatch(f *output.Formatter, outcomes []install.Outcome, reports []*verify.Report) error {
	var summary batchSummary
	for _, o := range outcomes {
		if o.Err != nil {
			summary.Failed = append(summary.Failed, o.Tool.Name)
			continue
		}
		summary.Installed = append(summary.Installed, o.Result)
	}
	summary.Reports = reports

	if f.JSON() {
		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
	} else {
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Fprintln(os.Stderr, f.FormatError(clierrors.Classify(o.Err)))
				continue
			}
			fmt.Println(f.FormatInstallResult(o.Result))
		}
		for _, rep := range reports {
			fmt.Println(f.FormatVerifyReport(rep))
		}
		fmt.Printf("%d installed, %d failed\n", len(summary.Installed), len(summary.Failed))
	}

	if len(summary.Failed) > 0 {
		return errHandled
	}
	return nil
}
