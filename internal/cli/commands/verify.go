package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fractalic-hive/hivectl/internal/domain/verify"
)

var retryFailed bool

var verifyCmd = &cobra.Command{
	Use:   "verify [tool]",
	Short: "Run the autodiscovery checks against an installed tool",
	Long: `Verify drives the autodiscovery protocol against an installed tool:
the test handshake, the schema dump, and an execution probe. The outcome is
persisted, so 'hivectl list' shows each tool's last known state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := formatter()

		if retryFailed == (len(args) == 1) {
			return fail(f, fmt.Errorf("name exactly one tool, or pass --retry-failed"))
		}

		m, err := newMarket(cmd.Context())
		if err != nil {
			return fail(f, err)
		}

		var reports []*verify.Report
		if retryFailed {
			reports, err = m.RetryFailed(cmd.Context())
			if err != nil {
				return fail(f, err)
			}
			if len(reports) == 0 && !f.JSON() {
				fmt.Println("no failed tools to retry")
				return nil
			}
		} else {
			rep, err := m.Verify(cmd.Context(), args[0])
			if err != nil {
				return fail(f, err)
			}
			reports = []*verify.Report{rep}
		}

		failed := false
		for _, rep := range reports {
			fmt.Println(f.FormatVerifyReport(rep))
			if rep.Status == verify.StatusFailed {
				failed = true
			}
		}
		if failed {
			return errHandled
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "re-verify every tool whose last check failed")
	rootCmd.AddCommand(verifyCmd)
}
