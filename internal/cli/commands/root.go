// Package commands implements the hivectl CLI surface.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/fractalic-hive/hivectl/internal/cli/output"
	"github.com/fractalic-hive/hivectl/internal/config"
	"github.com/fractalic-hive/hivectl/internal/domain/install"
	"github.com/fractalic-hive/hivectl/internal/domain/market"
	"github.com/fractalic-hive/hivectl/internal/domain/resolve"
	"github.com/fractalic-hive/hivectl/internal/domain/verify"
	"github.com/fractalic-hive/hivectl/internal/logger"
)

var (
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hivectl",
	Short: "hivectl - registry and installer for fractalic hive tools",
	Long: `hivectl browses the fractalic hive tool marketplace, installs tools
together with their sidecar dependencies, and verifies each install
against the autodiscovery protocol before exposing it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		if err := config.EnsureDir(); err == nil {
			_ = logger.Init(config.Dir())
		}
		logger.SetVerbose(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// Execute runs the CLI. Errors already rendered by a command come back as
// errHandled; anything else (usage mistakes, unknown flags) is cobra's own and
// still needs printing since the root silences cobra's reporting.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errHandled) {
		rootCmd.PrintErrln("Error:", err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo log entries to stderr")
}

func formatter() *output.Formatter {
	format := output.FormatText
	if jsonOutput {
		format = output.FormatJSON
	}
	return output.NewFormatter(format, !jsonOutput)
}

// newMarket wires the market from the active configuration. Every command
// goes through here so config, auth, and retry behavior stay uniform.
func newMarket(ctx context.Context) (*market.Market, error) {
	cfg := config.Current()

	src := resolve.Source{Owner: cfg.Owner, Repo: cfg.Repo, Branch: cfg.Branch}
	client := install.NewHTTPClient(ctx, cfg.Token)
	fetcher := install.NewFetcher(client, cfg.MaxRetries)
	lister := &resolve.GitHubLister{Client: client, Src: src}

	installer, err := install.NewInstaller(src, fetcher, lister, cfg.InstallRoot)
	if err != nil {
		return nil, err
	}

	verifier := verify.NewVerifier(&verify.ExecRunner{Interpreter: cfg.Interpreter})
	verifier.TestBudget = cfg.TestBudget

	vstate, err := verify.LoadStore(cfg.InstallRoot)
	if err != nil {
		return nil, err
	}

	return market.New(src, cfg.ManifestPath, fetcher, installer, verifier, vstate), nil
}
