// Package main provides the CLI entry point for mintbench, a harness that
// compares the gas cost of minting across token contract variants.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mintbench/internal/domain"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("mintbench failed", errorAttrs(err)...)
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mintbench",
		Short: "Compare the gas cost of minting across token contract variants",
		Long: `Mintbench deploys every configured contract variant, mints one token on each
to initialise storage, then runs an identical schedule of growing batch mints
and reports gas used, relative savings and fiat cost for every trial.`,
		Version:       version + " (" + commit + ", " + buildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())

	return root
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy the variants and run the mint benchmark",
		Long: `Deploy each variant against the configured node, bootstrap it with a single
mint and execute one mint per variant for every trial index. Settings are read
from the environment (and .env) first; flags given on the command line win.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), cmd, flags)
		},
	}
	bindRunFlags(cmd, &flags)

	return cmd
}

func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	f := cmd.Flags()
	f.StringVar(&flags.rpcURL, "rpc-url", "",
		"JSON-RPC endpoint of the node (env RPC_URL)")
	f.StringVar(&flags.artifactsDir, "artifacts-dir", "",
		"Directory holding compiled contract artifacts (env ARTIFACTS_DIR)")
	f.StringVar(&flags.variants, "variants", "",
		"Variants to benchmark as Name:kind,... (env VARIANTS)")
	f.StringVar(&flags.pairs, "pairs", "",
		"Relative comparisons as candidate:baseline,... (env RELATIVE_PAIRS)")
	f.Uint64Var(&flags.maxTrials, "max-trials", 5,
		"Number of trials to run (env MAX_TRIALS)")
	f.BoolVar(&flags.showRelativeCost, "show-relative-cost", false,
		"Print relative savings for each declared pair (env SHOW_RELATIVE_COST)")
	f.BoolVar(&flags.showUSDCost, "show-usd-cost", true,
		"Print the fiat cost of each mint (env SHOW_USD_COST)")
	f.StringVar(&flags.gasPriceGwei, "gas-price-gwei", "",
		"Assumed gas price in gwei (env GAS_PRICE_GWEI)")
	f.StringVar(&flags.etherPrice, "ether-price", "",
		"Assumed fiat price of one ether (env ETHER_PRICE)")
	f.StringVar(&flags.format, "format", "",
		"Report format: text or json (env OUTPUT_FORMAT)")
	f.BoolVar(&flags.outputJSON, "json", false,
		"Shorthand for --format json")
	f.DurationVar(&flags.timeout, "timeout", 2*time.Minute,
		"How long to wait for each transaction to be mined (env CONFIRMATION_TIMEOUT)")
}

// errorAttrs expands the typed run errors into structured log attributes.
func errorAttrs(err error) []any {
	attrs := []any{"error", err}
	var deployErr *domain.DeploymentError
	var trialErr *domain.TrialExecutionError
	switch {
	case errors.As(err, &deployErr):
		attrs = append(attrs, "variant", deployErr.Variant)
	case errors.As(err, &trialErr):
		attrs = append(attrs, "variant", trialErr.Variant, "trial", trialErr.TrialIndex)
	}
	return attrs
}
