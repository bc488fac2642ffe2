package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mintbench/internal/application"
	"mintbench/internal/config"
	"mintbench/internal/infrastructure/artifact"
	"mintbench/internal/infrastructure/chain"
	"mintbench/internal/infrastructure/ethrpc"
	"mintbench/internal/infrastructure/kafka"
	"mintbench/internal/infrastructure/logging"
	"mintbench/internal/infrastructure/telemetry"
	"mintbench/internal/pricing"
	"mintbench/internal/report"

	"github.com/spf13/cobra"
)

type runFlags struct {
	rpcURL           string
	artifactsDir     string
	variants         string
	pairs            string
	maxTrials        uint64
	showRelativeCost bool
	showUSDCost      bool
	gasPriceGwei     string
	etherPrice       string
	format           string
	outputJSON       bool
	timeout          time.Duration
}

// applyFlags overrides cfg with every flag set explicitly on the command line.
func applyFlags(cmd *cobra.Command, f runFlags, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("rpc-url") {
		cfg.RPCURL = f.rpcURL
	}
	if changed("artifacts-dir") {
		cfg.ArtifactsDir = f.artifactsDir
	}
	if changed("variants") {
		variants, err := config.ParseVariants(f.variants)
		if err != nil {
			return err
		}
		cfg.Variants = variants
	}
	if changed("pairs") {
		pairs, err := config.ParsePairs(f.pairs)
		if err != nil {
			return err
		}
		cfg.RelativePairs = pairs
	}
	if changed("max-trials") {
		if f.maxTrials == 0 {
			return errors.New("--max-trials must be positive")
		}
		cfg.MaxTrials = f.maxTrials
	}
	if changed("show-relative-cost") {
		cfg.ShowRelativeCost = f.showRelativeCost
	}
	if changed("show-usd-cost") {
		cfg.ShowUSDCost = f.showUSDCost
	}
	if changed("gas-price-gwei") {
		price, err := config.ParseDecimal("--gas-price-gwei", f.gasPriceGwei)
		if err != nil {
			return err
		}
		cfg.GasPriceGwei = price
	}
	if changed("ether-price") {
		price, err := config.ParseDecimal("--ether-price", f.etherPrice)
		if err != nil {
			return err
		}
		cfg.EtherPrice = price
	}
	if changed("format") {
		cfg.OutputFormat = f.format
	}
	if changed("json") && f.outputJSON {
		cfg.OutputFormat = string(report.FormatJSON)
	}
	if changed("timeout") {
		if f.timeout <= 0 {
			return errors.New("--timeout must be positive")
		}
		cfg.ConfirmTimeout = f.timeout
	}
	return nil
}

func runBenchmark(ctx context.Context, cmd *cobra.Command, flags runFlags) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := applyFlags(cmd, flags, &cfg); err != nil {
		return fmt.Errorf("flags: %w", err)
	}

	rotating, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if rotating != nil {
		defer rotating.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(ctx, "mintbench", cfg.OtelEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown error", "error", err)
		}
	}()

	format, err := report.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(cfg.Variants))
	for _, spec := range cfg.Variants {
		names = append(names, spec.Name)
	}
	pairs := make([]report.Pair, 0, len(cfg.RelativePairs))
	for _, pair := range cfg.RelativePairs {
		pairs = append(pairs, report.Pair{Candidate: pair.Candidate, Baseline: pair.Baseline})
	}
	if cfg.ShowRelativeCost {
		if err := report.ValidatePairs(pairs, names); err != nil {
			return err
		}
	}

	model, err := pricing.NewModel(pricing.AssumptionsFromEther(cfg.GasPriceGwei, cfg.EtherPrice))
	if err != nil {
		return err
	}
	generator, err := report.NewGenerator(os.Stdout, model, report.Options{
		ShowRelativeCost: cfg.ShowRelativeCost,
		ShowUSDCost:      cfg.ShowUSDCost,
		Pairs:            pairs,
		FiatSymbol:       cfg.FiatSymbol,
		Format:           format,
	})
	if err != nil {
		return err
	}

	rpcClient, err := ethrpc.NewClient(ethrpc.Config{URL: cfg.RPCURL})
	if err != nil {
		return fmt.Errorf("rpc: %w", err)
	}
	env, err := chain.NewEnvironment(ctx, rpcClient, chain.Config{
		PrivateKey:         cfg.PrivateKey,
		PollInterval:       cfg.PollInterval,
		ConfirmTimeout:     cfg.ConfirmTimeout,
		GasLimitMultiplier: cfg.GasLimitMultiplier,
	})
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	loader, err := artifact.NewLoader(cfg.ArtifactsDir)
	if err != nil {
		return err
	}
	deployer, err := application.NewDeployer(loader, env)
	if err != nil {
		return err
	}

	sinks := application.FanOut{generator}
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			RunID:   telemetry.NewRunID(),
		})
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		defer producer.Close()
		sinks = append(sinks, producer)
		slog.Info("streaming trials to kafka", "topic", cfg.KafkaTopic, "brokers", len(cfg.KafkaBrokers))
	}

	stats := application.NewStats()
	runner, err := application.NewRunner(deployer, env, sinks, stats, application.RunnerConfig{
		Variants:  cfg.Variants,
		MaxTrials: cfg.MaxTrials,
	})
	if err != nil {
		return err
	}

	slog.Info("benchmark starting",
		"variants", len(cfg.Variants),
		"max_trials", cfg.MaxTrials,
		"rpc", cfg.RPCURL,
		"version", version,
	)
	if err := generator.Header(); err != nil {
		return err
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}

	snapshot := stats.Snapshot()
	snapshot.Log()
	totals := make([]report.Total, 0, len(snapshot.Variants))
	for _, v := range snapshot.Variants {
		totals = append(totals, report.Total{Variant: v.Variant, GasUsed: v.TrialGas})
	}
	if err := generator.Summary(snapshot.Trials, totals); err != nil {
		return err
	}
	if producer != nil {
		if err := producer.PublishCompleted(ctx, snapshot.Trials); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}
