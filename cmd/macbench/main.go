// Package main provides the CLI entry point for macbench, a throughput
// benchmark for keyed message-authentication constructions.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/weiihann/macbench/harness"
	"github.com/weiihann/macbench/mac"
	"github.com/weiihann/macbench/report"
	"github.com/weiihann/macbench/workload"
)

// errFailedPairs signals a completed run in which some pairs failed.
var errFailedPairs = errors.New("some algorithm/size pairs failed")

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("macbench failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "macbench",
		Short: "Throughput benchmark for keyed MAC constructions",
		Long: `Macbench measures HMAC over several hash families and native keyed
MAC designs across a matrix of payload sizes. Each sample times exactly one
construct + update + finalize over a freshly randomized payload.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newListCmd())

	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered MAC constructions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listAlgorithms(cmd.OutOrStdout(), mac.Default())
		},
	}
}

func listAlgorithms(w io.Writer, reg *mac.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFAMILY\tTAG\tKEY\tDESCRIPTION")

	for _, d := range reg.All() {
		key := "any"
		if d.KeySize > 0 {
			key = fmt.Sprintf("%d", d.KeySize)
		}

		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			d.ID, d.Family, d.TagSize, key, d.Description)
	}

	return tw.Flush()
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		algorithms     []string
		scale          string
		samples        int
		unit           int
		includeHundred bool
		sizes          []int
		batch          int
		warmUp         int
		keyHex         string
		seed           uint64
		throughputUnit string
		estimator      string
		timeout        time.Duration
		outputJSON     bool
		samplesOut     string
		gops           bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Measure MAC throughput over a size matrix",
		Long: `Build the algorithm × size matrix and measure every pair
sequentially, then print throughput per pair. Failed pairs are listed
separately and never reported as zero throughput.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), runConfig{
				algorithms:     algorithms,
				scale:          scale,
				samples:        samples,
				unit:           unit,
				includeHundred: includeHundred,
				sizes:          sizes,
				batch:          batch,
				warmUp:         warmUp,
				keyHex:         keyHex,
				seed:           seed,
				throughputUnit: throughputUnit,
				estimator:      estimator,
				timeout:        timeout,
				outputJSON:     outputJSON,
				samplesOut:     samplesOut,
				gops:           gops,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&algorithms, "algorithms", nil,
		"Algorithms to benchmark (default: all, see 'macbench list')")
	flags.StringVar(&scale, "scale", "small",
		"Payload scale: small, large, custom")
	flags.IntVar(&samples, "samples", harness.DefaultSampleCount,
		"Samples per algorithm/size pair")
	flags.IntVar(&unit, "unit", workload.DefaultUnit,
		"Byte multiplier for the large scale")
	flags.BoolVar(&includeHundred, "include-100", false,
		"Add 100 units to the large scale")
	flags.IntSliceVar(&sizes, "sizes", nil,
		"Explicit payload sizes in bytes for the custom scale")
	flags.IntVar(&batch, "batch", harness.DefaultBatchSize,
		"Payloads prepared per untimed setup phase")
	flags.IntVar(&warmUp, "warmup", 10,
		"Untimed warm-up iterations per pair")
	flags.StringVar(&keyHex, "key", "",
		"Hex MAC key for every algorithm (default: per-algorithm random key)")
	flags.Uint64Var(&seed, "seed", 0,
		"Payload random seed (0 = use current time)")
	flags.StringVar(&throughputUnit, "throughput-unit", "s",
		"Time unit of reported throughput: s, ms, us, ns")
	flags.StringVar(&estimator, "estimator", "mean",
		"Central duration for throughput: mean, median")
	flags.DurationVar(&timeout, "timeout", 0,
		"Abort the run between pairs after this long (0 = no limit)")
	flags.BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")
	flags.StringVar(&samplesOut, "samples-out", "",
		"Write raw samples as JSON lines to this file")
	flags.BoolVar(&gops, "gops", false,
		"Start a gops diagnostics agent")

	return cmd
}

type runConfig struct {
	algorithms     []string
	scale          string
	samples        int
	unit           int
	includeHundred bool
	sizes          []int
	batch          int
	warmUp         int
	keyHex         string
	seed           uint64
	throughputUnit string
	estimator      string
	timeout        time.Duration
	outputJSON     bool
	samplesOut     string
	gops           bool
}

func (c runConfig) harnessConfig() (harness.Config, error) {
	sc, err := workload.ParseScale(c.scale)
	if err != nil {
		return harness.Config{}, &harness.ConfigError{Field: "scale", Err: err}
	}

	var key []byte
	if c.keyHex != "" {
		key, err = hex.DecodeString(c.keyHex)
		if err != nil {
			return harness.Config{}, &harness.ConfigError{
				Field: "key",
				Err:   fmt.Errorf("decode hex: %w", err),
			}
		}
	}

	return harness.Config{
		Algorithms:     c.algorithms,
		Scale:          sc,
		Unit:           c.unit,
		IncludeHundred: c.includeHundred,
		CustomSizes:    c.sizes,
		SampleCount:    c.samples,
		BatchSize:      c.batch,
		WarmUp:         c.warmUp,
		Key:            key,
		Seed:           c.seed,
		Timeout:        c.timeout,
	}, nil
}

func (c runConfig) reporter() (report.Reporter, error) {
	unit, err := report.ParseUnit(c.throughputUnit)
	if err != nil {
		return report.Reporter{}, &harness.ConfigError{
			Field: "throughput-unit",
			Err:   err,
		}
	}

	est, err := report.ParseEstimator(c.estimator)
	if err != nil {
		return report.Reporter{}, &harness.ConfigError{
			Field: "estimator",
			Err:   err,
		}
	}

	return report.Reporter{Unit: unit, Estimator: est}, nil
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg runConfig,
) error {
	// Step 1: Resolve configuration before anything is measured.
	hcfg, err := cfg.harnessConfig()
	if err != nil {
		return err
	}

	reporter, err := cfg.reporter()
	if err != nil {
		return err
	}

	runner, err := harness.NewRunner(mac.Default(), hcfg, logger)
	if err != nil {
		return err
	}

	if cfg.gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("start gops agent: %w", err)
		}
		defer agent.Close()
	}

	// Step 2: Measure every pair sequentially.
	run, runErr := runner.Run(ctx)
	if runErr != nil && run == nil {
		return fmt.Errorf("run: %w", runErr)
	}

	// Step 3: Export raw samples for external statistics.
	if cfg.samplesOut != "" {
		if err := writeSamples(cfg.samplesOut, run); err != nil {
			return err
		}

		logger.InfoContext(ctx, "raw samples written",
			slog.String("path", cfg.samplesOut),
		)
	}

	// Step 4: Generate report.
	summary := reporter.Summarize(run)

	if cfg.outputJSON {
		if err := report.GenerateJSON(out, summary); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else if len(summary.Groups) > 0 {
		if err := report.Generate(out, summary); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}

	if summary.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d", errFailedPairs,
			summary.Failed(), summary.Failed()+summary.Measured())
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func writeSamples(path string, run *harness.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create samples file: %w", err)
	}

	if err := report.WriteSamples(f, run); err != nil {
		f.Close()

		return fmt.Errorf("write samples: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close samples file: %w", err)
	}

	return nil
}
