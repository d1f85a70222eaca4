package harness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/weiihann/macbench/mac"
	"github.com/weiihann/macbench/workload"
)

// Runner executes a validated plan, one work item at a time.
type Runner struct {
	Config Config
	Logger *slog.Logger

	spec    workload.SizeSpec
	items   []WorkItem
	sampler *workload.Sampler
	engine  *Engine
}

// NewRunner validates cfg against reg and prepares the plan. Any problem
// is returned as a *ConfigError and nothing is measured.
func NewRunner(
	reg *mac.Registry,
	cfg Config,
	logger *slog.Logger,
) (*Runner, error) {
	spec, items, err := resolve(reg, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.SampleCount < MinRecommendedSamples {
		logger.Warn("sample count too low for confidence intervals",
			slog.Int("samples", cfg.SampleCount),
			slog.Int("recommended", MinRecommendedSamples),
		)
	}

	sampler := workload.NewSampler(cfg.Seed)

	return &Runner{
		Config:  cfg,
		Logger:  logger,
		spec:    spec,
		items:   items,
		sampler: sampler,
		engine:  NewEngine(cfg, sampler, logger),
	}, nil
}

// Plan returns a copy of the work items in execution order.
func (r *Runner) Plan() []WorkItem {
	return append([]WorkItem(nil), r.items...)
}

// Sizes returns the size sweep of the run.
func (r *Runner) Sizes() workload.SizeSpec {
	return r.spec
}

// Run measures every work item sequentially. A failing item is recorded
// as an Outcome and stops the remaining sizes of its algorithm only.
// Cancellation is honored between items; the partial Run is returned with
// the context error.
func (r *Runner) Run(ctx context.Context) (*Run, error) {
	if r.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Config.Timeout)
		defer cancel()
	}

	run := &Run{
		Scale:       r.spec.Label,
		SampleCount: r.Config.SampleCount,
		Seed:        r.sampler.Seed(),
		Outcomes:    make([]Outcome, 0, len(r.items)),
	}

	r.Logger.InfoContext(ctx, "starting run",
		slog.String("scale", r.spec.Label),
		slog.Any("sizes", r.spec.Sizes),
		slog.Int("work_items", len(r.items)),
		slog.Int("samples", r.Config.SampleCount),
		slog.Uint64("seed", run.Seed),
	)

	failed := make(map[string]WorkItem)
	runStart := time.Now()

	for _, item := range r.items {
		if err := ctx.Err(); err != nil {
			return run, fmt.Errorf("run aborted before %s: %w",
				item.Label(), err)
		}

		logger := r.Logger.With(
			slog.String("algorithm", item.Algorithm.ID),
			slog.Int("size", item.Size),
		)

		if cause, ok := failed[item.Algorithm.ID]; ok {
			run.Outcomes = append(run.Outcomes, Outcome{
				Item: item,
				Err: fmt.Errorf("%w: %s failed at %s",
					ErrSkipped, cause.Algorithm.ID,
					workload.SizeName(cause.Size)),
			})

			continue
		}

		start := time.Now()

		result, err := r.engine.Measure(item)
		if err != nil {
			logger.ErrorContext(ctx, "measurement failed",
				slog.String("error", err.Error()),
			)

			failed[item.Algorithm.ID] = item
			run.Outcomes = append(run.Outcomes, Outcome{Item: item, Err: err})

			continue
		}

		logger.DebugContext(ctx, "work item measured",
			slog.Duration("mean", result.Mean()),
			slog.Duration("wall_time", time.Since(start)),
		)

		run.Outcomes = append(run.Outcomes, Outcome{
			Item:   item,
			Result: result,
		})
	}

	r.Logger.InfoContext(ctx, "run finished",
		slog.Int("measured", len(run.Results())),
		slog.Int("failed", len(run.Failures())),
		slog.Duration("wall_time", time.Since(runStart)),
	)

	return run, nil
}
