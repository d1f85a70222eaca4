package harness

import (
	"log/slog"
	"time"

	"github.com/weiihann/macbench/mac"
	"github.com/weiihann/macbench/workload"
)

// BatchPolicy controls how many payloads are prepared in one untimed setup
// phase. It only amortizes setup overhead: every sample still times exactly
// one construct + update + finalize.
type BatchPolicy struct {
	Size int
}

// Engine times MAC computations for single work items. The zero value
// uses the wall clock, a time-seeded Sampler and the default logger.
type Engine struct {
	SampleCount int
	WarmUp      int
	Batch       BatchPolicy
	// Key overrides the per-item key when non-nil.
	Key     []byte
	Sampler *workload.Sampler
	Logger  *slog.Logger

	now func() time.Time
}

// NewEngine creates an Engine from cfg.
func NewEngine(
	cfg Config,
	sampler *workload.Sampler,
	logger *slog.Logger,
) *Engine {
	batch := cfg.BatchSize
	if batch == 0 {
		batch = DefaultBatchSize
	}

	return &Engine{
		SampleCount: cfg.SampleCount,
		WarmUp:      cfg.WarmUp,
		Batch:       BatchPolicy{Size: batch},
		Key:         cfg.Key,
		Sampler:     sampler,
		Logger:      logger,
		now:         time.Now,
	}
}

// Measure collects exactly SampleCount samples for item. A construction
// failure aborts the item and is returned as a *mac.ConstructionError.
func (e *Engine) Measure(item WorkItem) (*Result, error) {
	e.defaults()

	d := item.Algorithm
	key := e.key(d)

	// Fail before any sampling if the key does not fit.
	if _, err := d.New(key); err != nil {
		return nil, err
	}

	for range e.WarmUp {
		if _, err := e.timeOne(d, key, e.Sampler.Sample(item.Size)); err != nil {
			return nil, err
		}
	}

	result := &Result{
		Item:    item,
		Samples: make([]time.Duration, 0, e.SampleCount),
	}

	batchSize := max(e.Batch.Size, 1)
	batch := make([][]byte, 0, min(batchSize, e.SampleCount))

	for len(result.Samples) < e.SampleCount {
		n := min(batchSize, e.SampleCount-len(result.Samples))

		// Setup, untimed: every iteration gets its own buffer.
		batch = batch[:0]
		for range n {
			batch = append(batch, e.Sampler.Sample(item.Size))
		}

		for _, payload := range batch {
			elapsed, err := e.timeOne(d, key, payload)
			if err != nil {
				return nil, err
			}

			if elapsed <= 0 {
				result.Anomalies = append(result.Anomalies, Anomaly{
					Index:    len(result.Samples),
					Duration: elapsed,
				})
			}

			result.Samples = append(result.Samples, elapsed)
		}

		clear(batch)
	}

	if len(result.Anomalies) > 0 {
		e.Logger.Warn("non-positive samples recorded",
			slog.String("item", item.Label()),
			slog.Int("anomalies", len(result.Anomalies)),
		)
	}

	return result, nil
}

func (e *Engine) defaults() {
	if e.now == nil {
		e.now = time.Now
	}
	if e.Sampler == nil {
		e.Sampler = workload.NewSampler(0)
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
}

// timeOne times a single construct + update + finalize. The tag is
// discarded.
func (e *Engine) timeOne(
	d mac.Descriptor,
	key, payload []byte,
) (time.Duration, error) {
	start := e.now()

	ctx, err := d.New(key)
	if err != nil {
		return 0, err
	}

	ctx.Update(payload)
	_ = ctx.Finalize()

	return e.now().Sub(start), nil
}

func (e *Engine) key(d mac.Descriptor) []byte {
	if e.Key != nil {
		return e.Key
	}

	return e.Sampler.Key(d.PreferredKeySize())
}
