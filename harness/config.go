package harness

import (
	"errors"
	"fmt"
	"time"

	"github.com/weiihann/macbench/workload"
)

const (
	DefaultSampleCount = 500
	DefaultBatchSize   = 64

	// MinRecommendedSamples is the smallest sample count that still
	// supports interval estimates downstream. Lower counts only warn.
	MinRecommendedSamples = 100
)

// ErrConfiguration is matched by every *ConfigError.
var ErrConfiguration = errors.New("invalid configuration")

// ConfigError reports a configuration problem found before measurement.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// Config is the already-parsed description of a benchmark run.
type Config struct {
	// Algorithms selects descriptors by id. Empty selects all.
	Algorithms []string

	Scale          workload.Scale
	Unit           int
	IncludeHundred bool
	CustomSizes    []int

	SampleCount int
	// BatchSize is how many payloads are sampled per untimed setup phase.
	// Zero selects DefaultBatchSize.
	BatchSize int
	WarmUp    int

	// Key is used for every algorithm when set. Otherwise each work item
	// gets a key of the algorithm's preferred size.
	Key  []byte
	Seed uint64

	// Timeout bounds the whole run. It is only checked between work items.
	Timeout time.Duration
}

// Matrix returns the size matrix part of the configuration.
func (c Config) Matrix() workload.MatrixConfig {
	return workload.MatrixConfig{
		Scale:          c.Scale,
		Unit:           c.Unit,
		IncludeHundred: c.IncludeHundred,
		Custom:         c.CustomSizes,
	}
}

// Validate checks everything that does not need the registry.
func (c Config) Validate() error {
	if c.SampleCount <= 0 {
		return &ConfigError{
			Field: "sample_count",
			Err:   fmt.Errorf("must be positive, got %d", c.SampleCount),
		}
	}

	if c.BatchSize < 0 {
		return &ConfigError{
			Field: "batch_size",
			Err:   fmt.Errorf("must not be negative, got %d", c.BatchSize),
		}
	}

	if c.WarmUp < 0 {
		return &ConfigError{
			Field: "warm_up",
			Err:   fmt.Errorf("must not be negative, got %d", c.WarmUp),
		}
	}

	if c.Timeout < 0 {
		return &ConfigError{
			Field: "timeout",
			Err:   fmt.Errorf("must not be negative, got %s", c.Timeout),
		}
	}

	if _, err := workload.Sizes(c.Matrix()); err != nil {
		return &ConfigError{Field: "sizes", Err: err}
	}

	return nil
}
