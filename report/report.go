// Package report turns measured runs into comparable throughput entries
// and renders them as markdown tables, JSON, or a raw sample stream.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/weiihann/macbench/harness"
)

// Estimator picks the central duration used for throughput.
type Estimator string

const (
	EstimatorMean   Estimator = "mean"
	EstimatorMedian Estimator = "median"
)

// ErrNoElapsedTime is returned for results whose central duration is not
// positive, so no throughput can be derived.
var ErrNoElapsedTime = errors.New("no positive elapsed time")

// Entry is the labeled throughput of one (algorithm, size) pair. Failed
// pairs have Measured set to false and carry no statistics.
type Entry struct {
	Name       string        `json:"name"`
	Algorithm  string        `json:"algorithm"`
	Scale      string        `json:"scale"`
	Size       int           `json:"size_bytes"`
	Measured   bool          `json:"measured"`
	Throughput float64       `json:"throughput,omitempty"`
	Mean       time.Duration `json:"mean_ns,omitempty"`
	Median     time.Duration `json:"median_ns,omitempty"`
	StdDev     time.Duration `json:"stddev_ns,omitempty"`
	Min        time.Duration `json:"min_ns,omitempty"`
	P99        time.Duration `json:"p99_ns,omitempty"`
	Samples    int           `json:"samples,omitempty"`
	Anomalies  int           `json:"anomalies,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Group holds the entries of one algorithm at one scale, by size.
type Group struct {
	Algorithm string  `json:"algorithm"`
	Scale     string  `json:"scale"`
	Entries   []Entry `json:"entries"`
}

// Summary is the reportable form of a run.
type Summary struct {
	Scale       string    `json:"scale"`
	Unit        string    `json:"throughput_unit"`
	Estimator   Estimator `json:"estimator"`
	SampleCount int       `json:"sample_count"`
	Seed        uint64    `json:"seed"`
	Groups      []Group   `json:"groups"`
}

// Measured returns the number of measured entries.
func (s Summary) Measured() int {
	return s.count(true)
}

// Failed returns the number of failed entries.
func (s Summary) Failed() int {
	return s.count(false)
}

func (s Summary) count(measured bool) int {
	n := 0
	for _, g := range s.Groups {
		for _, e := range g.Entries {
			if e.Measured == measured {
				n++
			}
		}
	}

	return n
}

// Reporter converts results to entries. Throughput is bytes per Unit for
// every entry it produces.
type Reporter struct {
	Unit      time.Duration
	Estimator Estimator
}

func (r Reporter) unit() time.Duration {
	if r.Unit <= 0 {
		return time.Second
	}

	return r.Unit
}

func (r Reporter) estimator() Estimator {
	if r.Estimator == "" {
		return EstimatorMean
	}

	return r.Estimator
}

// Entry computes the statistics and throughput of res.
func (r Reporter) Entry(res *harness.Result) (Entry, error) {
	item := res.Item

	if len(res.Samples) == 0 {
		return Entry{}, fmt.Errorf("%s: %w", item.Label(), ErrNoElapsedTime)
	}

	data := make(stats.Float64Data, len(res.Samples))
	for i, s := range res.Samples {
		data[i] = float64(s)
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: mean: %w", item.Label(), err)
	}

	median, err := stats.Median(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: median: %w", item.Label(), err)
	}

	stddev, err := stats.StandardDeviationSample(data)
	if err != nil || len(data) < 2 {
		stddev = 0
	}

	minimum, err := stats.Min(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: min: %w", item.Label(), err)
	}

	p99, err := stats.PercentileNearestRank(data, 99)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: p99: %w", item.Label(), err)
	}

	central := mean
	if r.estimator() == EstimatorMedian {
		central = median
	}

	if central <= 0 {
		return Entry{}, fmt.Errorf("%s: %w", item.Label(), ErrNoElapsedTime)
	}

	return Entry{
		Name:       item.Label(),
		Algorithm:  item.Algorithm.ID,
		Scale:      item.Scale,
		Size:       item.Size,
		Measured:   true,
		Throughput: float64(item.Size) * float64(r.unit()) / central,
		Mean:       time.Duration(mean),
		Median:     time.Duration(median),
		StdDev:     time.Duration(stddev),
		Min:        time.Duration(minimum),
		P99:        time.Duration(p99),
		Samples:    len(res.Samples),
		Anomalies:  len(res.Anomalies),
	}, nil
}

// Failure returns the entry for a work item that was not measured.
func (r Reporter) Failure(item harness.WorkItem, err error) Entry {
	return Entry{
		Name:      item.Label(),
		Algorithm: item.Algorithm.ID,
		Scale:     item.Scale,
		Size:      item.Size,
		Error:     err.Error(),
	}
}

// Summarize reports every outcome of run, grouped by algorithm and scale
// in run order. Results without a usable duration are reported as failed.
func (r Reporter) Summarize(run *harness.Run) Summary {
	summary := Summary{
		Scale:       run.Scale,
		Unit:        UnitName(r.unit()),
		Estimator:   r.estimator(),
		SampleCount: run.SampleCount,
		Seed:        run.Seed,
	}

	index := make(map[string]int)

	for _, o := range run.Outcomes {
		var entry Entry

		if o.Measured() {
			e, err := r.Entry(o.Result)
			if err != nil {
				entry = r.Failure(o.Item, err)
			} else {
				entry = e
			}
		} else {
			entry = r.Failure(o.Item, o.Err)
		}

		key := o.Item.Algorithm.ID + "\x00" + o.Item.Scale

		i, ok := index[key]
		if !ok {
			i = len(summary.Groups)
			index[key] = i
			summary.Groups = append(summary.Groups, Group{
				Algorithm: o.Item.Algorithm.ID,
				Scale:     o.Item.Scale,
			})
		}

		summary.Groups[i].Entries = append(summary.Groups[i].Entries, entry)
	}

	return summary
}

// ParseUnit maps s, ms, us/µs and ns to a duration.
func ParseUnit(s string) (time.Duration, error) {
	switch strings.ToLower(s) {
	case "s", "sec", "second":
		return time.Second, nil
	case "ms":
		return time.Millisecond, nil
	case "us", "µs":
		return time.Microsecond, nil
	case "ns":
		return time.Nanosecond, nil
	default:
		return 0, fmt.Errorf("unknown throughput unit %q", s)
	}
}

// ParseEstimator validates an estimator name.
func ParseEstimator(s string) (Estimator, error) {
	switch e := Estimator(strings.ToLower(s)); e {
	case EstimatorMean, EstimatorMedian:
		return e, nil
	default:
		return "", fmt.Errorf("unknown estimator %q", s)
	}
}

// UnitName is the inverse of ParseUnit for the supported units.
func UnitName(unit time.Duration) string {
	switch unit {
	case time.Second:
		return "s"
	case time.Millisecond:
		return "ms"
	case time.Microsecond:
		return "µs"
	case time.Nanosecond:
		return "ns"
	default:
		return unit.String()
	}
}
