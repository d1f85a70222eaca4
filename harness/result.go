// Package harness measures MAC constructions over a matrix of payload sizes.
package harness

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/weiihann/macbench/mac"
	"github.com/weiihann/macbench/workload"
)

// ErrSkipped marks work items that were not measured because an earlier
// size of the same algorithm failed.
var ErrSkipped = errors.New("skipped")

// WorkItem is one (algorithm, payload size) pair scheduled for measurement.
type WorkItem struct {
	Algorithm mac.Descriptor
	Size      int
	Scale     string
}

// Label names the item as <algorithm>-<scale>/<size>, e.g.
// HMAC-SHA1-SMALL/512B.
func (w WorkItem) Label() string {
	return fmt.Sprintf("%s-%s/%s",
		w.Algorithm.ID, w.Scale, workload.SizeName(w.Size))
}

// Anomaly flags a sample whose duration is not positive, which points at
// clock resolution or environment problems. Flagged samples stay in the
// result.
type Anomaly struct {
	Index    int
	Duration time.Duration
}

func (a Anomaly) String() string {
	return fmt.Sprintf("sample %d: %s", a.Index, a.Duration)
}

// Result holds every sample collected for one work item, in collection
// order.
type Result struct {
	Item      WorkItem
	Samples   []time.Duration
	Anomalies []Anomaly
}

// Mean returns the arithmetic mean of the samples, rounded to the nearest
// nanosecond. It is for logging only; reported throughput is computed by
// the report package from the unrounded samples.
func (r *Result) Mean() time.Duration {
	if len(r.Samples) == 0 {
		return 0
	}

	var total float64
	for _, s := range r.Samples {
		total += float64(s)
	}

	return time.Duration(math.Round(total / float64(len(r.Samples))))
}

// Outcome is the result of one work item: either a Result or the error
// that prevented it.
type Outcome struct {
	Item   WorkItem
	Result *Result
	Err    error
}

// Measured reports whether the item produced a Result.
func (o Outcome) Measured() bool {
	return o.Err == nil && o.Result != nil
}

// Run collects the outcomes of one pass over the plan.
type Run struct {
	Scale       string
	SampleCount int
	Seed        uint64
	Outcomes    []Outcome
}

// Results returns the measured results in plan order.
func (r *Run) Results() []*Result {
	var out []*Result
	for _, o := range r.Outcomes {
		if o.Measured() {
			out = append(out, o.Result)
		}
	}

	return out
}

// Failures returns the outcomes that carry an error, in plan order.
func (r *Run) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Measured() {
			out = append(out, o)
		}
	}

	return out
}

// Labels returns the label of every outcome in plan order.
func (r *Run) Labels() []string {
	labels := make([]string, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		labels = append(labels, o.Item.Label())
	}

	return labels
}
