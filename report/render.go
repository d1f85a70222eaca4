package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/weiihann/macbench/harness"
	"github.com/weiihann/macbench/workload"
)

// Generate writes markdown tables for s: one block of measured entries per
// group, followed by every failed pair.
func Generate(w io.Writer, s Summary) error {
	if len(s.Groups) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintf(w, "## MAC Throughput (%s)\n", s.Scale)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Samples per pair: %d, estimator: %s, seed: %d\n",
		s.SampleCount, s.Estimator, s.Seed)
	fmt.Fprintf(w, "Measured: **%d**, failed: **%d**\n", s.Measured(), s.Failed())
	fmt.Fprintln(w)

	if s.Measured() > 0 {
		// Table header.
		fmt.Fprintf(w, "| Algorithm | Size | Throughput (/%s) | Mean | Median "+
			"| StdDev | P99 | Anomalies |\n", s.Unit)
		fmt.Fprintln(w, "|-----------|------|------------------|------|--------"+
			"|--------|-----|-----------|")

		for _, g := range s.Groups {
			for _, e := range g.Entries {
				if !e.Measured {
					continue
				}

				fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %d |\n",
					e.Algorithm,
					workload.SizeName(e.Size),
					formatRate(e.Throughput),
					formatDuration(e.Mean),
					formatDuration(e.Median),
					formatDuration(e.StdDev),
					formatDuration(e.P99),
					e.Anomalies,
				)
			}
		}

		fmt.Fprintln(w)
	}

	if s.Failed() > 0 {
		fmt.Fprintln(w, "### FAILED")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Algorithm | Size | Error |")
		fmt.Fprintln(w, "|-----------|------|-------|")

		for _, g := range s.Groups {
			for _, e := range g.Entries {
				if e.Measured {
					continue
				}

				fmt.Fprintf(w, "| %s | %s | %s |\n",
					e.Algorithm,
					workload.SizeName(e.Size),
					strings.ReplaceAll(e.Error, "|", "\\|"),
				)
			}
		}
	}

	return nil
}

// GenerateJSON writes s as indented JSON to w.
func GenerateJSON(w io.Writer, s Summary) error {
	out, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

// SampleRecord is one line of the raw sample stream.
type SampleRecord struct {
	Name      string  `json:"name"`
	Algorithm string  `json:"algorithm"`
	Scale     string  `json:"scale"`
	Size      int     `json:"size_bytes"`
	SamplesNs []int64 `json:"samples_ns"`
	Anomalies []int   `json:"anomalies,omitempty"`
}

// WriteSamples writes one JSON line per measured work item carrying every
// raw sample in collection order, for consumption by a statistics engine.
func WriteSamples(w io.Writer, run *harness.Run) error {
	for _, res := range run.Results() {
		rec := SampleRecord{
			Name:      res.Item.Label(),
			Algorithm: res.Item.Algorithm.ID,
			Scale:     res.Item.Scale,
			Size:      res.Item.Size,
			SamplesNs: make([]int64, len(res.Samples)),
		}

		for i, s := range res.Samples {
			rec.SamplesNs[i] = s.Nanoseconds()
		}

		for _, a := range res.Anomalies {
			rec.Anomalies = append(rec.Anomalies, a.Index)
		}

		line, err := sonic.ConfigStd.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s: %w", rec.Name, err)
		}

		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write %s: %w", rec.Name, err)
		}
	}

	return nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatRate(bytes float64) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	unit := 0

	for bytes >= 1024 && unit < len(units)-1 {
		bytes /= 1024
		unit++
	}

	formatted := fmt.Sprintf("%.2f", bytes)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + " " + units[unit]
}
