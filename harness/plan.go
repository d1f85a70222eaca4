package harness

import (
	"github.com/weiihann/macbench/mac"
	"github.com/weiihann/macbench/workload"
)

// Plan expands algorithms × sizes into work items. Items are ordered by
// algorithm first, then by size, following the order of descs and spec.
func Plan(descs []mac.Descriptor, spec workload.SizeSpec) []WorkItem {
	items := make([]WorkItem, 0, len(descs)*len(spec.Sizes))

	for _, d := range descs {
		for _, size := range spec.Sizes {
			items = append(items, WorkItem{
				Algorithm: d,
				Size:      size,
				Scale:     spec.Label,
			})
		}
	}

	return items
}

// resolve validates cfg against reg and builds the plan.
func resolve(
	reg *mac.Registry,
	cfg Config,
) (workload.SizeSpec, []WorkItem, error) {
	if err := cfg.Validate(); err != nil {
		return workload.SizeSpec{}, nil, err
	}

	descs, err := reg.Select(cfg.Algorithms)
	if err != nil {
		return workload.SizeSpec{}, nil, &ConfigError{
			Field: "algorithms", Err: err,
		}
	}

	if len(descs) == 0 {
		return workload.SizeSpec{}, nil, &ConfigError{
			Field: "algorithms", Err: mac.ErrUnknownAlgorithm,
		}
	}

	spec, err := workload.Sizes(cfg.Matrix())
	if err != nil {
		return workload.SizeSpec{}, nil, &ConfigError{Field: "sizes", Err: err}
	}

	return spec, Plan(descs, spec), nil
}
