// Package workload produces the payloads a benchmark run feeds to each MAC:
// the ordered matrix of payload sizes and the per-iteration random buffers.
package workload

import (
	"errors"
	"fmt"
	"strings"
)

// Scale selects a family of payload sizes.
type Scale string

const (
	ScaleSmall  Scale = "small"
	ScaleLarge  Scale = "large"
	ScaleCustom Scale = "custom"
)

// DefaultUnit is the multiplier applied to large-scale sizes.
const DefaultUnit = 1024

// ErrInvalidSizes is returned for a size matrix that cannot be measured.
var ErrInvalidSizes = errors.New("invalid size matrix")

// MatrixConfig controls size matrix generation.
type MatrixConfig struct {
	Scale Scale
	// Unit multiplies large-scale sizes. Zero selects DefaultUnit.
	Unit int
	// IncludeHundred appends 100 units to the large-scale sweep.
	IncludeHundred bool
	// Custom holds explicit byte counts for ScaleCustom.
	Custom []int
}

// SizeSpec is an ordered, strictly increasing sweep of payload sizes.
type SizeSpec struct {
	Scale Scale
	Label string
	Sizes []int
}

// ParseScale maps a user-supplied name to a Scale.
func ParseScale(s string) (Scale, error) {
	switch sc := Scale(strings.ToLower(s)); sc {
	case ScaleSmall, ScaleLarge, ScaleCustom:
		return sc, nil
	default:
		return "", fmt.Errorf("%w: unknown scale %q", ErrInvalidSizes, s)
	}
}

// Sizes returns the size sweep described by cfg.
func Sizes(cfg MatrixConfig) (SizeSpec, error) {
	var sizes []int

	switch cfg.Scale {
	case ScaleSmall:
		sizes = doublings(1, 512)

	case ScaleLarge:
		unit := cfg.Unit
		if unit == 0 {
			unit = DefaultUnit
		}

		if unit < 0 {
			return SizeSpec{}, fmt.Errorf("%w: unit %d", ErrInvalidSizes, unit)
		}

		for _, n := range doublings(1, 64) {
			sizes = append(sizes, n*unit)
		}

		if cfg.IncludeHundred {
			sizes = append(sizes, 100*unit)
		}

	case ScaleCustom:
		sizes = append([]int(nil), cfg.Custom...)

	default:
		return SizeSpec{}, fmt.Errorf(
			"%w: unknown scale %q", ErrInvalidSizes, cfg.Scale,
		)
	}

	if err := validateSizes(sizes); err != nil {
		return SizeSpec{}, err
	}

	return SizeSpec{
		Scale: cfg.Scale,
		Label: strings.ToUpper(string(cfg.Scale)),
		Sizes: sizes,
	}, nil
}

func doublings(from, to int) []int {
	var out []int
	for n := from; n <= to; n *= 2 {
		out = append(out, n)
	}

	return out
}

func validateSizes(sizes []int) error {
	if len(sizes) == 0 {
		return fmt.Errorf("%w: no sizes", ErrInvalidSizes)
	}

	for i, n := range sizes {
		if n <= 0 {
			return fmt.Errorf("%w: size %d is not positive", ErrInvalidSizes, n)
		}

		if i > 0 && n <= sizes[i-1] {
			return fmt.Errorf(
				"%w: sizes must be strictly increasing (%d after %d)",
				ErrInvalidSizes, n, sizes[i-1],
			)
		}
	}

	return nil
}

// SizeName renders n as 512B, 4KiB or 1MiB. Sizes that are not whole
// multiples of the unit keep the smaller unit.
func SizeName(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKiB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
