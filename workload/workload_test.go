package workload

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func TestSizesSmall(t *testing.T) {
	spec, err := Sizes(MatrixConfig{Scale: ScaleSmall})
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}

	want := []int{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}
	if !slices.Equal(spec.Sizes, want) {
		t.Errorf("sizes = %v, want %v", spec.Sizes, want)
	}
	if spec.Label != "SMALL" {
		t.Errorf("label = %q, want SMALL", spec.Label)
	}
}

func TestSizesLarge(t *testing.T) {
	tests := []struct {
		name string
		cfg  MatrixConfig
		want []int
	}{
		{
			name: "default unit",
			cfg:  MatrixConfig{Scale: ScaleLarge},
			want: []int{1024, 2048, 4096, 8192, 16384, 32768, 65536},
		},
		{
			name: "explicit unit",
			cfg:  MatrixConfig{Scale: ScaleLarge, Unit: 1024},
			want: []int{1024, 2048, 4096, 8192, 16384, 32768, 65536},
		},
		{
			name: "with hundred",
			cfg: MatrixConfig{
				Scale: ScaleLarge, Unit: 1024, IncludeHundred: true,
			},
			want: []int{
				1024, 2048, 4096, 8192, 16384, 32768, 65536, 102400,
			},
		},
		{
			name: "small unit",
			cfg:  MatrixConfig{Scale: ScaleLarge, Unit: 10},
			want: []int{10, 20, 40, 80, 160, 320, 640},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Sizes(tt.cfg)
			if err != nil {
				t.Fatalf("Sizes failed: %v", err)
			}

			if !slices.Equal(spec.Sizes, tt.want) {
				t.Errorf("sizes = %v, want %v", spec.Sizes, tt.want)
			}
			if spec.Label != "LARGE" {
				t.Errorf("label = %q, want LARGE", spec.Label)
			}
		})
	}
}

func TestSizesDeterministic(t *testing.T) {
	cfg := MatrixConfig{Scale: ScaleLarge, IncludeHundred: true}

	a, err := Sizes(cfg)
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}

	b, err := Sizes(cfg)
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}

	if !slices.Equal(a.Sizes, b.Sizes) {
		t.Errorf("sizes differ: %v vs %v", a.Sizes, b.Sizes)
	}
}

func TestSizesRejected(t *testing.T) {
	tests := []struct {
		name string
		cfg  MatrixConfig
	}{
		{"empty custom", MatrixConfig{Scale: ScaleCustom}},
		{"zero size", MatrixConfig{Scale: ScaleCustom, Custom: []int{0, 1}}},
		{"negative size", MatrixConfig{Scale: ScaleCustom, Custom: []int{-4}}},
		{"duplicate", MatrixConfig{Scale: ScaleCustom, Custom: []int{4, 4}}},
		{"decreasing", MatrixConfig{Scale: ScaleCustom, Custom: []int{8, 4}}},
		{"negative unit", MatrixConfig{Scale: ScaleLarge, Unit: -1}},
		{"unknown scale", MatrixConfig{Scale: "huge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sizes(tt.cfg)
			if !errors.Is(err, ErrInvalidSizes) {
				t.Errorf("err = %v, want ErrInvalidSizes", err)
			}
		})
	}
}

func TestSizesCustom(t *testing.T) {
	custom := []int{13, 1500, 9000}

	spec, err := Sizes(MatrixConfig{Scale: ScaleCustom, Custom: custom})
	if err != nil {
		t.Fatalf("Sizes failed: %v", err)
	}

	custom[0] = 99
	if spec.Sizes[0] != 13 {
		t.Error("size spec aliases caller slice")
	}
	if spec.Label != "CUSTOM" {
		t.Errorf("label = %q, want CUSTOM", spec.Label)
	}
}

func TestParseScale(t *testing.T) {
	for _, in := range []string{"small", "LARGE", "Custom"} {
		if _, err := ParseScale(in); err != nil {
			t.Errorf("ParseScale(%q) failed: %v", in, err)
		}
	}

	if _, err := ParseScale("medium"); err == nil {
		t.Error("expected error for unknown scale")
	}
}

func TestSizeName(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{1, "1B"},
		{512, "512B"},
		{1024, "1KiB"},
		{1500, "1500B"},
		{100 * 1024, "100KiB"},
		{1 << 20, "1MiB"},
	}

	for _, tt := range tests {
		got := SizeName(tt.input)
		if got != tt.want {
			t.Errorf("SizeName(%d) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSampleLength(t *testing.T) {
	s := NewSampler(42)

	for _, n := range []int{0, 1, 13, 512, 100 * 1024} {
		if got := len(s.Sample(n)); got != n {
			t.Errorf("len(Sample(%d)) = %d", n, got)
		}
	}
}

func TestSampleFresh(t *testing.T) {
	s := NewSampler(42)

	a := s.Sample(64)
	b := s.Sample(64)

	if bytes.Equal(a, b) {
		t.Error("consecutive samples are identical")
	}
	if &a[0] == &b[0] {
		t.Error("consecutive samples share a buffer")
	}
}

func TestSamplerDeterministic(t *testing.T) {
	a := NewSampler(7)
	b := NewSampler(7)

	if !bytes.Equal(a.Sample(256), b.Sample(256)) {
		t.Error("samplers with equal seeds diverge")
	}
	if !bytes.Equal(a.Key(32), b.Key(32)) {
		t.Error("keys from equal seeds diverge")
	}
}

func TestSamplerTimeSeed(t *testing.T) {
	s := NewSampler(0)
	if s.Seed() == 0 {
		t.Error("zero seed was not replaced")
	}
}
