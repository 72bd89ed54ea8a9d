package analysis

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeIsIdempotent(t *testing.T) {
	series := []float64{0, 0.25, 1, 0.5, 0.75}
	got := Normalize(series)
	for i := range series {
		if math.Abs(got[i]-series[i]) > 1e-12 {
			t.Fatalf("index %d: got %v want %v", i, got[i], series[i])
		}
	}
	again := Normalize(got)
	for i := range got {
		if math.Abs(again[i]-got[i]) > 1e-12 {
			t.Fatalf("second pass index %d: got %v want %v", i, again[i], got[i])
		}
	}
}

func TestNormalizeScalesIntoUnitRange(t *testing.T) {
	got := Normalize([]float64{-2, 0, 2})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("index %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeDegenerateSeries(t *testing.T) {
	tests := map[string][]float64{
		"constant": {3, 3, 3, 3},
		"near":     {1, 1 + 5e-7, 1},
		"single":   {42},
		"empty":    {},
	}
	for name, series := range tests {
		got := Normalize(series)
		if len(got) != len(series) {
			t.Fatalf("%s: length %d, want %d", name, len(got), len(series))
		}
		for i, v := range got {
			if v != 0 {
				t.Fatalf("%s: index %d = %v, want 0", name, i, v)
			}
		}
	}
}

func TestFuseWeightsEnergyOverBrightness(t *testing.T) {
	scores, err := Fuse(Features{
		Energy:     []float64{0, 10},
		Brightness: []float64{200, 100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scores[0]-BrightnessWeight) > 1e-12 {
		t.Fatalf("scores[0] = %v, want %v", scores[0], BrightnessWeight)
	}
	if math.Abs(scores[1]-EnergyWeight) > 1e-12 {
		t.Fatalf("scores[1] = %v, want %v", scores[1], EnergyWeight)
	}
}

func TestFuseStaysInUnitRange(t *testing.T) {
	energy := []float64{0.1, 0.9, 0.4, 0.3, 0.7}
	brightness := []float64{1200, 300, 4000, 800, 2500}
	scores, err := Fuse(Features{Energy: energy, Brightness: brightness})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range scores {
		if v < 0 || v > 1 || math.IsNaN(v) {
			t.Fatalf("score %d = %v out of range", i, v)
		}
	}
}

func TestFuseRejectsMismatchedLengths(t *testing.T) {
	_, err := Fuse(Features{Energy: []float64{1, 2}, Brightness: []float64{1}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFuseRejectsNonFinite(t *testing.T) {
	_, err := Fuse(Features{Energy: []float64{1, math.NaN()}, Brightness: []float64{1, 2}})
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	_, err = Fuse(Features{Energy: []float64{1, 2}, Brightness: []float64{math.Inf(1), 2}})
	if !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite for Inf, got %v", err)
	}
}
