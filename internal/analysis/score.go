package analysis

import (
	"fmt"
	"math"
)

const (
	// EnergyWeight is the share of normalized energy in the saliency score.
	EnergyWeight = 0.7
	// BrightnessWeight is the share of normalized brightness in the saliency score.
	BrightnessWeight = 0.3

	degenerateRange = 1e-6
)

// Normalize min-max scales series into [0,1]. An effectively constant series
// (max-min below 1e-6) normalizes to all zeros.
func Normalize(series []float64) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	lo, hi := series[0], series[0]
	for _, v := range series[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span < degenerateRange {
		return out
	}
	for i, v := range series {
		out[i] = (v - lo) / span
	}
	return out
}

// Fuse normalizes both feature series and combines them into one saliency
// score per frame.
func Fuse(f Features) ([]float64, error) {
	if len(f.Energy) != len(f.Brightness) {
		return nil, fmt.Errorf("%w: energy has %d frames, brightness has %d", ErrInvalidInput, len(f.Energy), len(f.Brightness))
	}
	if err := checkFinite("energy", f.Energy); err != nil {
		return nil, err
	}
	if err := checkFinite("brightness", f.Brightness); err != nil {
		return nil, err
	}
	energy := Normalize(f.Energy)
	brightness := Normalize(f.Brightness)
	scores := make([]float64, len(energy))
	for i := range scores {
		scores[i] = EnergyWeight*energy[i] + BrightnessWeight*brightness[i]
	}
	return scores, nil
}

func checkFinite(name string, series []float64) error {
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s frame %d is %v", ErrNonFinite, name, i, v)
		}
	}
	return nil
}
