package analysis

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientData reports a track with fewer frames than the window.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidInput reports a precondition violation (sample rate, duration, lengths).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNonFinite reports NaN or infinite values in a feature series.
	ErrNonFinite = errors.New("non-finite value")
)

// FramesPerSecond returns the analysis frame rate for a sample rate.
func FramesPerSecond(sampleRate int) float64 {
	return float64(sampleRate) / HopLength
}

// WindowFrames converts a duration in seconds into a window width in frames.
// The result is never below 1.
func WindowFrames(duration float64, sampleRate int) int {
	width := int(math.Round(duration * FramesPerSecond(sampleRate)))
	if width < 1 {
		return 1
	}
	return width
}

// SearchWindow returns the start index of the width-frame run of scores
// with the largest sum. Only fully overlapping positions are candidates and
// ties resolve to the lowest index.
func SearchWindow(scores []float64, width int) (int, error) {
	if width < 1 {
		return 0, fmt.Errorf("%w: window width %d", ErrInvalidInput, width)
	}
	if len(scores) < width {
		return 0, fmt.Errorf("%w: %d frames, window needs %d", ErrInsufficientData, len(scores), width)
	}

	// Each candidate is summed from scratch in index order so that equal
	// windows produce bit-identical sums and the earliest one is kept.
	best, bestSum := 0, math.Inf(-1)
	for i := 0; i+width <= len(scores); i++ {
		var sum float64
		for _, v := range scores[i : i+width] {
			sum += v
		}
		if sum > bestSum {
			best, bestSum = i, sum
		}
	}
	return best, nil
}

// ClampStart converts a start frame into seconds, keeps the requested window
// inside the track, and rounds to two decimals. Rounding never moves the
// start past total-requested.
func ClampStart(index int, framesPerSecond, total, requested float64) float64 {
	limit := math.Max(0, total-requested)
	start := math.Min(float64(index)/framesPerSecond, limit)
	if rounded := roundCentis(start); rounded <= limit {
		return rounded
	}
	return math.Floor(start*100) / 100
}

func roundCentis(v float64) float64 {
	return math.Round(v*100) / 100
}
