package analysis

import (
	"context"
	"fmt"
)

// Waveform is a mono sequence of samples at a fixed sample rate.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the track length in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// FramesPerSecond returns the analysis frame rate for the waveform.
func (w Waveform) FramesPerSecond() float64 {
	return FramesPerSecond(w.SampleRate)
}

func (w Waveform) validate() error {
	if w.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidInput, w.SampleRate)
	}
	return nil
}

// Source provides the waveform for one analysis call. Implementations own
// any decoding; the Analyzer treats a Load error as a decode failure.
type Source interface {
	Load(ctx context.Context) (Waveform, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Waveform, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (Waveform, error) {
	return f(ctx)
}

// InMemory wraps an already-decoded waveform as a Source.
func InMemory(w Waveform) Source {
	return SourceFunc(func(context.Context) (Waveform, error) {
		return w, nil
	})
}
