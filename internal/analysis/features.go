package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	// FrameLength is the number of samples per analysis frame.
	FrameLength = 2048
	// HopLength is the sample stride between consecutive frame starts.
	HopLength = 512
)

// Features holds the two per-frame series extracted from a waveform. Both
// slices always have the same length.
type Features struct {
	Energy     []float64
	Brightness []float64
}

// Len returns the number of frames.
func (f Features) Len() int {
	return len(f.Energy)
}

// FrameCount returns the number of frames derived from a waveform of the
// given length. Frames are centered on multiples of HopLength and the signal
// is zero-padded by FrameLength/2 on both sides, so every sample contributes
// to at least one frame and a partial tail frame is never dropped.
func FrameCount(samples int) int {
	if samples <= 0 {
		return 0
	}
	return 1 + samples/HopLength
}

// ExtractFeatures computes the RMS energy and spectral centroid series of w.
// Both features share the same framing and zero-padding convention.
func ExtractFeatures(w Waveform) (Features, error) {
	if err := w.validate(); err != nil {
		return Features{}, err
	}
	n := FrameCount(len(w.Samples))
	out := Features{
		Energy:     make([]float64, n),
		Brightness: make([]float64, n),
	}
	if n == 0 {
		return out, nil
	}

	hann := window.Hann(FrameLength)
	frame := make([]float64, FrameLength)
	windowed := make([]float64, FrameLength)
	binHz := float64(w.SampleRate) / FrameLength

	for t := 0; t < n; t++ {
		fillFrame(frame, w.Samples, t*HopLength-FrameLength/2)
		out.Energy[t] = rms(frame)
		for i, v := range frame {
			windowed[i] = v * hann[i]
		}
		out.Brightness[t] = spectralCentroid(fft.FFTReal(windowed), binHz)
	}
	return out, nil
}

// fillFrame copies samples[start:start+len(dst)] into dst, writing zeros for
// positions outside the signal.
func fillFrame(dst, samples []float64, start int) {
	for i := range dst {
		idx := start + i
		if idx < 0 || idx >= len(samples) {
			dst[i] = 0
			continue
		}
		dst[i] = samples[idx]
	}
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// spectralCentroid returns the magnitude-weighted mean frequency over the
// non-negative bins of spectrum. A silent frame has centroid 0.
func spectralCentroid(spectrum []complex128, binHz float64) float64 {
	bins := len(spectrum)/2 + 1
	if bins > len(spectrum) {
		bins = len(spectrum)
	}
	var weighted, total float64
	for k := 0; k < bins; k++ {
		mag := cmplx.Abs(spectrum[k])
		weighted += mag * float64(k) * binHz
		total += mag
	}
	if total <= 1e-12 {
		return 0
	}
	return weighted / total
}
