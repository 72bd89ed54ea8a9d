package waveform

import (
	"fmt"

	"github.com/faiface/beep"
)

// resampleQuality is the interpolation order handed to beep.Resample.
const resampleQuality = 4

// monoStreamer exposes a mono sample slice as a beep.Streamer.
type monoStreamer struct {
	samples []float64
	pos     int
}

func (m *monoStreamer) Stream(buf [][2]float64) (int, bool) {
	if m.pos >= len(m.samples) {
		return 0, false
	}
	n := copy2(buf, m.samples[m.pos:])
	m.pos += n
	return n, true
}

func (m *monoStreamer) Err() error { return nil }

func copy2(dst [][2]float64, src []float64) int {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i][0] = src[i]
		dst[i][1] = src[i]
	}
	return n
}

func resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		return samples, nil
	}
	r := beep.Resample(resampleQuality, beep.SampleRate(from), beep.SampleRate(to), &monoStreamer{samples: samples})
	want := int(int64(len(samples)) * int64(to) / int64(from))
	out, err := drain(r, want+1)
	if err != nil {
		return nil, err
	}
	// The resampler may pad its final block with silence.
	if len(out) > want {
		out = out[:want]
	}
	return out, nil
}
