package waveform

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

const wavFormatFloat = 3

var errFloatWAV = errors.New("floating point wav")

func decodeWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("not a valid wav file")
	}
	if decoder.WavAudioFormat == wavFormatFloat {
		return nil, 0, errFloatWAV
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read pcm buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, 0, errors.New("wav header missing format")
	}

	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, 0, fmt.Errorf("unsupported wav bit depth %d", bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	offset := 0.0
	if bitDepth == 8 {
		// 8-bit PCM is unsigned.
		offset = scale
	}
	return downmix(buf.Data, buf.Format.NumChannels, func(v int) float64 {
		return (float64(v) - offset) / scale
	}), buf.Format.SampleRate, nil
}

// downmix averages interleaved channels into one mono series.
func downmix(data []int, channels int, convert func(int) float64) []float64 {
	frames := len(data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += convert(data[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
