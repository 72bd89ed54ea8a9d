package waveform

import (
	"fmt"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
)

const streamChunk = 4096

func decodeMP3(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	stream, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("mp3 decode: %w", err)
	}
	defer stream.Close()

	samples, err := drain(stream, stream.Len())
	if err != nil {
		return nil, 0, fmt.Errorf("mp3 stream: %w", err)
	}
	return samples, int(format.SampleRate), nil
}

// drain reads s to the end, averaging the two channels beep always yields.
func drain(s beep.Streamer, sizeHint int) ([]float64, error) {
	if sizeHint < 0 {
		sizeHint = 0
	}
	out := make([]float64, 0, sizeHint)
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, (frame[0]+frame[1])/2)
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}
