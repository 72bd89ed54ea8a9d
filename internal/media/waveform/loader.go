package waveform

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"chorus/internal/analysis"
	"chorus/internal/logging"
)

// DefaultSampleRate is the rate waveforms are delivered at when the loader
// is not configured otherwise.
const DefaultSampleRate = 22050

// ErrUnsupportedFormat reports a file the native decoders cannot read and no
// ffmpeg fallback is available for.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Loader decodes audio files into analysis waveforms at a fixed sample rate.
type Loader struct {
	sampleRate int
	ffmpeg     string
	logger     *slog.Logger
}

// NewLoader builds a Loader. A non-positive sample rate selects
// DefaultSampleRate; an empty ffmpeg binary disables the ffmpeg fallback.
func NewLoader(sampleRate int, ffmpegBinary string, logger *slog.Logger) *Loader {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Loader{
		sampleRate: sampleRate,
		ffmpeg:     strings.TrimSpace(ffmpegBinary),
		logger:     logging.NewComponentLogger(logger, "waveform"),
	}
}

// SampleRate returns the rate of every waveform this loader produces.
func (l *Loader) SampleRate() int {
	return l.sampleRate
}

// Load decodes path into a mono waveform at the loader's sample rate.
func (l *Loader) Load(ctx context.Context, path string) (analysis.Waveform, error) {
	if err := ctx.Err(); err != nil {
		return analysis.Waveform{}, err
	}
	started := time.Now()

	var (
		samples []float64
		rate    int
		decoder string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		decoder = "wav"
		samples, rate, err = decodeWAV(path)
		if errors.Is(err, errFloatWAV) && l.ffmpeg != "" {
			decoder = "ffmpeg"
			samples, rate, err = l.decodeFFmpeg(ctx, path)
		}
	case ".mp3":
		decoder = "mp3"
		samples, rate, err = decodeMP3(path)
	default:
		if l.ffmpeg == "" {
			return analysis.Waveform{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
		}
		decoder = "ffmpeg"
		samples, rate, err = l.decodeFFmpeg(ctx, path)
	}
	if err != nil {
		return analysis.Waveform{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if rate != l.sampleRate {
		samples, err = resample(samples, rate, l.sampleRate)
		if err != nil {
			return analysis.Waveform{}, fmt.Errorf("resample %s: %w", filepath.Base(path), err)
		}
	}

	w := analysis.Waveform{Samples: samples, SampleRate: l.sampleRate}
	logging.WithContext(ctx, l.logger).Debug("audio decoded",
		logging.String("path", path),
		logging.String("decoder", decoder),
		logging.Int("source_rate", rate),
		logging.Float64("duration_seconds", w.Duration()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return w, nil
}

// Source returns an analysis.Source that decodes path on demand.
func (l *Loader) Source(path string) analysis.Source {
	return analysis.SourceFunc(func(ctx context.Context) (analysis.Waveform, error) {
		return l.Load(ctx, path)
	})
}

func (l *Loader) decodeFFmpeg(ctx context.Context, path string) ([]float64, int, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, 0, err
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(l.sampleRate),
		"-f", "s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, l.ffmpeg, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, 0, fmt.Errorf("ffmpeg pcm extract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return pcm16ToFloat(stdout.Bytes()), l.sampleRate, nil
}

func pcm16ToFloat(data []byte) []float64 {
	out := make([]float64, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float64(v) / 32768
	}
	return out
}
