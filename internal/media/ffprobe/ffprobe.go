package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Audio summarizes the audio content of a downloaded file.
type Audio struct {
	// Streams counts streams whose codec_type is audio.
	Streams    int
	Codec      string
	SampleRate int
	Channels   int
	// Duration is the container duration in seconds, NaN when ffprobe
	// reported something unparsable and 0 when it reported nothing.
	Duration float64
}

// HasAudio reports whether at least one audio stream was found.
func (a Audio) HasAudio() bool { return a.Streams > 0 }

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeAudio runs ffprobe on path and summarizes its audio streams.
func ProbeAudio(ctx context.Context, binary, path string) (Audio, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Audio{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-hide_banner",
		"-show_entries", "stream=codec_name,codec_type,sample_rate,channels:format=duration",
		"-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Audio{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Audio{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parse(output)
}

func parse(output []byte) (Audio, error) {
	var raw probeOutput
	if err := json.Unmarshal(output, &raw); err != nil {
		return Audio{}, fmt.Errorf("ffprobe: decode output: %w", err)
	}
	audio := Audio{Duration: parseSeconds(raw.Format.Duration)}
	for _, s := range raw.Streams {
		if !strings.EqualFold(s.CodecType, "audio") {
			continue
		}
		if audio.Streams == 0 {
			audio.Codec = s.CodecName
			audio.Channels = s.Channels
			if rate, err := strconv.Atoi(strings.TrimSpace(s.SampleRate)); err == nil && rate > 0 {
				audio.SampleRate = rate
			}
		}
		audio.Streams++
	}
	return audio, nil
}

func parseSeconds(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
