package clips

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Bounds applied to every saved clip, in seconds.
const (
	MinDuration     = 15.0
	MaxDuration     = 35.0
	DefaultDuration = 20.0
)

// ErrInvalidClip reports a start or end time that cannot describe a clip.
var ErrInvalidClip = errors.New("invalid clip")

// Clip is a saved preview range for one identifier.
type Clip struct {
	Identifier string
	StartTime  float64
	EndTime    float64
	Duration   float64
	UpdatedAt  time.Time
}

// Resolve builds the clip for start and an optional end. Without an end the
// clip lasts DefaultDuration; with one, the duration is clamped into
// [MinDuration, MaxDuration] and the end follows the clamp.
func Resolve(identifier string, start float64, end *float64) (Clip, error) {
	if math.IsNaN(start) || math.IsInf(start, 0) || start < 0 {
		return Clip{}, fmt.Errorf("%w: start time must be a number >= 0, got %v", ErrInvalidClip, start)
	}
	duration := DefaultDuration
	if end != nil {
		if math.IsNaN(*end) || math.IsInf(*end, 0) {
			return Clip{}, fmt.Errorf("%w: end time must be a number, got %v", ErrInvalidClip, *end)
		}
		duration = math.Min(MaxDuration, math.Max(MinDuration, *end-start))
	}
	return Clip{
		Identifier: identifier,
		StartTime:  roundCentis(start),
		EndTime:    roundCentis(start + duration),
		Duration:   roundCentis(duration),
	}, nil
}

func roundCentis(v float64) float64 {
	return math.Round(v*100) / 100
}
