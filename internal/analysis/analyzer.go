package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"chorus/internal/logging"
)

// Outcome tells callers whether a start offset came from the scoring
// pipeline or from the fallback path.
type Outcome string

const (
	OutcomeAnalyzed Outcome = "analyzed"
	OutcomeFallback Outcome = "fallback"
)

// Fallback reasons.
const (
	ReasonDecodeFailed     = "decode_failed"
	ReasonInvalidInput     = "invalid_input"
	ReasonInsufficientData = "insufficient_data"
	ReasonNonFinite        = "non_finite"
	ReasonExtraction       = "extraction_failed"
	ReasonPanic            = "panic"
)

// FallbackStart is the offset returned whenever analysis cannot complete.
const FallbackStart = 0.0

// Result is the outcome of one analysis call. StartTime is always usable;
// Outcome and Reason record how it was produced.
type Result struct {
	StartTime    float64
	Outcome      Outcome
	Reason       string
	Err          error
	Duration     float64
	Frames       int
	WindowFrames int
}

// Fallback reports whether the result is the deterministic default.
func (r Result) Fallback() bool {
	return r.Outcome == OutcomeFallback
}

func fallback(reason string, err error) Result {
	return Result{StartTime: FallbackStart, Outcome: OutcomeFallback, Reason: reason, Err: err}
}

// Analyzer runs feature extraction, fusion and window search in order. It
// holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer builds an Analyzer. A nil logger disables logging.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	return &Analyzer{logger: logging.NewComponentLogger(logger, "analysis")}
}

// Analyze loads the waveform from src and returns the best start offset for
// a window of requested seconds. It never fails: any error, including a
// panic inside the pipeline, produces a fallback Result with StartTime 0.
func (a *Analyzer) Analyze(ctx context.Context, src Source, requested float64) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, a.log())
	defer func() {
		if r := recover(); r != nil {
			res = fallback(ReasonPanic, fmt.Errorf("analysis panic: %v", r))
		}
		a.report(logger, requested, res)
	}()

	if src == nil {
		return fallback(ReasonInvalidInput, fmt.Errorf("%w: nil source", ErrInvalidInput))
	}
	if !(requested > 0) || math.IsInf(requested, 0) {
		return fallback(ReasonInvalidInput, fmt.Errorf("%w: requested duration %v", ErrInvalidInput, requested))
	}

	w, err := src.Load(ctx)
	if err != nil {
		return fallback(ReasonDecodeFailed, fmt.Errorf("load waveform: %w", err))
	}
	return run(w, requested)
}

func run(w Waveform, requested float64) Result {
	features, err := ExtractFeatures(w)
	if err != nil {
		return fallback(reasonFor(err), fmt.Errorf("extract features: %w", err))
	}
	scores, err := Fuse(features)
	if err != nil {
		return fallback(reasonFor(err), fmt.Errorf("fuse scores: %w", err))
	}
	width := WindowFrames(requested, w.SampleRate)
	index, err := SearchWindow(scores, width)
	if err != nil {
		res := fallback(reasonFor(err), fmt.Errorf("search window: %w", err))
		res.Duration = w.Duration()
		res.Frames = len(scores)
		res.WindowFrames = width
		return res
	}
	return Result{
		StartTime:    ClampStart(index, w.FramesPerSecond(), w.Duration(), requested),
		Outcome:      OutcomeAnalyzed,
		Duration:     w.Duration(),
		Frames:       len(scores),
		WindowFrames: width,
	}
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, ErrInsufficientData):
		return ReasonInsufficientData
	case errors.Is(err, ErrNonFinite):
		return ReasonNonFinite
	default:
		return ReasonExtraction
	}
}

func (a *Analyzer) report(logger *slog.Logger, requested float64, res Result) {
	if res.Fallback() {
		logging.WarnWithContext(logger, "analysis fell back to default offset", "analysis_fallback",
			logging.String("reason", res.Reason),
			logging.Float64("requested_duration", requested),
			logging.Float64("start_time", res.StartTime),
			logging.Error(res.Err),
			logging.String(logging.FieldErrorHint, "check that the audio decodes and is longer than the requested window"),
			logging.String(logging.FieldImpact, "preview starts at the beginning of the track"),
		)
		return
	}
	attrs := logging.Decision("preview_offset", fmt.Sprintf("%.2f", res.StartTime), "max_window_saliency")
	attrs = append(attrs,
		logging.Float64("requested_duration", requested),
		logging.Float64("track_duration", res.Duration),
		logging.Int("frames", res.Frames),
		logging.Int("window_frames", res.WindowFrames),
	)
	logger.Info("analysis complete", logging.Args(attrs...)...)
}

func (a *Analyzer) log() *slog.Logger {
	if a == nil || a.logger == nil {
		return logging.NewNop()
	}
	return a.logger
}

// FindBestOffset analyzes an in-memory waveform and returns the start time
// in seconds. It returns 0 whenever analysis cannot complete.
func FindBestOffset(samples []float64, sampleRate int, requested float64) float64 {
	var a Analyzer
	w := Waveform{Samples: samples, SampleRate: sampleRate}
	return a.Analyze(context.Background(), InMemory(w), requested).StartTime
}
