// Package analysis locates the most chorus-like fixed-length segment of an
// audio track.
//
// A Waveform is sliced into overlapping frames (2048 samples, hop 512). Each
// frame yields a short-time energy value (RMS) and a brightness value (the
// spectral centroid of the Hann-windowed magnitude spectrum). Both series are
// min-max normalized and fused into a per-frame saliency score weighted 0.7
// energy / 0.3 brightness. The window search then picks the contiguous run of
// frames matching the requested duration with the highest total saliency and
// converts it to a start offset clamped to the track bounds.
//
// Everything in this package is a pure function of its inputs. The Analyzer
// only adds orchestration: it loads the waveform from a Source, runs the
// stages in order, and converts every failure into a deterministic fallback
// Result (start 0.0) instead of returning an error.
package analysis
