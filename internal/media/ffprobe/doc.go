// Package ffprobe summarizes the audio streams ffprobe reports for a file.
//
// The fetcher uses ProbeAudio to confirm that a freshly downloaded file carries
// at least one audio stream before it is handed to the decoder.
package ffprobe
