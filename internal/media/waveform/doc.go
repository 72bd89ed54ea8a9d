// Package waveform decodes local audio files into mono analysis waveforms.
//
// WAV files are read with go-audio/wav and MP3 files with beep's mp3 decoder.
// Both are downmixed to mono and resampled to the analysis rate with
// beep.Resample. Any other container is piped through ffmpeg as signed 16-bit
// little-endian PCM at the target rate.
package waveform
