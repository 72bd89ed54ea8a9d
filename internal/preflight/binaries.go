package preflight

import (
	"fmt"
	"os/exec"
	"strings"

	"chorus/internal/config"
)

// Requirement defines an external binary chorus relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a binary.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Result converts a binary status into a preflight result.
func (s Status) Result() Result {
	detail := s.Detail
	if s.Available {
		detail = s.Path
	}
	return Result{Name: s.Name, Passed: s.Available, Optional: s.Optional, Detail: detail}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		switch {
		case req.Command == "":
			status.Detail = "command not configured"
		default:
			path, err := exec.LookPath(req.Command)
			if err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", req.Command)
				break
			}
			status.Available = true
			status.Path = path
		}
		results = append(results, status)
	}
	return results
}

// CheckSystemDeps evaluates the binaries required by the given config.
func CheckSystemDeps(cfg *config.Config) []Status {
	return CheckBinaries([]Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Fetch.YtDlpBinary,
			Description: "Required to download source audio",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Fetch.FFprobeBinary,
			Description: "Verifies downloaded audio",
			Optional:    !cfg.Fetch.VerifyAudio,
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Analysis.FFmpegBinary,
			Description: "Decodes formats other than WAV and MP3; used by yt-dlp for extraction",
			Optional:    cfg.Fetch.AudioFormat == "mp3" || cfg.Fetch.AudioFormat == "wav",
		},
	})
}
