package preflight

import (
	"context"

	"chorus/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// MinFreeBytes is the free space below which the media directory check fails.
const MinFreeBytes = 512 << 20

// RunAll executes the filesystem and dependency checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	results := []Result{
		CheckDirectoryAccess("Media directory", cfg.Paths.MediaDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckFreeSpace("Media free space", cfg.Paths.MediaDir, MinFreeBytes))

	for _, status := range CheckSystemDeps(cfg) {
		if ctx.Err() != nil {
			break
		}
		results = append(results, status.Result())
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
