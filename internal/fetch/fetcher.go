package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/singleflight"

	"chorus/internal/config"
	"chorus/internal/logging"
	"chorus/internal/media/ffprobe"
	"chorus/internal/services"
)

// ErrUnavailable reports that no usable audio could be obtained for an identifier.
var ErrUnavailable = errors.New("media unavailable")

const lockRetryDelay = 250 * time.Millisecond

// Options configures a Fetcher.
type Options struct {
	MediaDir      string
	YtDlpBinary   string
	FFprobeBinary string
	URLTemplate   string
	AudioFormat   string
	AudioQuality  string
	MinValidBytes int64
	Timeout       time.Duration
	VerifyAudio   bool
}

// OptionsFromConfig maps the [fetch] and [paths] sections onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MediaDir:      cfg.Paths.MediaDir,
		YtDlpBinary:   cfg.Fetch.YtDlpBinary,
		FFprobeBinary: cfg.Fetch.FFprobeBinary,
		URLTemplate:   cfg.Fetch.URLTemplate,
		AudioFormat:   cfg.Fetch.AudioFormat,
		AudioQuality:  cfg.Fetch.AudioQuality,
		MinValidBytes: cfg.Fetch.MinValidBytes,
		Timeout:       cfg.FetchTimeout(),
		VerifyAudio:   cfg.Fetch.VerifyAudio,
	}
}

// Fetcher obtains local audio files for track identifiers.
type Fetcher struct {
	opts   Options
	group  singleflight.Group
	logger *slog.Logger
}

// New constructs a Fetcher.
func New(opts Options, logger *slog.Logger) *Fetcher {
	if opts.AudioFormat == "" {
		opts.AudioFormat = "mp3"
	}
	if opts.YtDlpBinary == "" {
		opts.YtDlpBinary = "yt-dlp"
	}
	return &Fetcher{opts: opts, logger: logging.NewComponentLogger(logger, "fetch")}
}

// Path returns where the audio for a normalized identifier is stored.
func (f *Fetcher) Path(identifier string) string {
	return filepath.Join(f.opts.MediaDir, identifier+"."+f.opts.AudioFormat)
}

// Valid reports whether path holds a usable download.
func (f *Fetcher) Valid(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Size() > f.opts.MinValidBytes
}

// Fetch returns the local path of the audio for identifier, downloading it
// when no valid copy exists yet.
func (f *Fetcher) Fetch(ctx context.Context, identifier string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := NormalizeIdentifier(identifier)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "fetch", "normalize identifier", "", err)
	}
	ctx = services.WithIdentifier(ctx, id)
	logger := logging.WithContext(ctx, f.logger)

	path := f.Path(id)
	if f.Valid(path) {
		logger.Debug("audio already present", logging.String("path", path))
		return path, nil
	}

	ch := f.group.DoChan(id, func() (any, error) {
		// Detached so one caller's cancellation does not fail the shared download.
		return f.download(context.WithoutCancel(ctx), id, path)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (f *Fetcher) download(ctx context.Context, id, path string) (string, error) {
	logger := logging.WithContext(ctx, f.logger)
	if err := os.MkdirAll(f.opts.MediaDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "create media dir", f.opts.MediaDir, err)
	}

	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return "", services.Wrap(services.ErrTimeout, "fetch", "acquire download lock", path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	// Another process may have finished the download while we waited.
	if f.Valid(path) {
		return path, nil
	}
	_ = os.Remove(path)

	started := time.Now()
	url := fmt.Sprintf(f.opts.URLTemplate, id)
	logger.Info("downloading audio", logging.String("url", url))
	if err := f.runYtDlp(ctx, url, id); err != nil {
		_ = os.Remove(path)
		logging.WarnWithContext(logger, "audio download failed", "fetch_failed",
			logging.String("url", url),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the identifier exists and yt-dlp is up to date"),
			logging.String(logging.FieldImpact, "no preview offset for this track"),
		)
		return "", err
	}

	if !f.Valid(path) {
		_ = os.Remove(path)
		return "", services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "no usable output file",
			fmt.Errorf("%w: %s", ErrUnavailable, id))
	}

	if f.opts.VerifyAudio {
		if err := f.verify(ctx, path); err != nil {
			_ = os.Remove(path)
			return "", err
		}
	}

	logger.Info("audio downloaded",
		logging.String("path", path),
		logging.Duration("elapsed", time.Since(started)),
	)
	return path, nil
}

func (f *Fetcher) runYtDlp(ctx context.Context, url, id string) error {
	args := []string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", f.opts.AudioFormat,
		"--audio-quality", f.opts.AudioQuality,
		"-o", filepath.Join(f.opts.MediaDir, id+".%(ext)s"),
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		url,
	}
	cmd := exec.CommandContext(ctx, f.opts.YtDlpBinary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := lastLine(stderr.String())
		if ctx.Err() != nil {
			return services.Wrap(services.ErrTimeout, "fetch", "yt-dlp", detail, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err()))
		}
		return services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", detail, fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return nil
}

func (f *Fetcher) verify(ctx context.Context, path string) error {
	audio, err := ffprobe.ProbeAudio(ctx, f.opts.FFprobeBinary, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "fetch", "ffprobe", "", fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	if !audio.HasAudio() {
		return services.Wrap(services.ErrExternalTool, "fetch", "ffprobe", "no audio stream",
			fmt.Errorf("%w: %s", ErrUnavailable, filepath.Base(path)))
	}
	return nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
