package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		return errors.New("paths.media_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if strings.Count(c.Fetch.URLTemplate, "%s") != 1 {
		return fmt.Errorf("fetch.url_template %q must contain exactly one %%s placeholder", c.Fetch.URLTemplate)
	}
	switch c.Fetch.AudioFormat {
	case "mp3", "wav", "m4a", "opus", "flac":
	default:
		return fmt.Errorf("fetch.audio_format %q is not supported (mp3, wav, m4a, opus, flac)", c.Fetch.AudioFormat)
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.SampleRate < 8000 || c.Analysis.SampleRate > 192000 {
		return fmt.Errorf("analysis.sample_rate %d must be between 8000 and 192000", c.Analysis.SampleRate)
	}
	if math.IsNaN(c.Analysis.DefaultDuration) || math.IsInf(c.Analysis.DefaultDuration, 0) || c.Analysis.DefaultDuration <= 0 {
		return errors.New("analysis.default_duration must be a positive number of seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
