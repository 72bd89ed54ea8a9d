package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFetch()
	c.normalizeAnalysis()
	if c.ResultCache.MaxEntries <= 0 {
		c.ResultCache.MaxEntries = defaultCacheMaxEntries
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.MediaDir) == "" {
		c.Paths.MediaDir = defaultMediaDir
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if value, ok := os.LookupEnv("CHORUS_API_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIBind = value
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("CHORUS_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeFetch() {
	c.Fetch.YtDlpBinary = orDefault(c.Fetch.YtDlpBinary, defaultYtDlpBinary)
	c.Fetch.FFprobeBinary = orDefault(c.Fetch.FFprobeBinary, defaultFFprobeBinary)
	c.Fetch.URLTemplate = orDefault(c.Fetch.URLTemplate, defaultURLTemplate)
	c.Fetch.AudioFormat = strings.ToLower(orDefault(c.Fetch.AudioFormat, defaultAudioFormat))
	c.Fetch.AudioQuality = orDefault(c.Fetch.AudioQuality, defaultAudioQuality)
	if c.Fetch.MinValidBytes < 0 {
		c.Fetch.MinValidBytes = 0
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.SampleRate <= 0 {
		c.Analysis.SampleRate = defaultSampleRate
	}
	if c.Analysis.DefaultDuration <= 0 {
		c.Analysis.DefaultDuration = defaultDuration
	}
	c.Analysis.FFmpegBinary = orDefault(c.Analysis.FFmpegBinary, defaultFFmpegBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
