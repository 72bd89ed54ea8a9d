package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chorus/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CHORUS_API_TOKEN", "")
	t.Setenv("CHORUS_API_BIND", "")
	t.Setenv("CHORUS_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "chorus", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if want := filepath.Join(tempHome, ".local", "share", "chorus", "media"); cfg.Paths.MediaDir != want {
		t.Fatalf("unexpected media dir: got %q want %q", cfg.Paths.MediaDir, want)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "" {
		t.Fatalf("expected empty api token, got %q", cfg.Paths.APIToken)
	}
	if cfg.Fetch.MinValidBytes != 1000 || cfg.Fetch.AudioFormat != "mp3" || cfg.Fetch.AudioQuality != "128K" {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Analysis.SampleRate != 22050 || cfg.Analysis.DefaultDuration != 20 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if !cfg.ResultCache.Enabled || cfg.ResultCache.MaxEntries != 10000 {
		t.Fatalf("unexpected cache defaults: %+v", cfg.ResultCache)
	}
	if got := cfg.SourceURL("BV1xx411c7mD"); got != "https://www.bilibili.com/video/BV1xx411c7mD" {
		t.Fatalf("unexpected source url %q", got)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.MediaDir, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if filepath.Dir(cfg.DatabasePath()) != cfg.Paths.StateDir {
		t.Fatalf("database path %q outside state dir", cfg.DatabasePath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chorus.toml")

	type payload struct {
		Paths struct {
			MediaDir string `toml:"media_dir"`
			APIBind  string `toml:"api_bind"`
		} `toml:"paths"`
		Analysis struct {
			DefaultDuration float64 `toml:"default_duration"`
		} `toml:"analysis"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.MediaDir = filepath.Join(tempDir, "media")
	custom.Paths.APIBind = "0.0.0.0:9000"
	custom.Analysis.DefaultDuration = 15
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "DEBUG"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.MediaDir != custom.Paths.MediaDir {
		t.Fatalf("unexpected media dir %q", cfg.Paths.MediaDir)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("unexpected api bind %q", cfg.Paths.APIBind)
	}
	if cfg.Analysis.DefaultDuration != 15 {
		t.Fatalf("unexpected default duration %v", cfg.Analysis.DefaultDuration)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %+v", cfg.Logging)
	}
	if cfg.Fetch.YtDlpBinary != "yt-dlp" {
		t.Fatalf("expected default yt-dlp binary, got %q", cfg.Fetch.YtDlpBinary)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "chorus.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "staging_dir") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHORUS_API_TOKEN", " secret ")
	t.Setenv("CHORUS_API_BIND", "127.0.0.1:9999")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected token from env, got %q", cfg.Paths.APIToken)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9999" {
		t.Fatalf("expected bind from env, got %q", cfg.Paths.APIBind)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }, "paths.api_bind"},
		{"template", func(c *config.Config) { c.Fetch.URLTemplate = "https://example.com/video" }, "fetch.url_template"},
		{"format", func(c *config.Config) { c.Fetch.AudioFormat = "aiff" }, "fetch.audio_format"},
		{"sample rate", func(c *config.Config) { c.Analysis.SampleRate = 100 }, "analysis.sample_rate"},
		{"duration", func(c *config.Config) { c.Analysis.DefaultDuration = -1 }, "analysis.default_duration"},
		{"level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHORUS_API_TOKEN", "")
	t.Setenv("CHORUS_API_BIND", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	defaults := config.Default()
	if cfg.Fetch.URLTemplate != defaults.Fetch.URLTemplate || cfg.ResultCache.MaxEntries != defaults.ResultCache.MaxEntries {
		t.Fatalf("sample config diverges from defaults: %+v", cfg)
	}
}

func TestLoadHonorsConfigEnvironmentVariable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHORUS_API_TOKEN", "")
	t.Setenv("CHORUS_API_BIND", "")
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "alt.toml")
	if err := os.WriteFile(path, []byte("[result_cache]\nmax_entries = 42\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHORUS_CONFIG", path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path || !exists {
		t.Fatalf("expected %s to be used, got %q (exists=%v)", path, resolved, exists)
	}
	if cfg.ResultCache.MaxEntries != 42 {
		t.Fatalf("max_entries = %d, want 42", cfg.ResultCache.MaxEntries)
	}
}
