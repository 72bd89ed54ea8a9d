package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"chorus/internal/config"
	"chorus/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	fixture    string
}

// burstFixture is 15s of silence with a 3s tone starting at 6s.
func burstFixture(t *testing.T) string {
	t.Helper()
	const sr = 22050
	track := make([]float64, 15*sr)
	copy(track[6*sr:], testsupport.Tone(660, 3, sr, 0.8))
	path := filepath.Join(t.TempDir(), "fixture.wav")
	testsupport.WriteWAV(t, path, sr, 1, track)
	return path
}

// copyingYtDlp returns a yt-dlp stub that copies fixture to the -o target.
func copyingYtDlp(fixture string) string {
	return `out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) shift; out="$1" ;;
  esac
  shift
done
out=$(printf '%s' "$out" | sed 's/%(ext)s/wav/')
cp "` + fixture + `" "$out"
`
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	home := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("CHORUS_API_TOKEN", "")
	t.Setenv("CHORUS_API_BIND", "")
	t.Setenv("CHORUS_CONFIG", "")

	fixture := burstFixture(t)
	opts = append([]testsupport.ConfigOption{
		testsupport.WithStubbedBinaries(),
		testsupport.WithStubScript("yt-dlp", copyingYtDlp(fixture)),
	}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Fetch.AudioFormat = "wav"
	cfg.Fetch.VerifyAudio = false

	configPath := filepath.Join(home, ".config", "chorus", "config.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, fixture: fixture}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
