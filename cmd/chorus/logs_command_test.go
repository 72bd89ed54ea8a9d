package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chorus/internal/logging"
)

func TestLogsCommandFiltersByIdentifier(t *testing.T) {
	env := setupCLITestEnv(t)

	records := []string{
		`{"level":"INFO","msg":"analysis complete","identifier":"BVone","correlation_id":"req-1"}`,
		`{"level":"INFO","msg":"analysis complete","identifier":"BVtwo","correlation_id":"req-2"}`,
		`{"level":"WARN","msg":"analysis fell back","identifier":"BVone","correlation_id":"req-3"}`,
	}
	if err := os.MkdirAll(env.cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	path := filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)
	if err := os.WriteFile(path, []byte(strings.Join(records, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, _, err := runCLI(t, []string{"logs", "--identifier", "BVone"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "req-1")
	requireContains(t, out, "req-3")
	if strings.Contains(out, "BVtwo") {
		t.Fatalf("unexpected record for other identifier:\n%s", out)
	}

	out, _, err = runCLI(t, []string{"logs", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs -n 1: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), "\n") != 0 || !strings.Contains(out, "req-3") {
		t.Fatalf("expected only the last record, got:\n%s", out)
	}
}

func TestLogsCommandMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}
