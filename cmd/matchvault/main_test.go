package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"matchvault/internal/config"
	"matchvault/internal/jobqueue"
	"matchvault/internal/worker"
)

// writeTestConfig produces a valid config file pointing all paths into the
// test's temp space and returns its location.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := `
[paths]
staging_dir = "` + filepath.Join(base, "staging") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[blob]
endpoint = "127.0.0.1:9000"
bucket = "test-bucket"
`
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEnqueueUploadCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	output, err := runCommand(t, "-c", configPath, "enqueue", "upload", "M1")
	if err != nil {
		t.Fatalf("enqueue upload: %v", err)
	}
	if !strings.Contains(output, "Enqueued upload job") {
		t.Fatalf("output = %q", output)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	store, err := jobqueue.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	messages, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 1 {
		t.Fatalf("message count = %d, want 1", len(messages))
	}
	job, err := worker.DecodeJob(messages[0].Body)
	if err != nil {
		t.Fatalf("decode enqueued body: %v", err)
	}
	if job.Command != worker.CommandMatchUpload || job.MatchID != "M1" {
		t.Fatalf("job = %+v", job)
	}
}

func TestEnqueueMergeRequiresOutput(t *testing.T) {
	configPath := writeTestConfig(t)

	_, err := runCommand(t, "-c", configPath, "enqueue", "merge", "https://a", "https://b")
	if err == nil || !strings.Contains(err.Error(), "--output") {
		t.Fatalf("err = %v, want missing --output", err)
	}
}

func TestQueueStatsCommand(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCommand(t, "-c", configPath, "enqueue", "upload", "M1"); err != nil {
		t.Fatal(err)
	}
	output, err := runCommand(t, "-c", configPath, "queue", "stats")
	if err != nil {
		t.Fatalf("queue stats: %v", err)
	}
	if !strings.Contains(output, "visible") || !strings.Contains(output, "dead letter") {
		t.Fatalf("output = %q", output)
	}
}

func TestQueueClearRequiresConfirmation(t *testing.T) {
	configPath := writeTestConfig(t)

	if _, err := runCommand(t, "-c", configPath, "queue", "clear"); err == nil {
		t.Fatal("clear without --yes must fail")
	}
	output, err := runCommand(t, "-c", configPath, "queue", "clear", "--yes")
	if err != nil {
		t.Fatalf("queue clear --yes: %v", err)
	}
	if !strings.Contains(output, "Removed 0 message(s).") {
		t.Fatalf("output = %q", output)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	output, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(output, "Wrote sample configuration") {
		t.Fatalf("output = %q", output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestConfigShowFallsBackToDefaults(t *testing.T) {
	configPath := writeTestConfig(t)

	output, err := runCommand(t, "-c", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(output, "test-bucket") {
		t.Fatalf("output = %q", output)
	}
}
