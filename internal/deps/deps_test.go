package deps

import (
	"os"
	"path/filepath"
	"testing"

	"matchvault/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("result count = %d, want %d", len(results), len(reqs))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestFirstMissingSkipsOptional(t *testing.T) {
	statuses := []Status{
		{Name: "Optional", Optional: true},
		{Name: "Required"},
	}
	missing := FirstMissing(statuses)
	if missing == nil || missing.Name != "Required" {
		t.Fatalf("missing = %#v", missing)
	}
	if FirstMissing([]Status{{Name: "OK", Available: true}}) != nil {
		t.Fatal("complete environment must report nil")
	}
}

func TestRequiredReflectsConfiguredBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Fetch.Binary = "yt-dlp-nightly"
	cfg.Merge.FFmpegBinary = "ffmpeg7"

	reqs := Required(cfg)
	if len(reqs) != 2 {
		t.Fatalf("requirement count = %d, want 2", len(reqs))
	}
	if reqs[0].Command != "yt-dlp-nightly" || reqs[1].Command != "ffmpeg7" {
		t.Fatalf("requirements = %+v", reqs)
	}
}
