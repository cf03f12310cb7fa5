package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"matchvault/internal/fileutil"
)

func TestNonEmpty(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.mp4")
	if fileutil.NonEmpty(missing) {
		t.Fatal("missing file reported as non-empty")
	}

	empty := filepath.Join(dir, "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if fileutil.NonEmpty(empty) {
		t.Fatal("zero-byte file reported as non-empty")
	}

	full := filepath.Join(dir, "full.mp4")
	if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
		t.Fatalf("write full: %v", err)
	}
	if !fileutil.NonEmpty(full) {
		t.Fatal("expected non-empty file to pass")
	}
}

func TestRemovePartialsSweepsSiblings(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "match.mp4")
	for _, name := range []string{"match.mp4", "match.mp4.part", "match.mp4.ytdl"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if err := fileutil.RemovePartials(target); err != nil {
		t.Fatalf("RemovePartials failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(entries))
	}
}

func TestRemoveAllQuietReportsFailures(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "a.mp4")
	if err := os.WriteFile(present, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	failed := fileutil.RemoveAllQuiet(present, filepath.Join(dir, "gone.mp4"), "")
	if len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Fatal("expected file removed")
	}
}
