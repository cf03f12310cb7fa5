package mergers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"matchvault/internal/services"
	"matchvault/internal/testsupport"
)

type scriptedRunner struct {
	steps []func(args []string) (string, error)
	calls [][]string
}

func (s *scriptedRunner) Run(_ context.Context, _ string, args []string) (string, error) {
	s.calls = append(s.calls, slices.Clone(args))
	index := len(s.calls) - 1
	if index >= len(s.steps) {
		return "", errors.New("unexpected invocation")
	}
	return s.steps[index](args)
}

func writeOutput(t *testing.T, args []string, content string) {
	t.Helper()
	dest := args[len(args)-1]
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
}

func twoInputs(t *testing.T, dir string) []string {
	t.Helper()
	inputs := []string{filepath.Join(dir, "half1.mp4"), filepath.Join(dir, "half2.mp4")}
	for _, input := range inputs {
		if err := os.WriteFile(input, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return inputs
}

func TestMergeStreamCopySucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inputs := twoInputs(t, cfg.Paths.StagingDir)
	dest := filepath.Join(cfg.Paths.StagingDir, "merged.mp4")

	runner := &scriptedRunner{steps: []func([]string) (string, error){
		func(args []string) (string, error) {
			if !slices.Contains(args, "concat") || !slices.Contains(args, "copy") {
				t.Fatalf("expected concat demuxer stream copy, got %v", args)
			}
			writeOutput(t, args, "merged")
			return "", nil
		},
	}}
	merger := NewFFmpeg(cfg, nil, WithRunner(runner))

	path, err := merger.Merge(context.Background(), inputs, dest)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if path != dest {
		t.Fatalf("path = %q, want %q", path, dest)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("call count = %d, want 1", len(runner.calls))
	}

	// The concat manifest must not survive the merge.
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".concat-") {
			t.Fatalf("manifest left behind: %s", entry.Name())
		}
	}
}

func TestMergeFallsBackToReencode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inputs := twoInputs(t, cfg.Paths.StagingDir)
	dest := filepath.Join(cfg.Paths.StagingDir, "merged.mp4")

	runner := &scriptedRunner{steps: []func([]string) (string, error){
		func([]string) (string, error) {
			return "Non-monotonic DTS", errors.New("exit status 1")
		},
		func(args []string) (string, error) {
			joined := strings.Join(args, " ")
			if !strings.Contains(joined, "concat=n=2:v=1:a=1") {
				t.Fatalf("expected concat filter, got %v", args)
			}
			if !strings.Contains(joined, "-c:v "+cfg.Merge.VideoCodec) {
				t.Fatalf("expected configured video codec, got %v", args)
			}
			writeOutput(t, args, "merged")
			return "", nil
		},
	}}
	merger := NewFFmpeg(cfg, nil, WithRunner(runner))

	path, err := merger.Merge(context.Background(), inputs, dest)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if path != dest {
		t.Fatalf("path = %q, want %q", path, dest)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("call count = %d, want 2", len(runner.calls))
	}
}

func TestMergeFailsWhenBothPathsFail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	inputs := twoInputs(t, cfg.Paths.StagingDir)
	dest := filepath.Join(cfg.Paths.StagingDir, "merged.mp4")

	fail := func([]string) (string, error) { return "corrupt input", errors.New("exit status 1") }
	runner := &scriptedRunner{steps: []func([]string) (string, error){fail, fail}}
	merger := NewFFmpeg(cfg, nil, WithRunner(runner))

	_, err := merger.Merge(context.Background(), inputs, dest)
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("err = %v, want ErrMerge", err)
	}
}

func TestMergeRejectsMissingInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	existing := filepath.Join(cfg.Paths.StagingDir, "half1.mp4")
	if err := os.WriteFile(existing, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := &scriptedRunner{}
	merger := NewFFmpeg(cfg, nil, WithRunner(runner))

	_, err := merger.Merge(context.Background(), []string{existing, filepath.Join(cfg.Paths.StagingDir, "absent.mp4")}, filepath.Join(cfg.Paths.StagingDir, "out.mp4"))
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("err = %v, want ErrMerge", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("no subprocess may run for missing inputs, calls = %d", len(runner.calls))
	}
}

func TestManifestEscapesSingleQuotes(t *testing.T) {
	dir := t.TempDir()
	manifest, err := writeManifest([]string{filepath.Join(dir, "it's.mp4")}, filepath.Join(dir, "out.mp4"))
	if err != nil {
		t.Fatalf("writeManifest: %v", err)
	}
	defer os.Remove(manifest)

	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `it'\''s.mp4`) {
		t.Fatalf("manifest = %q", data)
	}
}
