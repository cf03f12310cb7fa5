package fetch

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

// scriptedExecutor replays one step per invocation and records every argument
// list it saw.
type scriptedExecutor struct {
	steps []func(args []string) (string, error)
	calls [][]string
}

func (s *scriptedExecutor) Run(_ context.Context, _ string, args []string) (string, error) {
	s.calls = append(s.calls, slices.Clone(args))
	index := len(s.calls) - 1
	if index >= len(s.steps) {
		return "", errors.New("unexpected invocation")
	}
	return s.steps[index](args)
}

func writeDest(t *testing.T, args []string, content string) {
	t.Helper()
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			if err := os.WriteFile(args[i+1], []byte(content), 0o644); err != nil {
				t.Fatalf("write dest: %v", err)
			}
			return
		}
	}
	t.Fatalf("no -o flag in args: %v", args)
}

func TestFetchFallsBackToNextTier(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &scriptedExecutor{steps: []func([]string) (string, error){
		func(args []string) (string, error) {
			// Leave a truncated partial behind so cleanup is exercised.
			writeDest(t, args, "")
			return "", errors.New("requested format not available")
		},
		func(args []string) (string, error) {
			writeDest(t, args, "video bytes")
			return "", nil
		},
	}}
	adapter := NewAdapter(cfg, nil, WithExecutor(exec))

	path, err := adapter.Fetch(context.Background(), "https://video.example.com/watch?v=abc", "LionsFCVTigersUnited-2024-05-01")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := filepath.Join(cfg.Paths.StagingDir, "LionsFCVTigersUnited-2024-05-01.mp4")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(exec.calls))
	}
	if got := formatSelector(t, exec.calls[0]); !strings.Contains(got, "height<=1080") {
		t.Fatalf("first tier selector = %q, want 1080 cap", got)
	}
	if got := formatSelector(t, exec.calls[1]); !strings.Contains(got, "height<=720") {
		t.Fatalf("second tier selector = %q, want 720 cap", got)
	}
}

func TestFetchExhaustedTiersReportsFetchError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fail := func([]string) (string, error) { return "", errors.New("boom") }
	exec := &scriptedExecutor{steps: []func([]string) (string, error){fail, fail, fail}}
	adapter := NewAdapter(cfg, nil, WithExecutor(exec))

	_, err := adapter.Fetch(context.Background(), "https://video.example.com/watch?v=abc", "match")
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	// Preferred, fallback, then the uncapped best rung.
	if len(exec.calls) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(exec.calls))
	}
	if got := formatSelector(t, exec.calls[2]); got != "bestvideo+bestaudio/best" {
		t.Fatalf("final tier selector = %q", got)
	}
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging not cleaned: %v", entries)
	}
}

func TestFetchEmptyOutputCountsAsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	exec := &scriptedExecutor{steps: []func([]string) (string, error){
		func(args []string) (string, error) {
			// Tool exits zero but writes nothing usable.
			writeDest(t, args, "")
			return "", nil
		},
		func(args []string) (string, error) {
			writeDest(t, args, "bytes")
			return "", nil
		},
	}}
	adapter := NewAdapter(cfg, nil, WithExecutor(exec))

	path, err := adapter.Fetch(context.Background(), "https://video.example.com/v/1", "match")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty output, got %v %v", info, err)
	}
}

func TestFetchRejectsRelativeURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	adapter := NewAdapter(cfg, nil, WithExecutor(&scriptedExecutor{}))

	_, err := adapter.Fetch(context.Background(), "not-a-url", "match")
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func formatSelector(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-f" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("no -f flag in args: %v", args)
	return ""
}
