package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"matchvault/internal/services"
	"matchvault/internal/testsupport"
)

const sampleFormatTable = `[info] Available formats for match-91:
ID      EXT  RESOLUTION FPS | FILESIZE   TBR PROTO | VCODEC        VBR ACODEC
---------------------------------------------------------------------------
hls-aud m4a  audio only      |   12.1MiB  128 https | audio only       mp4a.40.2
hls-360 mp4  640x360      25 |   88.4MiB  700 https | avc1.4d401e      video only
hls-720 mp4  1280x720     25 |  310.2MiB 2100 https | avc1.4d401f      video only
hls-108 mp4  1920x1080    25 |  720.9MiB 4500 https | avc1.640028      video only
`

func TestParseFormatPairsOrdersByHeightDescending(t *testing.T) {
	pairs, err := parseFormatPairs(sampleFormatTable)
	if err != nil {
		t.Fatalf("parseFormatPairs: %v", err)
	}
	if len(pairs) != 3 {
		t.Fatalf("pair count = %d, want 3", len(pairs))
	}
	wantHeights := []int{1080, 720, 360}
	wantVideo := []string{"hls-108", "hls-720", "hls-360"}
	for i := range pairs {
		if pairs[i].height != wantHeights[i] || pairs[i].videoID != wantVideo[i] {
			t.Fatalf("pair %d = %+v, want height %d video %s", i, pairs[i], wantHeights[i], wantVideo[i])
		}
		if pairs[i].audioID != "hls-aud" {
			t.Fatalf("pair %d audio = %q, want hls-aud", i, pairs[i].audioID)
		}
	}
}

func TestParseFormatPairsRejectsAudiolessTable(t *testing.T) {
	table := "hls-360 mp4 640x360 25 | 88MiB 700 https | avc1 video only\n"
	if _, err := parseFormatPairs(table); !errors.Is(err, services.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
}

func TestAuthenticatedFetchDownloadsConcretePair(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(jar, []byte("# jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testsupport.NewConfig(t, testsupport.WithCookies(jar, "members.example.org"))

	exec := &scriptedExecutor{steps: []func([]string) (string, error){
		func(args []string) (string, error) {
			if !contains(args, "--list-formats") {
				t.Fatalf("first call must list formats: %v", args)
			}
			if !contains(args, "--cookies") {
				t.Fatalf("list-formats must authenticate: %v", args)
			}
			return sampleFormatTable, nil
		},
		func(args []string) (string, error) {
			if got := formatSelector(t, args); got != "hls-108+hls-aud" {
				t.Fatalf("selector = %q, want hls-108+hls-aud", got)
			}
			if !contains(args, "--cookies") {
				t.Fatalf("download must authenticate: %v", args)
			}
			writeDest(t, args, "video bytes")
			return "", nil
		},
	}}
	adapter := NewAdapter(cfg, nil, WithExecutor(exec))

	path, err := adapter.Fetch(context.Background(), "https://members.example.org/match/91", "HomeVAway-2024-05-01")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasSuffix(path, "HomeVAway-2024-05-01.mp4") {
		t.Fatalf("path = %q", path)
	}
	if len(exec.calls) != 2 {
		t.Fatalf("call count = %d, want 2", len(exec.calls))
	}
}

func TestAuthenticatedFetchFailsWhenIntrospectionFails(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "cookies.txt")
	if err := os.WriteFile(jar, []byte("# jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testsupport.NewConfig(t, testsupport.WithCookies(jar, "members.example.org"))

	exec := &scriptedExecutor{steps: []func([]string) (string, error){
		func([]string) (string, error) { return "", errors.New("login required") },
	}}
	adapter := NewAdapter(cfg, nil, WithExecutor(exec))

	_, err := adapter.Fetch(context.Background(), "https://members.example.org/match/91", "match")
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("err = %v, want ErrFetch", err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("no download may run after failed introspection, calls = %d", len(exec.calls))
	}
}

func contains(args []string, flag string) bool {
	for _, arg := range args {
		if arg == flag {
			return true
		}
	}
	return false
}
