// Package testsupport provides per-test configuration and file fixtures.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"matchvault/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Blob.Bucket = "test-bucket"
	cfg.Blob.Endpoint = "127.0.0.1:9000"
	cfg.Blob.UseSSL = false
	// Fast queue timing so tests never sit in a real long-poll window.
	cfg.Queue.ReceiveWait = 1
	cfg.Queue.VisibilityTimeout = 30
	cfg.Workflow.PollSleepSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return &cfg
}

// WithVisibilityTimeout overrides the queue visibility timeout in seconds.
func WithVisibilityTimeout(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.VisibilityTimeout = seconds
	}
}

// WithCookies points the fetch adapter at a cookie jar for the given hosts.
func WithCookies(path string, hosts ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fetch.CookiesPath = path
		cfg.Fetch.CookieHosts = hosts
	}
}

// WithProxy enables anonymizing-proxy mode on the fetch adapter.
func WithProxy(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Fetch.ProxyEnabled = true
		cfg.Fetch.ProxyURL = url
	}
}
