// Package fetch downloads match broadcast videos from streaming platforms
// with yt-dlp. Platform-specific download strategies are selected by source
// host, and every strategy degrades through a quality cascade so that a
// lower-resolution copy is still acquired when the preferred tier is
// unavailable.
package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"matchvault/internal/config"
	"matchvault/internal/logging"
	"matchvault/internal/services"
)

// Extractor acquires a remote video into local staging. Implementations
// return the path of the downloaded file.
type Extractor interface {
	Fetch(ctx context.Context, sourceURL, baseName string) (string, error)
}

// Adapter is the yt-dlp backed Extractor. One subprocess is launched per
// quality tier; the first tier that produces a non-empty file wins.
type Adapter struct {
	cfg        config.Fetch
	stagingDir string
	exec       Executor
	logger     *slog.Logger
}

// Option customizes Adapter construction.
type Option func(*Adapter)

// WithExecutor overrides the subprocess runner, primarily for tests.
func WithExecutor(exec Executor) Option {
	return func(a *Adapter) {
		if exec != nil {
			a.exec = exec
		}
	}
}

// NewAdapter builds an Extractor from configuration.
func NewAdapter(cfg *config.Config, logger *slog.Logger, opts ...Option) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	adapter := &Adapter{
		cfg:        cfg.Fetch,
		stagingDir: cfg.Paths.StagingDir,
		exec:       commandExecutor{},
		logger:     logger.With(logging.String(logging.FieldComponent, "fetch")),
	}
	for _, opt := range opts {
		opt(adapter)
	}
	return adapter
}

var _ Extractor = (*Adapter)(nil)

// Fetch downloads sourceURL into the staging directory as baseName.mp4 and
// returns the resulting path. The error carries services.ErrFetch when every
// quality tier failed.
func (a *Adapter) Fetch(ctx context.Context, sourceURL, baseName string) (string, error) {
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Host == "" {
		return "", services.Wrap(services.ErrFetch, "fetch", "parse", "source URL is not absolute: "+sourceURL, err)
	}

	dest := filepath.Join(a.stagingDir, baseName+".mp4")
	strat := a.strategyFor(parsed)
	logger := a.logger.With(
		logging.String("strategy", strat.name()),
		logging.String("host", parsed.Hostname()),
	)
	logger.InfoContext(ctx, "starting download", logging.String("destination", dest))

	tiers, err := strat.tiers(ctx, a, logger, sourceURL, dest)
	if err != nil {
		return "", err
	}
	return a.runCascade(ctx, logger, dest, tiers)
}

// attemptTimeout returns the per-tier subprocess deadline. Proxied downloads
// run slower, so the widened proxy timeout applies when routing through one.
func (a *Adapter) attemptTimeout() time.Duration {
	seconds := a.cfg.AttemptTimeout
	if a.proxied() && a.cfg.ProxyTimeout > 0 {
		seconds = a.cfg.ProxyTimeout
	}
	if seconds <= 0 {
		seconds = 1800
	}
	return time.Duration(seconds) * time.Second
}

func (a *Adapter) proxied() bool {
	return a.cfg.ProxyEnabled && strings.TrimSpace(a.cfg.ProxyURL) != ""
}

func (a *Adapter) cookieHost(host string) bool {
	return hostMatches(host, a.cfg.CookieHosts)
}

func (a *Adapter) presetHost(host string) bool {
	return hostMatches(host, a.cfg.PresetHosts)
}

func hostMatches(host string, patterns []string) bool {
	host = strings.ToLower(host)
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if host == pattern || strings.HasSuffix(host, "."+pattern) {
			return true
		}
	}
	return false
}
