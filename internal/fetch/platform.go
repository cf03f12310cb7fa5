package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// strategy builds the quality cascade for one platform family. Strategies
// differ in how a tier is expressed (height caps, named presets, concrete
// stream identifiers) but all share the tier runner.
type strategy interface {
	name() string
	tiers(ctx context.Context, a *Adapter, logger *slog.Logger, sourceURL, dest string) ([]tier, error)
}

// strategyFor picks the download strategy for a source host. Preset hosts and
// cookie hosts are configured lists; everything else takes the generic
// height-capped path. Proxy routing suppresses cookie authentication, so a
// cookie host degrades to the generic strategy when the proxy is active.
func (a *Adapter) strategyFor(source *url.URL) strategy {
	host := source.Hostname()
	switch {
	case a.presetHost(host):
		return presetStrategy{}
	case a.cookieHost(host) && !a.proxied():
		return authenticatedStrategy{}
	default:
		return heightCapStrategy{}
	}
}

// baseArgs are shared by every download invocation regardless of strategy.
func (a *Adapter) baseArgs(dest string) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"--merge-output-format", "mp4",
		"-o", dest,
	}
	return append(args, a.transportArgs()...)
}

// transportArgs configure network behavior. Proxied mode routes through the
// configured proxy with widened retry budget and never sends cookies; direct
// mode uses the standard retry count.
func (a *Adapter) transportArgs() []string {
	if a.proxied() {
		retries := a.cfg.ProxyRetries
		if retries <= 0 {
			retries = 10
		}
		return []string{
			"--proxy", a.cfg.ProxyURL,
			"--retries", strconv.Itoa(retries),
			"--socket-timeout", "60",
			"--force-ipv4",
		}
	}
	retries := a.cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	return []string{"--retries", strconv.Itoa(retries)}
}

// cookieArgs produce the authenticated-session flags. Empty when the proxy is
// active or no cookie jar is configured.
func (a *Adapter) cookieArgs() []string {
	if a.proxied() || strings.TrimSpace(a.cfg.CookiesPath) == "" {
		return nil
	}
	args := []string{"--cookies", a.cfg.CookiesPath}
	if a.cfg.UserAgent != "" {
		args = append(args, "--user-agent", a.cfg.UserAgent)
	}
	if a.cfg.Referer != "" {
		args = append(args, "--referer", a.cfg.Referer)
	}
	return args
}
