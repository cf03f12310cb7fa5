package fetch

import (
	"context"
	"fmt"
	"log/slog"
)

// heightCapStrategy is the generic yt-dlp path. Tiers cap the stream height
// via format selectors: preferred height, fallback height, then an uncapped
// best-available rung so some copy is always attempted.
type heightCapStrategy struct{}

func (heightCapStrategy) name() string { return "height-cap" }

func (heightCapStrategy) tiers(_ context.Context, a *Adapter, _ *slog.Logger, sourceURL, dest string) ([]tier, error) {
	heights := []int{a.cfg.PreferredHeight, a.cfg.FallbackHeight}

	var tiers []tier
	for _, height := range heights {
		if height <= 0 {
			continue
		}
		tiers = append(tiers, tier{
			label: fmt.Sprintf("%dp", height),
			args:  a.downloadArgs(heightSelector(height), dest, sourceURL),
		})
	}
	tiers = append(tiers, tier{
		label: "best",
		args:  a.downloadArgs("bestvideo+bestaudio/best", dest, sourceURL),
	})
	return tiers, nil
}

func heightSelector(height int) string {
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", height, height)
}

// downloadArgs assembles a full anonymous invocation: format selector,
// shared flags, then the URL. Authenticated downloads add session flags on
// top of this.
func (a *Adapter) downloadArgs(format, dest, sourceURL string) []string {
	args := []string{"-f", format}
	args = append(args, a.baseArgs(dest)...)
	return append(args, sourceURL)
}
