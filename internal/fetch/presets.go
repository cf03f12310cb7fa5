package fetch

import (
	"context"
	"log/slog"
)

// presetStrategy covers hosts whose streams are published under named
// quality presets rather than height-capped selectors. Tiers walk the
// configured preset list from best to worst. Byte-range continuation is
// disabled because these hosts serve corrupt bytes on resumed transfers.
type presetStrategy struct{}

func (presetStrategy) name() string { return "named-preset" }

func (presetStrategy) tiers(_ context.Context, a *Adapter, _ *slog.Logger, sourceURL, dest string) ([]tier, error) {
	var tiers []tier
	for _, preset := range a.cfg.QualityPresets {
		args := []string{"-f", preset, "--no-continue"}
		args = append(args, a.baseArgs(dest)...)
		args = append(args, sourceURL)
		tiers = append(tiers, tier{label: preset, args: args})
	}
	tiers = append(tiers, tier{
		label: "best",
		args:  append([]string{"--no-continue"}, append(a.baseArgs(dest), sourceURL)...),
	})
	return tiers, nil
}
