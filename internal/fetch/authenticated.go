package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"matchvault/internal/logging"
	"matchvault/internal/services"
)

// authenticatedStrategy serves hosts that require a logged-in session and
// reject generic format selectors. Available streams are introspected first
// with a list-formats invocation, then each quality tier downloads a concrete
// video+audio stream-id pair, highest resolution first.
type authenticatedStrategy struct{}

func (authenticatedStrategy) name() string { return "authenticated" }

func (authenticatedStrategy) tiers(ctx context.Context, a *Adapter, logger *slog.Logger, sourceURL, dest string) ([]tier, error) {
	listCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout())
	defer cancel()

	listArgs := append([]string{"--list-formats", "--no-playlist", "--no-warnings"}, a.cookieArgs()...)
	listArgs = append(listArgs, sourceURL)
	output, err := a.exec.Run(listCtx, a.cfg.Binary, listArgs)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "list-formats", "format introspection failed", err)
	}

	pairs, err := parseFormatPairs(output)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "resolved stream pairs", logging.Int("tiers", len(pairs)))

	tiers := make([]tier, 0, len(pairs))
	for _, pair := range pairs {
		selector := pair.videoID + "+" + pair.audioID
		args := []string{"-f", selector}
		args = append(args, a.baseArgs(dest)...)
		args = append(args, a.cookieArgs()...)
		args = append(args, sourceURL)
		tiers = append(tiers, tier{
			label: fmt.Sprintf("%dp (%s)", pair.height, selector),
			args:  args,
		})
	}
	return tiers, nil
}

// formatPair is one downloadable quality tier: a video stream and the audio
// stream to remux alongside it.
type formatPair struct {
	height  int
	videoID string
	audioID string
}

var resolutionPattern = regexp.MustCompile(`\b(\d{2,5})x(\d{2,5})\b`)

// parseFormatPairs extracts (video, audio) stream-id pairs from a
// list-formats table. Video rows are recognized by a WxH resolution column,
// audio rows by the "audio only" marker. When several video rows share a
// height the later row wins, matching the tool's own best-last ordering.
// Pairs come back sorted by height descending.
func parseFormatPairs(output string) ([]formatPair, error) {
	videoByHeight := make(map[int]string)
	audioID := ""

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "ID") || strings.HasPrefix(line, "---") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		id := fields[0]

		if strings.Contains(line, "audio only") {
			audioID = id
			continue
		}
		match := resolutionPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		height, err := strconv.Atoi(match[2])
		if err != nil || height <= 0 {
			continue
		}
		videoByHeight[height] = id
	}

	if len(videoByHeight) == 0 || audioID == "" {
		return nil, services.Wrap(services.ErrFetch, "fetch", "list-formats", "no usable video+audio stream pairs found", nil)
	}

	heights := make([]int, 0, len(videoByHeight))
	for height := range videoByHeight {
		heights = append(heights, height)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))

	pairs := make([]formatPair, 0, len(heights))
	for _, height := range heights {
		pairs = append(pairs, formatPair{
			height:  height,
			videoID: videoByHeight[height],
			audioID: audioID,
		})
	}
	return pairs, nil
}
