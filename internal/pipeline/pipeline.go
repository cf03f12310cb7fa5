// Package pipeline ties the extraction adapter, the merge step, and the
// storage gateways into the two job flows: single-match acquisition and
// two-video merges. It owns filename derivation, publish short-circuiting,
// and the document-store write-back.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"matchvault/internal/blobstore"
	"matchvault/internal/config"
	"matchvault/internal/fetch"
	"matchvault/internal/fileutil"
	"matchvault/internal/logging"
	"matchvault/internal/matchstore"
	"matchvault/internal/mergers"
	"matchvault/internal/services"
)

// Pipeline is the orchestrator for both job flows.
type Pipeline struct {
	matches    matchstore.Store
	blobs      blobstore.Gateway
	fetcher    fetch.Extractor
	merger     mergers.Merger
	stagingDir string
	logger     *slog.Logger
}

// New assembles the orchestrator from its collaborators.
func New(cfg *config.Config, matches matchstore.Store, blobs blobstore.Gateway, fetcher fetch.Extractor, merger mergers.Merger, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		matches:    matches,
		blobs:      blobs,
		fetcher:    fetcher,
		merger:     merger,
		stagingDir: cfg.Paths.StagingDir,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
	}
}

// AcquireMatchVideo resolves a match record and downloads its source video.
// The returned error carries services.ErrNotFound when the record is absent
// or carries no source locator; no subprocess runs in either case.
func (p *Pipeline) AcquireMatchVideo(ctx context.Context, matchID string) (string, error) {
	match, err := p.matches.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}
	if match == nil {
		return "", services.Wrap(services.ErrNotFound, "pipeline", "acquire", "match not found: "+matchID, nil)
	}
	if !match.HasSourceVideo() {
		return "", services.Wrap(services.ErrNotFound, "pipeline", "acquire", "match has no source video: "+matchID, nil)
	}

	base := DeriveBaseName(match.HomeTeamString, match.AwayTeamString, match.Date)
	return p.fetcher.Fetch(ctx, match.MatchVideo, base)
}

// ProcessUpload runs the full upload flow for one match: acquire, publish,
// write the durable URL back, then remove the local copy. Failures after a
// successful publish are reported with the publish marker so the caller can
// apply the same message disposition.
func (p *Pipeline) ProcessUpload(ctx context.Context, matchID string) error {
	logger := logging.WithContext(ctx, p.logger)

	local, err := p.AcquireMatchVideo(ctx, matchID)
	if err != nil {
		return err
	}

	durableURL, err := p.PublishVideo(ctx, local, filepath.Base(local))
	if err != nil {
		return err
	}

	if err := p.matches.UpdateMatchVideo(ctx, matchID, durableURL); err != nil {
		return services.Wrap(services.ErrPublish, "pipeline", "write-back", "record durable URL for match "+matchID, err)
	}
	logger.InfoContext(ctx, "match video published",
		logging.String("url", durableURL),
	)

	if failed := fileutil.RemoveAllQuiet(local); len(failed) > 0 {
		logger.WarnContext(ctx, "failed to remove local copy", logging.String("path", failed[0]))
	}
	return nil
}

// ProcessMerge acquires both referenced videos, concatenates them, and
// publishes the result. All three local artifacts are removed only after a
// successful publish.
func (p *Pipeline) ProcessMerge(ctx context.Context, video1, video2, outputName string) error {
	logger := logging.WithContext(ctx, p.logger)
	base := mergeBaseName(outputName)

	first, err := p.fetcher.Fetch(ctx, video1, base+"-1")
	if err != nil {
		return err
	}
	second, err := p.fetcher.Fetch(ctx, video2, base+"-2")
	if err != nil {
		return err
	}

	dest := filepath.Join(p.stagingDir, base+".mp4")
	merged, err := p.merger.Merge(ctx, []string{first, second}, dest)
	if err != nil {
		return err
	}

	durableURL, err := p.PublishVideo(ctx, merged, filepath.Base(merged))
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "merged video published",
		logging.String("url", durableURL),
	)

	if failed := fileutil.RemoveAllQuiet(first, second, merged); len(failed) > 0 {
		logger.WarnContext(ctx, "failed to remove merge artifacts", logging.Any("paths", failed))
	}
	return nil
}

// PublishVideo uploads a local file under key and returns its durable URL.
// An object already present under the key short-circuits the upload; the
// existing copy is authoritative because keys are deterministic.
func (p *Pipeline) PublishVideo(ctx context.Context, localPath, key string) (string, error) {
	if exists, err := p.blobs.Exists(ctx, key); err == nil && exists {
		logging.WithContext(ctx, p.logger).InfoContext(ctx, "object already published",
			logging.String("key", key),
		)
		return p.blobs.URLFor(key), nil
	}

	durableURL, err := p.blobs.Upload(ctx, localPath, key)
	if err != nil {
		return "", services.Wrap(services.ErrPublish, "pipeline", "publish", "upload "+key, err)
	}
	return durableURL, nil
}

// mergeBaseName derives the staging base from the job's output name,
// tolerating names with or without an extension.
func mergeBaseName(outputName string) string {
	base := strings.TrimSuffix(filepath.Base(outputName), filepath.Ext(outputName))
	base = strings.TrimSpace(base)
	if base == "" || base == "." {
		return "merged"
	}
	return base
}
