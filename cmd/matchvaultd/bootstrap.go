package main

import (
	"context"
	"fmt"
	"log/slog"

	"matchvault/internal/blobstore"
	"matchvault/internal/config"
	"matchvault/internal/deps"
	"matchvault/internal/fetch"
	"matchvault/internal/jobqueue"
	"matchvault/internal/logging"
	"matchvault/internal/matchstore"
	"matchvault/internal/mergers"
	"matchvault/internal/pipeline"
	"matchvault/internal/worker"
)

// run wires every gateway into the worker loop and blocks until ctx is
// canceled.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if missing := deps.FirstMissing(deps.CheckBinaries(deps.Required(cfg))); missing != nil {
		return fmt.Errorf("required tool %s unavailable: %s", missing.Name, missing.Detail)
	}

	store, err := jobqueue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open job queue: %w", err)
	}
	defer store.Close()

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	matches, err := matchstore.Connect(dialCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("connect match store: %w", err)
	}
	defer func() {
		if err := matches.Close(context.Background()); err != nil {
			logger.Warn("close match store", logging.Error(err))
		}
	}()

	blobs, err := blobstore.New(cfg)
	if err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	fetcher := fetch.NewAdapter(cfg, logger)
	merger := mergers.NewFFmpeg(cfg, logger)
	orchestrator := pipeline.New(cfg, matches, blobs, fetcher, merger, logger)

	logger.Info("matchvaultd starting",
		logging.String("queue_db", store.Path()),
		logging.String("staging_dir", cfg.Paths.StagingDir),
		logging.String("bucket", cfg.Blob.Bucket),
	)
	return worker.New(cfg, store, orchestrator, logger).Run(ctx)
}
