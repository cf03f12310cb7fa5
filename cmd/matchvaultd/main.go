// Command matchvaultd is the acquisition daemon. It polls the job queue,
// downloads match broadcast videos, merges multi-part broadcasts, publishes
// the results to object storage, and records durable URLs on the match
// records.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"matchvault/internal/config"
	"matchvault/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: standard locations)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "matchvaultd.log")},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// A second daemon against the same queue database would double-process
	// jobs, so refuse to start while another instance holds the lock.
	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "matchvaultd.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire daemon lock", logging.Error(err))
		return
	}
	if !locked {
		logger.Error("another matchvaultd instance is already running",
			logging.String("lock", lock.Path()),
		)
		return
	}
	defer lock.Unlock() //nolint:errcheck

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("daemon exited with error", logging.Error(err))
		return
	}
	logger.Info("matchvaultd shut down")
}

// connectTimeout bounds gateway dial attempts during startup.
const connectTimeout = 30 * time.Second
