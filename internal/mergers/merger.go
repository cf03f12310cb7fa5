// Package mergers joins downloaded match halves into a single video file
// with ffmpeg. Stream-copy concatenation is attempted first because it is
// fast and lossless; sources with mismatched parameters fall back to a full
// re-encode through the concat filter.
package mergers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"matchvault/internal/config"
	"matchvault/internal/fileutil"
	"matchvault/internal/logging"
	"matchvault/internal/services"
)

// Merger concatenates local video files into dest and returns the resulting
// path.
type Merger interface {
	Merge(ctx context.Context, inputs []string, dest string) (string, error)
}

// Runner executes ffmpeg. Tests substitute a scripted one.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

type commandRunner struct{}

func (commandRunner) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	return output.String(), err
}

// FFmpeg is the command line backed Merger.
type FFmpeg struct {
	cfg    config.Merge
	runner Runner
	logger *slog.Logger
}

// Option customizes FFmpeg construction.
type Option func(*FFmpeg)

// WithRunner overrides the subprocess runner, primarily for tests.
func WithRunner(runner Runner) Option {
	return func(f *FFmpeg) {
		if runner != nil {
			f.runner = runner
		}
	}
}

// NewFFmpeg builds a Merger from configuration.
func NewFFmpeg(cfg *config.Config, logger *slog.Logger, opts ...Option) *FFmpeg {
	merger := &FFmpeg{
		cfg:    cfg.Merge,
		runner: commandRunner{},
		logger: logging.NewComponentLogger(logger, "merge"),
	}
	for _, opt := range opts {
		opt(merger)
	}
	return merger
}

var _ Merger = (*FFmpeg)(nil)

// Merge concatenates inputs into dest. Every input must exist with non-zero
// size before any subprocess is launched. The error carries
// services.ErrMerge when both the copy and re-encode paths fail.
func (f *FFmpeg) Merge(ctx context.Context, inputs []string, dest string) (string, error) {
	if len(inputs) < 2 {
		return "", services.Wrap(services.ErrMerge, "merge", "validate", fmt.Sprintf("need at least 2 inputs, got %d", len(inputs)), nil)
	}
	for _, input := range inputs {
		if !fileutil.NonEmpty(input) {
			return "", services.Wrap(services.ErrMerge, "merge", "validate", "input missing or empty: "+input, nil)
		}
	}

	copyErr := f.concatCopy(ctx, inputs, dest)
	if copyErr == nil && fileutil.NonEmpty(dest) {
		f.logger.InfoContext(ctx, "merged via stream copy", logging.String("path", dest))
		return dest, nil
	}
	if copyErr == nil {
		copyErr = errors.New("stream copy produced no output")
	}
	f.logger.WarnContext(ctx, "stream copy failed, re-encoding",
		logging.Error(copyErr),
	)
	if err := fileutil.RemoveIfExists(dest); err != nil {
		f.logger.WarnContext(ctx, "failed to remove stale merge output", logging.Error(err))
	}

	if err := f.concatEncode(ctx, inputs, dest); err != nil {
		return "", services.Wrap(services.ErrMerge, "merge", "encode", "concatenation failed on both paths", errors.Join(copyErr, err))
	}
	if !fileutil.NonEmpty(dest) {
		return "", services.Wrap(services.ErrMerge, "merge", "encode", "re-encode produced no output", copyErr)
	}
	f.logger.InfoContext(ctx, "merged via re-encode", logging.String("path", dest))
	return dest, nil
}

// concatCopy runs the concat demuxer with stream copy. Inputs are listed in
// a temporary manifest which is removed on every path.
func (f *FFmpeg) concatCopy(ctx context.Context, inputs []string, dest string) error {
	manifest, err := writeManifest(inputs, dest)
	if err != nil {
		return err
	}
	defer os.Remove(manifest)

	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "concat", "-safe", "0",
		"-i", manifest,
		"-c", "copy",
		dest,
	}
	return f.run(ctx, args)
}

// concatEncode joins inputs through the concat filter, normalizing codec
// parameters with a full re-encode.
func (f *FFmpeg) concatEncode(ctx context.Context, inputs []string, dest string) error {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}
	for _, input := range inputs {
		args = append(args, "-i", input)
	}

	var chain strings.Builder
	for i := range inputs {
		fmt.Fprintf(&chain, "[%d:v][%d:a]", i, i)
	}
	fmt.Fprintf(&chain, "concat=n=%d:v=1:a=1[v][a]", len(inputs))

	args = append(args,
		"-filter_complex", chain.String(),
		"-map", "[v]", "-map", "[a]",
		"-c:v", f.cfg.VideoCodec,
		"-preset", f.cfg.Preset,
		"-c:a", f.cfg.AudioCodec,
	)
	if f.cfg.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(f.cfg.Threads))
	}
	args = append(args, dest)
	return f.run(ctx, args)
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	timeout := time.Duration(f.cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := f.runner.Run(runCtx, f.cfg.FFmpegBinary, args)
	if err != nil {
		if ctxErr := runCtx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "merge", "run", "ffmpeg timed out", ctxErr)
		}
		detail := strings.TrimSpace(output)
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "merge", "run", "ffmpeg failed: "+detail, err)
	}
	return nil
}

// writeManifest produces a concat demuxer listing next to dest. Single
// quotes in paths are escaped per the demuxer's quoting rules.
func writeManifest(inputs []string, dest string) (string, error) {
	var listing strings.Builder
	for _, input := range inputs {
		fmt.Fprintf(&listing, "file '%s'\n", strings.ReplaceAll(input, "'", `'\''`))
	}

	manifest, err := os.CreateTemp(filepath.Dir(dest), ".concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat manifest: %w", err)
	}
	if _, err := manifest.WriteString(listing.String()); err != nil {
		manifest.Close()
		os.Remove(manifest.Name())
		return "", fmt.Errorf("write concat manifest: %w", err)
	}
	if err := manifest.Close(); err != nil {
		os.Remove(manifest.Name())
		return "", fmt.Errorf("close concat manifest: %w", err)
	}
	return manifest.Name(), nil
}
