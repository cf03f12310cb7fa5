package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"matchvault/internal/fileutil"
	"matchvault/internal/logging"
	"matchvault/internal/services"
)

// tier is one rung of the quality cascade: a label for logging and the full
// argument list of the subprocess that attempts it.
type tier struct {
	label string
	args  []string
}

// runCascade attempts each tier in order with its own subprocess and
// deadline. A tier succeeds when dest exists with non-zero size afterwards.
// Partial artifacts are removed between attempts so a later tier never
// resumes a truncated file from an earlier one.
func (a *Adapter) runCascade(ctx context.Context, logger *slog.Logger, dest string, tiers []tier) (string, error) {
	if len(tiers) == 0 {
		return "", services.Wrap(services.ErrFetch, "fetch", "cascade", "no quality tiers to attempt", nil)
	}

	var lastErr error
	for _, attempt := range tiers {
		if err := ctx.Err(); err != nil {
			return "", services.Wrap(services.ErrFetch, "fetch", "cascade", "download canceled", err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, a.attemptTimeout())
		_, err := a.exec.Run(attemptCtx, a.cfg.Binary, attempt.args)
		cancel()

		if err == nil && fileutil.NonEmpty(dest) {
			logger.InfoContext(ctx, "download complete",
				logging.String("tier", attempt.label),
				logging.String("path", dest),
			)
			return dest, nil
		}

		if err == nil {
			err = fmt.Errorf("no output produced at %s", dest)
		}
		lastErr = err
		logger.WarnContext(ctx, "quality tier failed, trying next",
			logging.String("tier", attempt.label),
			logging.Error(err),
		)
		if removeErr := fileutil.RemovePartials(dest); removeErr != nil {
			logger.WarnContext(ctx, "failed to clean partial download",
				logging.String("path", dest),
				logging.Error(removeErr),
			)
		}
	}

	return "", services.Wrap(services.ErrFetch, "fetch", "cascade", "all quality tiers exhausted", lastErr)
}
