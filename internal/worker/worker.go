// Package worker runs the poll, decode, dispatch loop over the job queue.
// It owns message disposition: which outcomes acknowledge the message, which
// leave it for redelivery, and which park it for operator replay.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"matchvault/internal/config"
	"matchvault/internal/jobqueue"
	"matchvault/internal/logging"
	"matchvault/internal/services"
)

// Dispatcher is the orchestrator surface the loop drives.
type Dispatcher interface {
	ProcessUpload(ctx context.Context, matchID string) error
	ProcessMerge(ctx context.Context, video1, video2, outputName string) error
}

// Queue extends the gateway with the dead-letter operation used when the
// redrive option is enabled.
type Queue interface {
	jobqueue.Gateway
	DeadLetter(ctx context.Context, receiptToken, reason string) error
}

// Worker drives the job loop until its context is canceled.
type Worker struct {
	queue      Queue
	dispatcher Dispatcher
	pollSleep  time.Duration
	errorRetry time.Duration
	redrive    bool
	logger     *slog.Logger
}

// New builds a worker from configuration and collaborators.
func New(cfg *config.Config, queue Queue, dispatcher Dispatcher, logger *slog.Logger) *Worker {
	errorRetry := time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second
	if errorRetry <= 0 {
		errorRetry = 10 * time.Second
	}
	return &Worker{
		queue:      queue,
		dispatcher: dispatcher,
		pollSleep:  cfg.PollSleep(),
		errorRetry: errorRetry,
		redrive:    cfg.Queue.Redrive,
		logger:     logging.NewComponentLogger(logger, "worker"),
	}
}

// Run polls until ctx is canceled. Every cycle sleeps the fixed poll
// interval afterwards whether or not a message arrived; the interval is a
// deliberate batching cadence, not an error backoff.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "worker started",
		logging.Duration("poll_sleep", w.pollSleep),
		logging.Bool("redrive", w.redrive),
	)
	for {
		if err := ctx.Err(); err != nil {
			w.logger.InfoContext(ctx, "worker stopping")
			return nil
		}

		msg, err := w.queue.Receive(ctx)
		switch {
		case errors.Is(err, context.Canceled):
			w.logger.InfoContext(ctx, "worker stopping")
			return nil
		case err != nil:
			w.logger.ErrorContext(ctx, "queue receive failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check queue database health"),
			)
			if !sleepCtx(ctx, w.errorRetry) {
				return nil
			}
			continue
		case msg != nil:
			w.handle(ctx, msg)
		}

		if !sleepCtx(ctx, w.pollSleep) {
			w.logger.InfoContext(ctx, "worker stopping")
			return nil
		}
	}
}

// RunOnce performs a single poll cycle without the inter-poll sleep.
// Used by tests and the one-shot CLI mode.
func (w *Worker) RunOnce(ctx context.Context) error {
	msg, err := w.queue.Receive(ctx)
	if err != nil {
		return err
	}
	if msg != nil {
		w.handle(ctx, msg)
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, msg *jobqueue.Message) {
	ctx = services.WithJobID(ctx, msg.ID)
	logger := logging.WithContext(ctx, w.logger)

	job, err := DecodeJob(msg.Body)
	if err != nil {
		// No acknowledgment: the message resurfaces after its visibility
		// window for a future, possibly fixed, consumer.
		logger.ErrorContext(ctx, "job payload undecodable, leaving message",
			logging.Error(err),
		)
		return
	}
	ctx = services.WithCommand(ctx, job.Command)
	logger = logging.WithContext(ctx, w.logger)

	switch job.Command {
	case CommandMatchUpload, CommandMergeVideo:
	default:
		// Unknown commands are never deleted; they stay for inspection
		// until the queue expires them.
		logger.WarnContext(ctx, "unknown job command, leaving message")
		return
	}

	if err := job.Validate(); err != nil {
		logger.ErrorContext(ctx, "job payload invalid",
			logging.Error(err),
		)
		w.acknowledge(ctx, logger, msg, err)
		return
	}

	logger.InfoContext(ctx, "dispatching job")
	w.acknowledge(ctx, logger, msg, w.dispatch(ctx, job))
}

func (w *Worker) dispatch(ctx context.Context, job Job) error {
	switch job.Command {
	case CommandMatchUpload:
		return w.dispatcher.ProcessUpload(services.WithMatchID(ctx, job.MatchID), job.MatchID)
	case CommandMergeVideo:
		return w.dispatcher.ProcessMerge(ctx, job.Video1, job.Video2, job.OutputName)
	default:
		return services.Wrap(services.ErrDecode, "worker", "dispatch", "unknown command "+job.Command, nil)
	}
}

// acknowledge applies the message disposition for a completed dispatch.
// Success and nothing-to-do outcomes delete the message. Other failures are
// also deleted to avoid infinite reprocessing, unless the redrive option is
// enabled, in which case they are parked on the dead-letter table for
// operator replay.
func (w *Worker) acknowledge(ctx context.Context, logger *slog.Logger, msg *jobqueue.Message, dispatchErr error) {
	switch {
	case dispatchErr == nil:
		logger.InfoContext(ctx, "job completed")
	case errors.Is(dispatchErr, services.ErrNotFound):
		logger.WarnContext(ctx, "nothing to do for job",
			logging.Error(dispatchErr),
		)
	case w.redrive:
		logger.ErrorContext(ctx, "job failed, parking on dead-letter queue",
			logging.Error(dispatchErr),
		)
		if err := w.queue.DeadLetter(ctx, msg.ReceiptToken, dispatchErr.Error()); err != nil {
			logger.ErrorContext(ctx, "dead-letter failed, message will redeliver",
				logging.Error(err),
			)
		}
		return
	default:
		logger.WarnContext(ctx, "job failed, dropping message",
			logging.String(logging.FieldEventType, "job_dropped"),
			logging.Error(dispatchErr),
			logging.String(logging.FieldErrorHint, "enable queue redrive to park failed jobs instead"),
		)
	}

	if err := w.queue.Delete(ctx, msg.ReceiptToken); err != nil {
		logger.ErrorContext(ctx, "message delete failed, message will redeliver",
			logging.Error(err),
		)
	}
}

// sleepCtx waits for the duration or the context, reporting false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
