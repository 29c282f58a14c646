// Package worker runs the background schedulers the synchronous core
// deliberately leaves out: re-driving retryable journal entries and
// periodically reconciling title unlocks for every user.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/orchestrator"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 20

	reconcileEvery      = 20
	maxConcurrentChecks = 4
)

// Store is the persistence surface the worker polls.
type Store interface {
	PendingRetries(ctx context.Context, limit int) ([]*models.JournalEntry, error)
	UserIDs(ctx context.Context) ([]string, error)
}

// Pipeline is the part of the orchestrator the worker drives.
type Pipeline interface {
	ProcessEntry(ctx context.Context, entry *models.JournalEntry) (*orchestrator.Result, error)
	CheckUserUnlocks(ctx context.Context, userID string) ([]*models.UserTitle, error)
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
}

// Worker polls for entries parked in pending with a nonzero retry
// count and feeds them back through the pipeline. Every reconcileEvery
// ticks it also sweeps all users' title unlocks, catching conditions
// that became true outside any entry (corrosion, time-based).
type Worker struct {
	store    Store
	pipeline Pipeline
	config   Config
}

func New(store Store, pipeline Pipeline, config Config) *Worker {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaultBatchSize
	}
	return &Worker{store: store, pipeline: pipeline, config: config}
}

// Run blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	slog.Info("Retry worker started",
		slog.String("type", "sys"),
		slog.Duration("poll_interval", w.config.PollInterval),
		slog.Int("batch_size", w.config.BatchSize))

	tick := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Retry worker stopped", slog.String("type", "sys"))
			return
		case <-ticker.C:
			w.retryPending(ctx)
			tick++
			if tick%reconcileEvery == 0 {
				w.reconcileTitles(ctx)
			}
		}
	}
}

// retryPending re-runs one batch of retryable entries. Entries stay
// sequential: retries are rare and the pipeline's event ordering is
// easier to reason about single-file.
func (w *Worker) retryPending(ctx context.Context) {
	entries, err := w.store.PendingRetries(ctx, w.config.BatchSize)
	if err != nil {
		slog.Error("Failed to load retryable entries",
			slog.String("type", "sys"),
			slog.Any("error", err))
		return
	}
	if len(entries) == 0 {
		return
	}

	slog.Info("Retrying entries",
		slog.String("type", "sys"),
		slog.Int("count", len(entries)))

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		result, err := w.pipeline.ProcessEntry(ctx, entry)
		if err != nil {
			slog.Error("Retry run failed to persist",
				slog.String("type", "sys"),
				slog.String("entry_id", entry.ID),
				slog.Any("error", err))
			continue
		}
		if result.Status != models.ProcessingCompleted {
			slog.Warn("Retry did not complete entry",
				slog.String("type", "sys"),
				slog.String("entry_id", entry.ID),
				slog.String("status", result.Status),
				slog.Int("retry_count", entry.RetryCount))
		}
	}
}

// reconcileTitles fans unlock checks out across users with a bounded
// group. One user's failure does not stop the sweep.
func (w *Worker) reconcileTitles(ctx context.Context) {
	userIDs, err := w.store.UserIDs(ctx)
	if err != nil {
		slog.Error("Failed to list users for title sweep",
			slog.String("type", "sys"),
			slog.Any("error", err))
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for _, userID := range userIDs {
		g.Go(func() error {
			awarded, err := w.pipeline.CheckUserUnlocks(ctx, userID)
			if err != nil {
				slog.Warn("Title sweep failed for user",
					slog.String("type", "sys"),
					slog.String("user_id", userID),
					slog.Any("error", err))
				return nil
			}
			if len(awarded) > 0 {
				slog.Info("Title sweep awarded titles",
					slog.String("type", "sys"),
					slog.String("user_id", userID),
					slog.Int("count", len(awarded)))
			}
			return nil
		})
	}
	_ = g.Wait()
}
