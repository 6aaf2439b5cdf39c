package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/ashureev/ajiwai-labs/internal/shared"
)

const retentionWorkerInterval = 5 * time.Minute

// SweepCallback is called after every retention sweep.
type SweepCallback func()

// StartRetentionWorker runs a background goroutine that periodically prunes
// archived rows older than retention. A zero retention keeps the archive
// forever and only runs onSweep.
func StartRetentionWorker(ctx context.Context, repo Repository, retention time.Duration, onSweep SweepCallback) {
	startRetentionWorker(ctx, repo, retention, retentionWorkerInterval, onSweep)
}

func startRetentionWorker(ctx context.Context, repo Repository, retention, interval time.Duration, onSweep SweepCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Retention worker started", "interval", interval, "retention", retention)

		for {
			select {
			case <-ticker.C:
				if retention > 0 {
					pruneArchive(ctx, repo, retention)
				}
				if onSweep != nil {
					onSweep()
				}
			case <-ctx.Done():
				slog.Info("Retention worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func pruneArchive(ctx context.Context, repo Repository, retention time.Duration) {
	cutoff := time.Now().Add(-retention)

	var msgs, attempts int64
	err := shared.RetryOnConflict(ctx, "prune archive", 3, 100*time.Millisecond, func() error {
		var err error
		msgs, attempts, err = repo.PruneBefore(ctx, cutoff)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			slog.Debug("Retention worker: context canceled during prune", "error", err)
			return
		}
		slog.Error("Retention worker failed to prune archive", "error", err)
		return
	}

	if msgs > 0 || attempts > 0 {
		slog.Info("Retention worker pruned archive",
			"messages", msgs,
			"attempts", attempts,
			"cutoff", cutoff)
	}
}
