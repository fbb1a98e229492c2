// Package worker pushes the locally cached snapshot to the cloud document
// and runs the scheduled bookkeeping jobs.
package worker

import (
	"context"
	"fmt"
	"time"

	"chittrack/internal/amqp"
	"chittrack/internal/core"
	"chittrack/internal/log"
	"chittrack/internal/storage"
	"chittrack/internal/store"
)

// SyncWorker reads the current snapshot from the local cache and writes it to
// the remote store. It is the only component that pushes; the API server just
// marks the snapshot dirty.
type SyncWorker struct {
	cache       *storage.Cache
	remote      store.Store
	maxAttempts int
	baseDelay   time.Duration
	logger      *log.Logger
}

func NewSyncWorker(cache *storage.Cache, remote store.Store, maxAttempts int, baseDelay time.Duration, logger *log.Logger) *SyncWorker {
	return &SyncWorker{
		cache:       cache,
		remote:      remote,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.WithComponent(log.ComponentWorker),
	}
}

// HandleDirtyMessage processes one snapshot dirty notification. The message
// carries no payload; whatever is in the cache when the push runs is what
// goes up, so bursts of edits collapse into a single write.
func (w *SyncWorker) HandleDirtyMessage(ctx context.Context, msg *amqp.SnapshotDirtyMessage) error {
	w.logger.InfoContext(ctx, "processing snapshot dirty message",
		log.FieldGroupID, msg.GroupID)
	return w.PushSnapshot(ctx)
}

// PushSnapshot writes the cached snapshot to the remote store, retrying
// transient failures with exponential backoff. Permission failures are not
// retried; they need operator intervention, not patience.
func (w *SyncWorker) PushSnapshot(ctx context.Context) error {
	snap, err := w.cache.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load cached snapshot: %w", err)
	}
	if snap == nil {
		w.logger.InfoContext(ctx, "nothing to push, cache is empty")
		return nil
	}

	delay := w.baseDelay
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.remote.Save(ctx, *snap)
		if err == nil {
			if err := w.cache.MarkPushed(ctx, time.Now()); err != nil {
				w.logger.WarnContext(ctx, "failed to record push time", log.FieldError, err)
			}
			w.logger.InfoContext(ctx, "snapshot pushed",
				log.FieldGroupID, snap.Config.ID,
				log.FieldAttempt, attempt)
			return nil
		}

		switch store.Classify(err) {
		case store.FailurePermission:
			w.logger.ErrorContext(ctx, "push rejected, not retrying", log.FieldError, err)
			return fmt.Errorf("push snapshot: %w", err)
		case store.FailureCancelled:
			return err
		}

		lastErr = err
		w.logger.WarnContext(ctx, "push failed",
			log.FieldAttempt, attempt,
			log.FieldError, err)

		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("push snapshot after %d attempts: %w", w.maxAttempts, lastErr)
}

// SweepOverdue flips pending payments past their settlement date to overdue,
// persists the result, and pushes it to the cloud. Scheduled daily.
func (w *SyncWorker) SweepOverdue(ctx context.Context, now time.Time) error {
	snap, err := w.cache.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load cached snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	next, changed := core.SweepOverdue(*snap, now)
	if changed == 0 {
		w.logger.InfoContext(ctx, "overdue sweep found nothing to change")
		return nil
	}

	if err := w.cache.StoreSnapshot(ctx, next); err != nil {
		return fmt.Errorf("persist swept snapshot: %w", err)
	}
	w.logger.InfoContext(ctx, "overdue sweep applied",
		log.FieldOperation, log.OpSweep,
		"changed", changed)

	return w.PushSnapshot(ctx)
}
