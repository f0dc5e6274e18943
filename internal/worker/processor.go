package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
)

// processBatch stores one batch under the per-batch timeout. The timeout
// context is detached from ctx so shutdown lets in-flight batches finish.
func (w *Worker) processBatch(ctx context.Context, batch *domain.BatchMessage) error {
	start := time.Now()
	w.logger.Info("Processing batch",
		slog.String("batch_id", batch.BatchID),
		slog.Int("entries", len(batch.Entries)),
	)

	batchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.batchTimeout)
	defer cancel()

	err := w.storage.InsertBatch(batchCtx, batch)
	batchDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		batchesTotal.WithLabelValues(resultImported).Inc()
		entriesImported.Add(float64(len(batch.Entries)))
		w.logger.Info("Batch imported",
			slog.String("batch_id", batch.BatchID),
			slog.Duration("duration", time.Since(start)),
		)
		return nil

	case errors.Is(err, domain.ErrBatchAlreadyImported):
		batchesTotal.WithLabelValues(resultDuplicate).Inc()
		w.logger.Warn("Batch already imported, skipping",
			slog.String("batch_id", batch.BatchID),
		)
		return nil

	case errors.Is(batchCtx.Err(), context.DeadlineExceeded):
		batchesTotal.WithLabelValues(resultRetried).Inc()
		return domain.NewRetryableError(err)

	default:
		if shouldRequeue(err) {
			batchesTotal.WithLabelValues(resultRetried).Inc()
		} else {
			batchesTotal.WithLabelValues(resultRejected).Inc()
		}
		return err
	}
}
