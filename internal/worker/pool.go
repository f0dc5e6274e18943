package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes batches until the dispatcher closes the channel
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started", slog.String("worker_name", workerName))

	for bd := range w.batches {
		err := w.processBatch(ctx, bd.Batch)
		w.acknowledge(workerName, bd, err)
	}

	w.logger.Debug("Worker goroutine stopping - batches closed", slog.String("worker_name", workerName))
}

func (w *Worker) acknowledge(workerName string, bd *domain.BatchDelivery, err error) {
	if err == nil {
		if ackErr := bd.Delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("batch_id", bd.Batch.BatchID),
				slog.String("error", ackErr.Error()),
			)
		}
		return
	}

	requeue := shouldRequeue(err)
	w.logger.Error("Batch processing failed",
		slog.String("worker_name", workerName),
		slog.String("batch_id", bd.Batch.BatchID),
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)

	if nackErr := bd.Delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.String("batch_id", bd.Batch.BatchID),
			slog.String("error", nackErr.Error()),
		)
	}
}

// shouldRequeue reports whether a failed batch should be redelivered
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrInvalidPayload) ||
		errors.Is(err, domain.ErrEmptyBatch) ||
		errors.Is(err, domain.ErrInvalidEntry) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
