package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/job-tracker/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is the subset of the RabbitMQ client the worker consumes from
type Broker interface {
	SetQoS(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// BatchStore persists bulk-imported batches
type BatchStore interface {
	InsertBatch(ctx context.Context, batch *domain.BatchMessage) error
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Broker        Broker
	Storage       BatchStore
	WorkerID      string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	BatchTimeout  time.Duration
}

// Worker consumes bulk import batches and stores them
type Worker struct {
	logger        *slog.Logger
	broker        Broker
	storage       BatchStore
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	batchTimeout  time.Duration
	batches       chan *domain.BatchDelivery
	wg            sync.WaitGroup
	stopChan      chan struct{}
	stopOnce      sync.Once
	mu            sync.Mutex
	running       bool
	done          chan struct{}
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	prefetch := cfg.PrefetchCount
	if prefetch <= 0 {
		prefetch = concurrency
	}

	timeout := cfg.BatchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Worker{
		logger:        cfg.Logger,
		broker:        cfg.Broker,
		storage:       cfg.Storage,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		concurrency:   concurrency,
		prefetchCount: prefetch,
		batchTimeout:  timeout,
		batches:       make(chan *domain.BatchDelivery, concurrency),
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start consumes batches until ctx is canceled or Stop is called.
// It returns once every in-flight batch has been acknowledged.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("batch_timeout", w.batchTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()
	defer close(w.done)

	dispatchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-dispatchCtx.Done():
		}
	}()

	w.spawnWorkerPool(dispatchCtx)
	w.startMessageDispatcher(dispatchCtx, deliveries)

	w.wg.Wait()
	w.logger.Info("Worker drained", slog.String("worker_id", w.workerID))

	return nil
}

// Stop signals the dispatcher to stop and waits for the pool to drain
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.done
	}

	w.logger.Info("Worker stopped")
}
