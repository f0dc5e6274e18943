package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cuongbtq/job-tracker/internal/bootstrap"
	"github.com/cuongbtq/job-tracker/internal/config"
	"github.com/cuongbtq/job-tracker/internal/worker"
	"github.com/cuongbtq/job-tracker/internal/worker/storage"
	"github.com/cuongbtq/job-tracker/migrations"
	"github.com/cuongbtq/job-tracker/shared/logger"
)

var service = bootstrap.Service{
	Name:          "worker-service",
	ConfigEnv:     "WORKER_SERVICE_CONFIG_PATH",
	DefaultConfig: "configs/worker-service/config.yaml",
	Validate:      (*config.Config).ValidateWorkerConfig,
}

var errStoppedConsuming = errors.New("worker stopped consuming")

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := service.LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	appLogger, err := logger.New(bootstrap.LoggerConfig(&cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	backends, err := bootstrap.Connect(cfg, migrations.Files, appLogger.Logger)
	if err != nil {
		return err
	}
	defer backends.Close(appLogger.Logger)

	workerID := cfg.Worker.ID
	if workerID == "" {
		workerID = "worker-" + uuid.NewString()[:8]
	}

	importer := worker.NewWorker(&worker.Config{
		Logger:        appLogger.With(slog.String("component", "importer")).Logger,
		Broker:        backends.Broker,
		Storage:       storage.NewStorage(backends.DB.GetDB(), appLogger.Logger),
		WorkerID:      workerID,
		QueueName:     cfg.RabbitMQ.Queue.Name,
		Concurrency:   cfg.Worker.Concurrency,
		PrefetchCount: cfg.RabbitMQ.Consumer.PrefetchCount,
		BatchTimeout:  cfg.Worker.BatchTimeout,
	})

	metricsSrv := startMetricsServer(cfg.Worker.MetricsPort, appLogger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerErr := make(chan error, 1)
	go func() {
		err := importer.Start(ctx)
		if err == nil && ctx.Err() == nil {
			err = errStoppedConsuming
		}
		workerErr <- err
	}()

	select {
	case err := <-workerErr:
		if err != nil {
			appLogger.Error("Worker error", slog.Any("error", err))
			return err
		}
	case <-ctx.Done():
		appLogger.Info("Received signal, shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		importer.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("Metrics server shutdown failed", slog.Any("error", err))
		}
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// startMetricsServer exposes the worker counters on their own port. Port 0 disables it.
func startMetricsServer(port int, log *slog.Logger) *http.Server {
	if port == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", slog.Any("error", err))
		}
	}()

	log.Info("Metrics server listening", slog.String("address", srv.Addr))
	return srv
}
