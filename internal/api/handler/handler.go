package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cuongbtq/job-tracker/internal/api/model"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
)

// ContextKeyBatchID is the gin context key holding the batch id queued by BulkImport
const ContextKeyBatchID = "batch_id"

// LogStorage is the persistence used by LogHandler
type LogStorage interface {
	CreateLog(ctx context.Context, log *model.ActivityLog) error
	GetLogByID(ctx context.Context, id int64) (*model.ActivityLog, error)
	ListLogs(ctx context.Context, filter storage.LogFilter) ([]model.ActivityLog, error)
	DeleteLog(ctx context.Context, id int64) error
	GetStats(ctx context.Context, topCompanies int) (*model.LogStats, error)
}

// Publisher delivers bulk import batches to the worker service
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// HealthChecker reports whether the database is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Storage   LogStorage
	Publisher Publisher
	DB        HealthChecker
	StartedAt time.Time
	Now       func() time.Time
}

func (d *Dependencies) clock() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}

// LogHandler handles activity-log HTTP requests
type LogHandler struct {
	logger    *slog.Logger
	storage   LogStorage
	publisher Publisher
	now       func() time.Time
}

// NewLogHandler creates a new LogHandler instance
func NewLogHandler(deps *Dependencies) *LogHandler {
	return &LogHandler{
		logger:    deps.Logger,
		storage:   deps.Storage,
		publisher: deps.Publisher,
		now:       deps.clock(),
	}
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db        HealthChecker
	startedAt time.Time
	now       func() time.Time
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	h := &HealthHandler{
		db:        deps.DB,
		startedAt: deps.StartedAt,
		now:       deps.clock(),
	}
	if h.startedAt.IsZero() {
		h.startedAt = h.now()
	}
	return h
}
