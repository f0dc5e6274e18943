package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
	"github.com/cuongbtq/job-tracker/internal/tracker/job"
	"github.com/cuongbtq/job-tracker/internal/tracker/report"
)

var (
	// ErrEmptyQuery is returned when the query is blank after trimming
	ErrEmptyQuery = errors.New("query is empty")

	// ErrBusy is returned while a previous submission is still pending
	ErrBusy = errors.New("a query is already being processed")
)

// Sources supplies the jobs and logs snapshot for one submission
type Sources interface {
	Jobs(ctx context.Context) ([]job.Record, error)
	Logs(ctx context.Context) ([]activity.Entry, error)
}

// Assistant serializes query submissions and simulates processing time
type Assistant struct {
	matcher *Matcher
	sources Sources
	delay   time.Duration
	logger  *slog.Logger
	pending atomic.Bool
}

// AssistantConfig holds assistant configuration
type AssistantConfig struct {
	Matcher *Matcher
	Sources Sources
	Delay   time.Duration
	Logger  *slog.Logger
}

// NewAssistant creates a new Assistant
func NewAssistant(cfg *AssistantConfig) *Assistant {
	m := cfg.Matcher
	if m == nil {
		m = NewMatcher(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		matcher: m,
		sources: cfg.Sources,
		delay:   cfg.Delay,
		logger:  logger,
	}
}

// Ask snapshots the sources, waits the configured delay and returns the report
func (a *Assistant) Ask(ctx context.Context, query string) (report.Document, error) {
	if strings.TrimSpace(query) == "" {
		return report.Document{}, ErrEmptyQuery
	}

	if !a.pending.CompareAndSwap(false, true) {
		return report.Document{}, ErrBusy
	}
	defer a.pending.Store(false)

	jobs, err := a.sources.Jobs(ctx)
	if err != nil {
		return report.Document{}, fmt.Errorf("failed to load jobs: %w", err)
	}

	logs, err := a.sources.Logs(ctx)
	if err != nil {
		return report.Document{}, fmt.Errorf("failed to load activity logs: %w", err)
	}

	a.logger.Debug("Processing query",
		slog.String("query", query),
		slog.Int("jobs", len(jobs)),
		slog.Int("logs", len(logs)),
		slog.Duration("delay", a.delay),
	)

	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return report.Document{}, fmt.Errorf("query canceled: %w", ctx.Err())
		}
	}

	return a.matcher.Match(query, jobs, logs), nil
}

// Pending reports whether a submission is in flight
func (a *Assistant) Pending() bool {
	return a.pending.Load()
}
