package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/sonyflake"

	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

// LogRepository persists and lists activity-log entries
type LogRepository interface {
	Create(ctx context.Context, e activity.Entry) (activity.Entry, error)
	List(ctx context.Context, f logapi.Filter) ([]activity.Entry, error)
}

// LogAPI is the part of logapi.Client used by RemoteLogs
type LogAPI interface {
	CreateLog(ctx context.Context, e activity.Entry) (int64, error)
	ListLogs(ctx context.Context, f logapi.Filter) (*logapi.Page, error)
}

// RemoteLogs is a LogRepository backed by the log API
type RemoteLogs struct {
	api LogAPI
}

// NewRemoteLogs creates a RemoteLogs
func NewRemoteLogs(api LogAPI) *RemoteLogs {
	return &RemoteLogs{api: api}
}

// Create posts e and returns it with the server id
func (r *RemoteLogs) Create(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	id, err := r.api.CreateLog(ctx, e)
	if err != nil {
		return activity.Entry{}, err
	}
	e.ID = id
	return e, nil
}

// List returns the entries matching f. Without a limit every page is followed.
func (r *RemoteLogs) List(ctx context.Context, f logapi.Filter) ([]activity.Entry, error) {
	var out []activity.Entry
	for {
		page, err := r.api.ListLogs(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Entries...)

		if f.Limit > 0 || page.NextCursor == "" || len(page.Entries) == 0 {
			return out, nil
		}
		f.Cursor = page.NextCursor
	}
}

// CachedLogs is a LogRepository over the local activityLogs key
type CachedLogs struct {
	storage *LocalStorage
}

// NewCachedLogs creates a CachedLogs
func NewCachedLogs(storage *LocalStorage) *CachedLogs {
	return &CachedLogs{storage: storage}
}

// All returns every cached entry in stored order
func (c *CachedLogs) All() ([]activity.Entry, error) {
	var entries []activity.Entry
	if _, err := c.storage.Load(KeyActivityLogs, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Replace overwrites the cache
func (c *CachedLogs) Replace(entries []activity.Entry) error {
	if entries == nil {
		entries = []activity.Entry{}
	}
	return c.storage.Save(KeyActivityLogs, entries)
}

// Pending returns the entries stored while the API was unreachable
func (c *CachedLogs) Pending() ([]activity.Entry, error) {
	var entries []activity.Entry
	if _, err := c.storage.Load(KeyPendingLogs, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SetPending overwrites the pending queue. An empty queue removes the key.
func (c *CachedLogs) SetPending(entries []activity.Entry) error {
	if len(entries) == 0 {
		return c.storage.Remove(KeyPendingLogs)
	}
	return c.storage.Save(KeyPendingLogs, entries)
}

// Create appends e to the cache
func (c *CachedLogs) Create(_ context.Context, e activity.Entry) (activity.Entry, error) {
	entries, err := c.All()
	if err != nil {
		return activity.Entry{}, err
	}
	if err := c.Replace(append(entries, e)); err != nil {
		return activity.Entry{}, err
	}
	return e, nil
}

// List filters the cache client-side and returns it newest-first
func (c *CachedLogs) List(_ context.Context, f logapi.Filter) ([]activity.Entry, error) {
	entries, err := c.All()
	if err != nil {
		return nil, err
	}

	var matched []activity.Entry
	for _, e := range entries {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}

	matched = activity.SortNewestFirst(matched)
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// FallbackLogs tries the remote repository first and falls back to the cache.
// Network errors are logged, never returned.
type FallbackLogs struct {
	remote LogRepository
	cache  *CachedLogs
	ids    *sonyflake.Sonyflake
	now    func() time.Time
	logger *slog.Logger
}

// FallbackConfig holds FallbackLogs configuration
type FallbackConfig struct {
	Remote LogRepository
	Cache  *CachedLogs
	Logger *slog.Logger
	Now    func() time.Time
}

// NewFallbackLogs creates a FallbackLogs
func NewFallbackLogs(cfg *FallbackConfig) (*FallbackLogs, error) {
	ids := sonyflake.NewSonyflake(sonyflake.Settings{
		MachineID: func() (uint16, error) { return 1, nil },
	})
	if ids == nil {
		return nil, fmt.Errorf("failed to initialize id generator")
	}

	f := &FallbackLogs{
		remote: cfg.Remote,
		cache:  cfg.Cache,
		ids:    ids,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f, nil
}

// Create records e remotely, or locally with a synthesized id when the remote fails
func (f *FallbackLogs) Create(ctx context.Context, e activity.Entry) (activity.Entry, error) {
	if e.Timestamp.IsZero() {
		e.Timestamp = f.now().UTC()
	}

	created, err := f.remote.Create(ctx, e)
	if err != nil {
		f.logger.Warn("Failed to save log to API, storing locally",
			slog.String("action", e.Action),
			slog.String("company", e.Company),
			slog.Any("error", err),
		)

		id, idErr := f.ids.NextID()
		if idErr != nil {
			return activity.Entry{}, fmt.Errorf("failed to generate log id: %w", idErr)
		}
		created = e
		created.ID = int64(id)

		if err := f.enqueue(created); err != nil {
			return created, err
		}
	}

	if _, err := f.cache.Create(ctx, created); err != nil {
		return created, fmt.Errorf("failed to cache log: %w", err)
	}
	return created, nil
}

func (f *FallbackLogs) enqueue(e activity.Entry) error {
	pending, err := f.cache.Pending()
	if err != nil {
		return fmt.Errorf("failed to load pending logs: %w", err)
	}
	if err := f.cache.SetPending(append(pending, e)); err != nil {
		return fmt.Errorf("failed to queue log: %w", err)
	}
	return nil
}

// replay sends the pending entries to the remote repository. It returns the
// entries with their server ids followed by the ones still pending.
func (f *FallbackLogs) replay(ctx context.Context) ([]activity.Entry, error) {
	pending, err := f.cache.Pending()
	if err != nil || len(pending) == 0 {
		return nil, err
	}

	out := make([]activity.Entry, 0, len(pending))
	var failed []activity.Entry
	for i, e := range pending {
		created, err := f.remote.Create(ctx, e)
		if err != nil {
			f.logger.Warn("Failed to replay local log to API",
				slog.Int64("id", e.ID),
				slog.Int("remaining", len(pending)-i),
				slog.Any("error", err),
			)
			failed = append(failed, pending[i:]...)
			break
		}
		out = append(out, created)
	}

	if len(out) > 0 {
		f.logger.Info("Replayed local logs to API", slog.Int("count", len(out)))
	}
	if err := f.cache.SetPending(failed); err != nil {
		return nil, fmt.Errorf("failed to update pending logs: %w", err)
	}
	return append(out, failed...), nil
}

// List returns the remote list newest-first, or the cached list when the remote fails.
// An unfiltered remote result first replays the pending entries, then replaces
// the cache with the remote list plus those entries.
func (f *FallbackLogs) List(ctx context.Context, filter logapi.Filter) ([]activity.Entry, error) {
	entries, err := f.remote.List(ctx, filter)
	if err != nil {
		f.logger.Warn("Failed to fetch logs from API, using cached logs",
			slog.Any("error", err),
		)
		return f.cache.List(ctx, filter)
	}

	if filter == (logapi.Filter{}) {
		local, err := f.replay(ctx)
		if err != nil {
			f.logger.Warn("Failed to replay local logs", slog.Any("error", err))
		}
		entries = mergeByID(entries, local)

		if err := f.cache.Replace(entries); err != nil {
			f.logger.Warn("Failed to refresh log cache", slog.Any("error", err))
		}
	}
	return activity.SortNewestFirst(entries), nil
}

// mergeByID appends the entries of extra whose id is not already in base
func mergeByID(base, extra []activity.Entry) []activity.Entry {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[int64]struct{}, len(base))
	for _, e := range base {
		seen[e.ID] = struct{}{}
	}
	for _, e := range extra {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		base = append(base, e)
	}
	return base
}
