package logapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/cuongbtq/job-tracker/internal/tracker/activity"
)

// ErrNotFound is matched by StatusError values carrying a 404
var ErrNotFound = errors.New("log entry not found")

// StatusError is a non-2xx response from the log API
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("log api returned %d", e.Code)
	}
	return fmt.Sprintf("log api returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Config holds log API client configuration
type Config struct {
	BaseURL           string
	Timeout           time.Duration // overall budget for one call, retries included
	MaxRetries        int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

// Client talks to the activity-log API
type Client struct {
	baseURL     string
	timeout     time.Duration
	maxRetries  int
	initialWait time.Duration
	multiplier  float64
	http        *http.Client
	logger      *slog.Logger
}

// NewClient creates a new log API client
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("log api base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid log api base url: %w", err)
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		initialWait: cfg.InitialBackoff,
		multiplier:  cfg.BackoffMultiplier,
		http:        cfg.HTTPClient,
		logger:      cfg.Logger,
	}

	if c.timeout <= 0 {
		c.timeout = 10 * time.Second // default
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.initialWait <= 0 {
		c.initialWait = 200 * time.Millisecond // default
	}
	if c.multiplier <= 0 {
		c.multiplier = 2.0 // default
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// Filter narrows GET /api/logs. Zero values are omitted from the query.
type Filter struct {
	Action   string
	Company  string
	Username string
	JobID    string
	From     time.Time
	To       time.Time
	Limit    int
	Cursor   string
}

// Values encodes the filter as flat query parameters
func (f Filter) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("action", f.Action)
	set("company", f.Company)
	set("username", f.Username)
	set("jobId", f.JobID)
	if !f.From.IsZero() {
		v.Set("from", f.From.UTC().Format(time.RFC3339))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.UTC().Format(time.RFC3339))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	set("cursor", f.Cursor)
	return v
}

// Matches applies the filter to a single entry, used against cached lists
func (f Filter) Matches(e activity.Entry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Company != "" && !strings.EqualFold(e.Company, f.Company) {
		return false
	}
	if f.Username != "" && e.Username != f.Username {
		return false
	}
	if f.JobID != "" && e.JobID != f.JobID {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// Page is one page of GET /api/logs
type Page struct {
	Entries    []activity.Entry
	NextCursor string
}

// CompanyCount is one row of the stats company ranking
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Stats is the payload of GET /api/logs/stats
type Stats struct {
	Total        int            `json:"total"`
	ByAction     map[string]int `json:"byAction"`
	TopCompanies []CompanyCount `json:"topCompanies"`
	LastActivity *time.Time     `json:"lastActivity,omitempty"`
}

// HealthStatus is the payload of GET /health
type HealthStatus struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp,omitempty"`
	Uptime    float64 `json:"uptime,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// BulkResult is the payload of POST /api/logs/bulk
type BulkResult struct {
	Queued  int    `json:"queued"`
	BatchID string `json:"batchId"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	ID         int64           `json:"id,omitempty"`
	Count      int             `json:"count,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	NextCursor string          `json:"nextCursor,omitempty"`
	Queued     int             `json:"queued,omitempty"`
	BatchID    string          `json:"batchId,omitempty"`
}

// CreateLog handles POST /api/logs and returns the server-assigned id
func (c *Client) CreateLog(ctx context.Context, e activity.Entry) (int64, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/logs", nil, e, &env); err != nil {
		return 0, err
	}
	return env.ID, nil
}

// ListLogs handles GET /api/logs
func (c *Client) ListLogs(ctx context.Context, f Filter) (*Page, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/logs", f.Values(), nil, &env); err != nil {
		return nil, err
	}

	page := &Page{NextCursor: env.NextCursor}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &page.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode log list: %w", err)
		}
	}
	return page, nil
}

// GetLog handles GET /api/logs/:id
func (c *Client) GetLog(ctx context.Context, id int64) (*activity.Entry, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/logs/"+strconv.FormatInt(id, 10), nil, nil, &env); err != nil {
		return nil, err
	}

	var e activity.Entry
	if err := json.Unmarshal(env.Data, &e); err != nil {
		return nil, fmt.Errorf("failed to decode log entry: %w", err)
	}
	return &e, nil
}

// DeleteLog handles DELETE /api/logs/:id
func (c *Client) DeleteLog(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/logs/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Stats handles GET /api/logs/stats
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/logs/stats", nil, nil, &env); err != nil {
		return nil, err
	}

	var s Stats
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return &s, nil
}

// BulkImport handles POST /api/logs/bulk
func (c *Client) BulkImport(ctx context.Context, entries []activity.Entry) (*BulkResult, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/logs/bulk", nil, entries, &env); err != nil {
		return nil, err
	}
	return &BulkResult{Queued: env.Queued, BatchID: env.BatchID}, nil
}

// Health handles GET /health. It never fails: errors become an unhealthy status.
func (c *Client) Health(ctx context.Context) HealthStatus {
	var h HealthStatus
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return HealthStatus{Status: "unhealthy", Error: err.Error()}
	}
	return h
}

// do executes one API call with an overall timeout and exponential backoff.
// Network errors and 5xx are retried, 4xx and decode errors are not.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialWait
	policy.Multiplier = c.multiplier
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			statusErr := &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
			if resp.StatusCode >= http.StatusInternalServerError {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
			}
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Log API call failed, retrying...",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", c.maxRetries),
			slog.Duration("retry_after", wait),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx), notify)
	if err != nil {
		return fmt.Errorf("%s %s failed after %d attempts: %w", method, path, attempt, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return strings.TrimSpace(string(body))
}
