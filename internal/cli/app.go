package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/cuongbtq/job-tracker/internal/client/logapi"
	"github.com/cuongbtq/job-tracker/internal/client/store"
	"github.com/cuongbtq/job-tracker/internal/tracker/query"
	"github.com/cuongbtq/job-tracker/internal/tracker/timeline"
	"github.com/cuongbtq/job-tracker/shared/logger"
)

// Options are the persistent settings of every command
type Options struct {
	APIURL   string
	StateDir string
	Delay    time.Duration
	Timeout  time.Duration
	Retries  int
	Verbose  bool

	// Fs, Now and Location are replaced in tests
	Fs       afero.Fs
	Now      func() time.Time
	Location *time.Location
}

// DefaultOptions reads TRACKER_* environment variables
func DefaultOptions() *Options {
	opts := &Options{
		APIURL:   envString("TRACKER_API_URL", "http://localhost:8080"),
		StateDir: envString("TRACKER_STATE_DIR", defaultStateDir()),
		Delay:    envDuration("TRACKER_DELAY", 1500*time.Millisecond),
		Timeout:  envDuration("TRACKER_TIMEOUT", 5*time.Second),
		Retries:  envInt("TRACKER_RETRIES", 2),
		Fs:       afero.NewOsFs(),
		Now:      time.Now,
		Location: time.Local,
	}
	return opts
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".job-tracker"
	}
	return filepath.Join(home, ".job-tracker")
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

// App wires the client stores for one command invocation
type App struct {
	opts      *Options
	logger    *slog.Logger
	storage   *store.LocalStorage
	session   *store.Session
	api       *logapi.Client
	cache     *store.CachedLogs
	logs      *store.FallbackLogs
	jobs      *store.JobStore
	assistant *query.Assistant
	formatter *timeline.Formatter
}

// NewApp builds the stores from opts. Diagnostics go to errOut.
func NewApp(opts *Options, errOut io.Writer) (*App, error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	appLogger, err := logger.NewWithWriter(&logger.Config{
		Level:      level,
		Format:     "console",
		TimeFormat: time.TimeOnly,
	}, errOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := appLogger.Logger

	storage, err := store.NewLocalStorage(opts.Fs, opts.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state directory: %w", err)
	}

	api, err := logapi.NewClient(&logapi.Config{
		BaseURL:    opts.APIURL,
		Timeout:    opts.Timeout,
		MaxRetries: opts.Retries,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	cache := store.NewCachedLogs(storage)
	logs, err := store.NewFallbackLogs(&store.FallbackConfig{
		Remote: store.NewRemoteLogs(api),
		Cache:  cache,
		Logger: log,
		Now:    opts.Now,
	})
	if err != nil {
		return nil, err
	}

	session := store.NewSession(storage)
	jobs := store.NewJobStore(&store.JobStoreConfig{
		Storage: storage,
		Session: session,
		Logs:    logs,
		Now:     opts.Now,
		Logger:  log,
	})

	formatter := timeline.NewFormatter(opts.Location)
	formatter.Now = opts.Now

	return &App{
		opts:    opts,
		logger:  log,
		storage: storage,
		session: session,
		api:     api,
		cache:   cache,
		logs:    logs,
		jobs:    jobs,
		assistant: query.NewAssistant(&query.AssistantConfig{
			Matcher: query.NewMatcher(opts.Location),
			Sources: store.NewQuerySources(jobs, logs),
			Delay:   opts.Delay,
			Logger:  log,
		}),
		formatter: formatter,
	}, nil
}
