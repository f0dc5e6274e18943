package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Config holds logger configuration
type Config struct {
	Level        string // debug, info, warn, error
	Format       string // json, console
	Output       string // stdout, stderr, or file path
	EnableSource bool   // Enable source code location
	TimeFormat   string // Time format for console output

	writer io.Writer // set by NewWithWriter, wins over Output
}

// Logger wraps slog.Logger and owns the log file, if any
type Logger struct {
	*slog.Logger
	closer io.Closer
}

// New builds a logger from config. A file Output is opened in append mode
// and must be released with Close.
func New(config *Config) (*Logger, error) {
	out, err := openOutput(config)
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: slog.New(newHandler(config, out)),
		closer: out.closer,
	}, nil
}

// NewWithWriter creates a logger that writes to w regardless of Output
func NewWithWriter(config *Config, w io.Writer) (*Logger, error) {
	c := *config
	c.writer = w
	return New(&c)
}

type output struct {
	w      io.Writer
	closer io.Closer
	file   bool
}

func openOutput(config *Config) (output, error) {
	switch {
	case config.writer != nil:
		return output{w: config.writer}, nil
	case config.Output == "stderr":
		return output{w: os.Stderr}, nil
	case config.Output == "stdout" || config.Output == "":
		return output{w: os.Stdout}, nil
	}

	f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return output{}, fmt.Errorf("failed to open log file: %w", err)
	}
	return output{w: f, closer: f, file: true}, nil
}

// newHandler picks tint for console output and slog's JSON handler otherwise.
// Files never get ANSI colors.
func newHandler(config *Config, out output) slog.Handler {
	level := parseLevel(config.Level)

	if config.Format == "console" || config.Format == "" {
		timeFormat := config.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		return tint.NewHandler(out.w, &tint.Options{
			Level:      level,
			AddSource:  config.EnableSource,
			TimeFormat: timeFormat,
			NoColor:    out.file,
		})
	}

	return slog.NewJSONHandler(out.w, &slog.HandlerOptions{
		Level:     level,
		AddSource: config.EnableSource,
	})
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// With returns a logger carrying args on every record. The file stays owned
// by the parent.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// parseLevel accepts slog level names in any case plus "warning".
// Anything else is info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
