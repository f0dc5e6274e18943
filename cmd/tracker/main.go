package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cuongbtq/job-tracker/internal/cli"
	"github.com/cuongbtq/job-tracker/shared/logger"
)

func main() {
	loadDotEnv(os.Stderr)

	if err := cli.NewRootCommand(cli.DefaultOptions()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadDotEnv loads the given env files, .env by default. A missing file is
// ignored, any other failure is logged to w.
func loadDotEnv(w io.Writer, filenames ...string) {
	err := godotenv.Load(filenames...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}

	appLogger, logErr := logger.NewWithWriter(&logger.Config{
		Level:      "warn",
		Format:     "console",
		TimeFormat: time.TimeOnly,
	}, w)
	if logErr != nil {
		return
	}
	appLogger.Warn("Failed to load .env file", slog.Any("error", err))
}
