// Package logutil configures the process-wide logger. Logs go to a
// rotated file rather than the terminal so they never corrupt the session
// view.
package logutil

import (
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 30
)

// Init installs a JSON slog handler writing to the given file path.
func Init(logFilePath string) {
	w := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	level := slog.LevelInfo
	if os.Getenv("SATI_DEBUG") != "" {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))

	slog.SetDefault(logger)
}
