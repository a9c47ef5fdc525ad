// Package logger sets up structured JSON logging for the process. Hot-path
// components keep using the standard log package for cheap prefixed lines;
// slog carries the startup/shutdown and error records.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs a JSON slog handler as the default logger, tagged with the
// service name. Unknown levels fall back to info.
func Init(service, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	l := slog.New(handler).With("service", service)
	slog.SetDefault(l)
	return l
}
