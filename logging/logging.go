// Package logging configures structured slog logging for the service and
// provides package-level helpers with a console fallback so early startup
// paths can log before initialization.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/quantalabs/analysis-api/config"
)

// Service wraps the configured logger so main can hold a handle besides the
// process default.
type Service struct {
	Logger *slog.Logger
}

var defaultService *Service

// Setup builds a logger per config: human-readable text in dev, JSON
// everywhere else.
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}

	var handler slog.Handler
	if cfg.Env == "dev" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Init installs the configured logger as the package and process default.
func Init(cfg *config.Config) *slog.Logger {
	logger := Setup(cfg)
	defaultService = &Service{Logger: logger}
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logger() *slog.Logger {
	if defaultService == nil || defaultService.Logger == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return defaultService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}
