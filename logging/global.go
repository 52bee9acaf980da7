package logging

import (
	"log/slog"
	"os"
)

type LoggingService struct {
	Logger *slog.Logger
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger instance. The level comes from
// the LOG_LEVEL environment variable, defaulting to info.
func InitLogger(logDir string) {
	DefaultLoggingService = &LoggingService{
		Logger: SetupLogger(logDir),
	}
	slog.SetDefault(DefaultLoggingService.Logger)
}

// parseLogLevel maps a level name to its slog level, defaulting to info
func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		fallback.Info(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
		fallback.Error(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
		fallback.Warn(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		// Fallback to console logger if not initialized
		fallback := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		fallback.Debug(msg, args...)
		return
	}
	DefaultLoggingService.Logger.Debug(msg, args...)
}
