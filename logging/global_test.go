package logging

import (
	"log/slog"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPackageLevelFunctionsWithoutInit(t *testing.T) {
	// Save and clear the global service so the fallback path runs
	saved := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = saved }()

	// Must not panic
	Info("info without init", "key", "value")
	Warn("warn without init")
	Error("error without init", "error", "boom")
	Debug("debug without init")
}
