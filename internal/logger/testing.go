package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests.
// WARN level keeps test output quiet; set TEST_DEBUG to see everything.
func NewTestLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return NewLogger(Config{Level: level, Format: "text", Output: os.Stdout})
}
