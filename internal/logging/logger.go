package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the global slog logger with JSON output to stdout.
// Used by the simulator; the interactive client calls SetupWith instead.
func Setup() {
	SetupWith(os.Stdout, slog.LevelInfo)
}

// SetupWith initializes the global slog logger with JSON output to w.
func SetupWith(w io.Writer, level slog.Level) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
