// Package logging configures the debug/audit log. The hook writes nothing to
// stdout or stderr in normal operation: stdout belongs to the hook protocol
// and the invoking tool, so all diagnostics go to an append-only file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kolapsis/chime/internal/config"
)

// Setup installs the default slog logger writing JSON lines to the
// configured file. The returned closer flushes and closes the file. A file
// that cannot be opened degrades to a discarded logger; logging must never
// break the hook.
func Setup(cfg config.LogConfig) func() {
	level := ParseLevel(cfg.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
		return func() {}
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
		return func() {}
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return func() { _ = f.Close() }
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch s {
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
