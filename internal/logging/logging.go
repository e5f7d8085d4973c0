// Package logging builds the structured loggers used across the application.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w. With debug set the level is DEBUG,
// otherwise only warnings and errors are written.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup returns the logger for one-shot commands: stderr when debug is set,
// discarded otherwise.
func Setup(errOut io.Writer, debug bool) *slog.Logger {
	if !debug {
		return Discard()
	}
	return New(errOut, true)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenFile returns a logger appending to path. The interactive view owns the
// terminal, so its logs go to a file instead. The caller closes the file.
func OpenFile(path string, debug bool) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, debug), f, nil
}
