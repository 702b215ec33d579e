package viewer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a text logger at level ("debug", "info", "warn", "error")
// writing to path, or to fallback when path is empty. The returned close
// function releases the log file and is always safe to call.
func NewLogger(level, path string, fallback io.Writer) (*slog.Logger, func() error, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	w, closeFn := fallback, func() error { return nil }
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	return logger, closeFn, nil
}
