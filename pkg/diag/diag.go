// Package diag wires up the translator's diagnostics logger: a
// human-readable stderr handler fanned out alongside a structured
// JSON handler, for warning-class events (unknown opcodes, dangling
// labels, dropped sections) that a translation pass wants to surface
// without aborting.
package diag

import (
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// New builds the fan-out logger used by every CLI command: text to
// stderr always, plus JSON to diagnosticsFile when one is given.
func New(diagnosticsFile string) (*slog.Logger, func() error, error) {
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
	}

	closer := func() error { return nil }

	if diagnosticsFile != "" {
		f, err := os.Create(diagnosticsFile)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = f.Close
	}

	logger := slog.New(slogmulti.Fanout(handlers...))
	return logger, closer, nil
}

// Discard is a no-op logger for tests and library callers that do not
// care about diagnostics.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
