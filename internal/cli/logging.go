package cli

import (
	"io"
	"log/slog"
)

// enableDebugLoggingTo points the global slog logger at w at debug level.
//
// Only --debug calls it, so packages logging through slog.Default stay quiet
// for library and test consumers.
func enableDebugLoggingTo(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}
