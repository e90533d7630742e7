package config

import (
	"io"

	"github.com/rs/zerolog"
)

// NewLogger creates a zerolog logger at the given level, falling back to
// info for unknown levels. Console output is used when w is a terminal
// stream the caller wants human-readable; pass a plain writer for JSON.
func NewLogger(level string, w io.Writer, console bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "mace").Logger()
}
