package app

import (
	"io"
	"log/slog"

	"github.com/specialistvlad/smartnodego/internal/diag"
)

// newLogger creates an isolated slog.Logger; the global logger is left alone.
// Critical diagnostics print as CRITICAL. Unknown levels fall back to info.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: diag.ReplaceLevel}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
