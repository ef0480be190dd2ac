// Package diag is the diagnostic sink the orchestration engine reports every
// condition to. Severities follow the agent's log conventions: Critical marks
// configuration or programmer defects (duplicate names, missing hooks), Error
// marks runtime failures while building a component.
package diag

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/smartnodego/internal/ctxlog"
)

// LevelCritical sits above slog.LevelError.
const LevelCritical = slog.LevelError + 4

// Severity classifies a reported condition.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Level maps the severity onto a slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case Info:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return LevelCritical
	}
}

// Sink receives (severity, message) pairs plus optional structured attributes.
type Sink interface {
	Report(ctx context.Context, sev Severity, msg string, attrs ...slog.Attr)
}

// LogSink writes reports to a slog logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a Sink backed by logger. A nil logger means the logger
// found in each report's context.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Report implements Sink.
func (s *LogSink) Report(ctx context.Context, sev Severity, msg string, attrs ...slog.Attr) {
	logger := s.logger
	if logger == nil {
		logger = ctxlog.FromContext(ctx)
	}
	logger.LogAttrs(ctx, sev.Level(), msg, attrs...)
}

// ReplaceLevel is a slog.HandlerOptions.ReplaceAttr hook that prints
// LevelCritical as CRITICAL instead of ERROR+4.
func ReplaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl >= LevelCritical {
		a.Value = slog.StringValue("CRITICAL")
	}
	return a
}
