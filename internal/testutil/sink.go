package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/specialistvlad/smartnodego/internal/diag"
)

// Report is one diagnostic captured by a RecordingSink.
type Report struct {
	Severity diag.Severity
	Message  string
	Attrs    map[string]string
}

// RecordingSink is a diag.Sink that keeps every report in memory.
type RecordingSink struct {
	mu      sync.Mutex
	reports []Report
}

var _ diag.Sink = (*RecordingSink)(nil)

// Report implements diag.Sink.
func (s *RecordingSink) Report(_ context.Context, sev diag.Severity, msg string, attrs ...slog.Attr) {
	r := Report{Severity: sev, Message: msg, Attrs: make(map[string]string, len(attrs))}
	for _, a := range attrs {
		r.Attrs[a.Key] = a.Value.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
}

// Reports returns a copy of everything reported so far.
func (s *RecordingSink) Reports() []Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Report, len(s.reports))
	copy(out, s.reports)
	return out
}

// BySeverity returns the reports of one severity in order.
func (s *RecordingSink) BySeverity(sev diag.Severity) []Report {
	var out []Report
	for _, r := range s.Reports() {
		if r.Severity == sev {
			out = append(out, r)
		}
	}
	return out
}

// Count returns how many reports of sev were made.
func (s *RecordingSink) Count(sev diag.Severity) int {
	return len(s.BySeverity(sev))
}

// Find returns the first report whose message contains substr.
func (s *RecordingSink) Find(substr string) (Report, bool) {
	for _, r := range s.Reports() {
		if strings.Contains(r.Message, substr) {
			return r, true
		}
	}
	return Report{}, false
}
