package testutil

import (
	"testing"

	"github.com/specialistvlad/smartnodego/internal/diag"
	"github.com/stretchr/testify/require"
)

// AssertReported checks that sink received a report of sev whose message
// contains substr, and returns it for further assertions.
func AssertReported(t *testing.T, sink *RecordingSink, sev diag.Severity, substr string) Report {
	t.Helper()

	r, ok := sink.Find(substr)
	require.True(t, ok, "no report containing %q; got %+v", substr, sink.Reports())
	require.Equal(t, sev, r.Severity, "unexpected severity for %q", r.Message)
	return r
}
