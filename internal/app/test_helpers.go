package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/orchestrator"
	"github.com/specialistvlad/smartnodego/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestLogsEnv enables dumping captured logs of app tests.
const TestLogsEnv = "SMARTNODE_TEST_LOGS"

// SetupAppTest creates an App that logs at debug level into a buffer. The App
// is shut down when the test ends.
func SetupAppTest(t *testing.T, cfg Config, modules ...catalog.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	cfg.Pacing = 0
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp := NewApp(logBuffer, appConfig, modules...)

	t.Cleanup(func() {
		require.NoError(t, testApp.Shutdown(context.Background()))
		if os.Getenv(TestLogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

// BootResult holds what a test boot produced.
type BootResult struct {
	App       *App
	Outcomes  []orchestrator.Outcome
	Err       error
	LogOutput *testutil.SafeBuffer
}

// RunBoot writes files to a temporary directory, points the configuration
// at entry inside it and boots an App with the given modules.
func RunBoot(t *testing.T, files map[string]string, entry string, modules ...catalog.Module) *BootResult {
	t.Helper()

	root := testutil.WriteFiles(t, files)
	testApp, logs := SetupAppTest(t, Config{ConfigPath: filepath.Join(root, entry)}, modules...)

	outcomes, err := testApp.Boot(context.Background())
	return &BootResult{App: testApp, Outcomes: outcomes, Err: err, LogOutput: logs}
}
