package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/specialistvlad/dicompiler/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. The first
// buffer receives generated code, the second the debug log.
func SetupAppTest(t *testing.T, cfg *Config, extra ...ExtensionFactory) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(out, logBuffer, cfg, extra...)

	t.Cleanup(func() {
		if os.Getenv("DICOMPILER_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
