//go:build integration

package integration_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

// suiteCases mirrors the level0 power-management suite layout.
var suiteCases = []string{
	"level0/SUB_POWER_SHELL_TEST",
	"level0/SUB_POWER_SHELL_SETMODE_TEST",
	"level0/SUB_RUNNINGLOCK_TEST",
	"level0/SUB_RUNNINGLOCK_TIMEOUT_TEST",
	"level0/SUB_REFRESH_SCREEN_STATE_TEST",
	"level0/SUB_SHUTDOWN_REBOOT_TEST",
	"level0/SUB_KILL_FOUNDATION_TEST",
	"level0/SUB_MUSIC_TEST",
}

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir  string // DEVLABEL_HOME: holds config.yaml
	SuiteDir string // the testcases root
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so config reads and writes are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:  t.TempDir(),
		SuiteDir: filepath.Join(t.TempDir(), "testcases"),
	}

	t.Setenv("DEVLABEL_HOME", env.HomeDir)
	for _, key := range []string{"DEVLABEL_CATEGORY", "DEVLABEL_ROOT", "DEVLABEL_JOBS", "DEVLABEL_FAIL_FAST", "DEVLABEL_EXCLUDE"} {
		t.Setenv(key, "")
	}
	viper.Reset()
	t.Cleanup(viper.Reset)

	return env
}

// setupSuite writes one manifest and one script per case, all labeled for label.
// Returns the manifest paths.
func setupSuite(t *testing.T, suiteDir, label string) []string {
	t.Helper()

	var manifests []string
	for _, c := range suiteCases {
		name := filepath.Base(c)
		manifest := fmt.Sprintf(`{
  "description": "Config for %s",
  "environment": [
    {"type": "device", "label": "%s"}
  ],
  "driver": {
    "type": "DeviceTest",
    "py_file": ["testcases/%s.py"]
  },
  "kits": [
    {"type": "ShellKit", "run-command": ["power-shell wakeup"], "teardown-command": []}
  ]
}`, name, label, c)
		path := filepath.Join(suiteDir, filepath.FromSlash(c)+".json")
		writeFile(t, path, manifest)
		writeFile(t, filepath.Join(suiteDir, filepath.FromSlash(c)+".py"), "# driver script\n")
		manifests = append(manifests, path)
	}
	return manifests
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}

// readAll returns every file under root keyed by path.
func readAll(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[path] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walking %s: %v", root, err)
	}
	return files
}
