package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autotest-tools/devlabel/internal/category"
	"github.com/autotest-tools/devlabel/internal/relabel"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const powerShellManifest = `{"description":"Config for power shell test cases","environment":[{"type":"device","label":"phone"}],"driver":{"type":"DeviceTest","py_file":["testcases/level0/SUB_POWER_SHELL_TEST.py"]},"kits":[]}`

// isolateEnv points the config dir at a temp directory and clears the
// environment variables apply reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DEVLABEL_HOME", t.TempDir())
	for _, key := range []string{"DEVLABEL_CATEGORY", "DEVLABEL_ROOT", "DEVLABEL_JOBS", "DEVLABEL_FAIL_FAST", "DEVLABEL_EXCLUDE"} {
		t.Setenv(key, "")
	}
	t.Cleanup(viper.Reset)
}

// execute runs the root command with fresh flag values and Viper state,
// returning combined stdout/stderr.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag in the tree to its default, since cobra
// keeps parsed values in package-level variables between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupSuite creates a testcases directory with two power manifests.
func setupSuite(t *testing.T) (root string, paths []string) {
	t.Helper()
	root = filepath.Join(t.TempDir(), "testcases")
	for _, rel := range []string{"level0/SUB_POWER_SHELL_TEST.json", "level0/SUB_RUNNINGLOCK_TEST.json"} {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(powerShellManifest), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return root, paths
}

func fileContains(t *testing.T, path, substr string) bool {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Contains(string(data), substr)
}

func TestApply_PCShowsDisplayNameWritesTag(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)

	out, err := execute(t, "", "apply", "6", root)
	if err != nil {
		t.Fatalf("apply error: %v\n%s", err, out)
	}

	if !strings.Contains(out, "Select Test pc successfully!") {
		t.Errorf("success message missing display name:\n%s", out)
	}
	for _, p := range paths {
		if !fileContains(t, p, `"label": "2in1"`) {
			t.Errorf("%s not labeled 2in1", p)
		}
		if fileContains(t, p, `"label": "pc"`) {
			t.Errorf("%s labeled with the display name", p)
		}
	}
}

func TestApply_InvalidSelector(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)

	out, err := execute(t, "", "apply", "7", root)
	if !errors.Is(err, category.ErrInvalidSelection) {
		t.Fatalf("error = %v, want ErrInvalidSelection", err)
	}
	for _, p := range paths {
		if !fileContains(t, p, powerShellManifest) {
			t.Errorf("%s modified after an invalid selector", p)
		}
	}
	if strings.Contains(out, "successfully") {
		t.Errorf("success printed for an invalid selector:\n%s", out)
	}
}

func TestApply_UnknownFormatWritesNothing(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)

	out, err := execute(t, "", "apply", "tv", root, "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), `unknown output format "xml"`) {
		t.Fatalf("error = %v, want unknown output format", err)
	}
	for _, p := range paths {
		if !fileContains(t, p, powerShellManifest) {
			t.Errorf("%s modified despite a bad --format", p)
		}
	}
	if strings.Contains(out, "successfully") {
		t.Errorf("success printed for a bad --format:\n%s", out)
	}
}

func TestApply_MissingRoot(t *testing.T) {
	isolateEnv(t)
	root := filepath.Join(t.TempDir(), "nope")

	out, err := execute(t, "", "apply", "1", root)
	if err != nil {
		t.Fatalf("missing root without --strict should not fail: %v", err)
	}
	if !strings.Contains(out, "path:'"+root+"'not exist") {
		t.Errorf("missing-root message not printed:\n%s", out)
	}
	if strings.Contains(out, "successfully") {
		t.Errorf("success printed for a missing root:\n%s", out)
	}

	_, err = execute(t, "", "apply", "1", root, "--strict")
	if !errors.Is(err, relabel.ErrPathNotFound) {
		t.Errorf("--strict error = %v, want ErrPathNotFound", err)
	}
}

func TestApply_FailureExitsNonZero(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)
	bad := filepath.Join(root, "level0", "BROKEN.json")
	if err := os.WriteFile(bad, []byte(`{"kits":[]}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "apply", "tv", root)
	if err == nil {
		t.Fatalf("expected error with a broken manifest, got nil:\n%s", out)
	}
	if !strings.Contains(out, bad) {
		t.Errorf("failing path not listed:\n%s", out)
	}
	if strings.Contains(out, "successfully") {
		t.Errorf("success printed despite a failure:\n%s", out)
	}
	for _, p := range paths {
		if !fileContains(t, p, `"label": "tv"`) {
			t.Errorf("%s not relabeled alongside the failure", p)
		}
	}
}

func TestApply_SelectorFromEnvironment(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)
	t.Setenv("DEVLABEL_CATEGORY", "watch")
	t.Setenv("DEVLABEL_ROOT", root)

	out, err := execute(t, "", "apply")
	if err != nil {
		t.Fatalf("apply error: %v\n%s", err, out)
	}
	for _, p := range paths {
		if !fileContains(t, p, `"label": "watch"`) {
			t.Errorf("%s not relabeled from DEVLABEL_CATEGORY/DEVLABEL_ROOT", p)
		}
	}
}

func TestApply_ArgumentBeatsEnvironment(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)
	t.Setenv("DEVLABEL_CATEGORY", "watch")

	out, err := execute(t, "", "apply", "tablet", root)
	if err != nil {
		t.Fatalf("apply error: %v\n%s", err, out)
	}
	for _, p := range paths {
		if !fileContains(t, p, `"label": "tablet"`) {
			t.Errorf("%s not relabeled from the argument", p)
		}
	}
}

func TestApply_InteractivePrompt(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)
	t.Setenv("DEVLABEL_ROOT", root)

	out, err := execute(t, "2\n", "apply", "-i")
	if err != nil {
		t.Fatalf("apply -i error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Enter number [1-6]") {
		t.Errorf("menu not shown:\n%s", out)
	}
	if !strings.Contains(out, "Select Test car successfully!") {
		t.Errorf("unexpected output:\n%s", out)
	}
	for _, p := range paths {
		if !fileContains(t, p, `"label": "car"`) {
			t.Errorf("%s not relabeled from the prompt", p)
		}
	}
}

func TestApply_NoSelectorNonInteractive(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)
	t.Setenv("DEVLABEL_ROOT", root)

	_, err := execute(t, "", "apply")
	if !errors.Is(err, category.ErrInvalidSelection) {
		t.Errorf("error = %v, want ErrInvalidSelection", err)
	}
	for _, p := range paths {
		if !fileContains(t, p, powerShellManifest) {
			t.Errorf("%s modified without a selector", p)
		}
	}
}

func TestApply_JSONReportAndDryRun(t *testing.T) {
	isolateEnv(t)
	root, paths := setupSuite(t)

	out, err := execute(t, "", "apply", "car", root, "--dry-run", "--format", "json")
	if err != nil {
		t.Fatalf("apply error: %v\n%s", err, out)
	}

	var report relabel.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not a JSON report: %v\n%s", err, out)
	}
	if report.Discovered != 2 || report.Changed != 2 || !report.DryRun {
		t.Errorf("report = %+v", report)
	}
	for _, p := range paths {
		if !fileContains(t, p, powerShellManifest) {
			t.Errorf("%s written during a dry run", p)
		}
	}
}

func TestCategories(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "categories")
	if err != nil {
		t.Fatalf("categories error: %v", err)
	}
	if !strings.Contains(out, "6) pc") || !strings.Contains(out, "label: 2in1") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "", "categories", "--json")
	if err != nil {
		t.Fatalf("categories --json error: %v", err)
	}
	var cats []category.Category
	if err := json.Unmarshal([]byte(out), &cats); err != nil {
		t.Fatalf("decoding: %v\n%s", err, out)
	}
	if len(cats) != 6 || cats[5].Tag != "2in1" || cats[5].Name != "pc" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestConfigSetGet(t *testing.T) {
	isolateEnv(t)
	home := t.TempDir()
	t.Setenv("DEVLABEL_HOME", home)

	run := func(args ...string) string {
		t.Helper()
		out, err := execute(t, "", args...)
		if err != nil {
			t.Fatalf("%v error: %v", args, err)
		}
		return out
	}

	if out := run("config", "set", "jobs", "3"); !strings.Contains(out, "Set jobs = 3") {
		t.Errorf("set output = %q", out)
	}
	if out := run("config", "get", "jobs"); strings.TrimSpace(out) != "3" {
		t.Errorf("get output = %q, want 3", out)
	}
	if out := run("config", "path"); strings.TrimSpace(out) != filepath.Join(home, "config.yaml") {
		t.Errorf("path output = %q", out)
	}
}

func TestVersion(t *testing.T) {
	isolateEnv(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-01-01"

	out, err := execute(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "1.2.3" {
		t.Errorf("version --short = %q", out)
	}

	out, err = execute(t, "", "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decoding: %v\n%s", err, out)
	}
	if info["commit"] != "abc123" {
		t.Errorf("commit = %q", info["commit"])
	}
}
