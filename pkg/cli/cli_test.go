package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiauto/pkg/config"
	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/params"
	"github.com/devicelab-dev/uiauto/pkg/workload"
)

// runApp runs the uiauto app with args and returns what it wrote to stdout.
// Progress output is discarded.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	oldProgress := progress
	progress = io.Discard
	t.Cleanup(func() { progress = oldProgress })

	var out bytes.Buffer
	app := NewApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"uiauto"}, args...))
	return out.String(), err
}

// writeConfigFile writes a uiauto.yaml into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uiauto.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	requiredFlags := []string{"config", "device", "driver", "verbose", "log-file"}
	for _, name := range requiredFlags {
		if !flagNames[name] {
			t.Errorf("expected flag %q to be defined", name)
		}
	}
}

func TestCommands(t *testing.T) {
	var got []string
	for _, cmd := range Commands {
		got = append(got, cmd.Name)
	}
	want := []string{"decode", "encode", "run", "instrument", "wait-log", "swipe"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParamArgs_Valid(t *testing.T) {
	raw, err := parseParamArgs([]string{"iterations=is3", "names=sla0newelement0b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := params.RawBundle{"iterations": "is3", "names": "sla0newelement0b"}
	if diff := cmp.Diff(want, raw); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseParamArgs_ValueWithEquals(t *testing.T) {
	raw, err := parseParamArgs([]string{"query=ssa=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["query"] != "ssa=b" {
		t.Errorf("expected ssa=b, got %q", raw["query"])
	}
}

func TestParseParamArgs_InvalidFormat(t *testing.T) {
	for _, arg := range []string{"novalue", "=ss1"} {
		_, err := parseParamArgs([]string{arg})
		if !errors.Is(err, core.ErrInvalidConfig) {
			t.Errorf("parseParamArgs(%q) = %v, want invalid config", arg, err)
		}
	}
}

func TestMergeParams(t *testing.T) {
	base := params.RawBundle{"a": "is1", "b": "is2"}
	got := mergeParams(base, params.RawBundle{"b": "is3", "c": "is4"})

	want := params.RawBundle{"a": "is1", "b": "is3", "c": "is4"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if base["b"] != "is2" {
		t.Error("base was modified")
	}
}

func TestFormatParamArgs(t *testing.T) {
	got := formatParamArgs(params.RawBundle{"names": "sla0newelement0b", "iterations": "is3"})
	want := "-e iterations is3 -e names sla0newelement0b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeCommand(t *testing.T) {
	out, err := runApp(t, "decode",
		"-e", "iterations=is3",
		"-e", "names=sla0newelement0b",
		"-e", "title=ssbench%20mark,v2",
		"-e", "enabled=bstrue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	want := map[string]interface{}{
		"iterations": 3,
		"names":      []interface{}{"a", "b"},
		"title":      "bench mark,v2",
		"enabled":    true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommand_InvalidValue(t *testing.T) {
	_, err := runApp(t, "decode", "-e", "count=isabc")
	if !errors.Is(err, core.ErrDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestEncodeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("iterations: 3\nnames: [a, b]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "encode", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "-e iterations is3 -e names sla0newelement0b" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestEncodeCommand_FromConfig(t *testing.T) {
	cfg := writeConfigFile(t, "params:\n  title: bench mark\n")

	out, err := runApp(t, "--config", cfg, "encode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out); got != "-e title ssbench%20mark" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestEncodeCommand_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	if err := os.WriteFile(path, []byte("names: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "encode", path); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	path := writeConfigFile(t, "device: from-file\ndriver: uiautomator2\n")

	var got *config.Config
	app := &cli.App{
		Name:  "test-app",
		Flags: GlobalFlags,
		Commands: []*cli.Command{{
			Name: "show",
			Action: func(c *cli.Context) error {
				var err error
				got, err = loadConfig(c)
				return err
			},
		}},
	}

	if err := app.Run([]string{"test-app", "--config", path, "--device", "emulator-5554", "--driver", "mock", "show"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Device != "emulator-5554" || got.Driver != config.DriverMock {
		t.Errorf("overrides not applied: device=%q driver=%q", got.Device, got.Driver)
	}
}

func TestLoadConfig_InvalidDriverFlag(t *testing.T) {
	path := writeConfigFile(t, "device: x\n")
	_, err := runApp(t, "--config", path, "--driver", "appium", "swipe", "--direction", "up")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

// decodeResults parses the YAML results printed by run.
func decodeResults(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var results []map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	return results
}

func TestRunCommand_Mock(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	workdir := t.TempDir()

	out, err := runApp(t, "--config", cfg, "run",
		"--workload", "basic",
		"--workdir", workdir,
		"-e", "swipe=ssright",
		"-e", "screenshot=ssdone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := decodeResults(t, out)
	if len(results) != len(workload.Phases) {
		t.Fatalf("expected %d results, got %d", len(workload.Phases), len(results))
	}
	runID := results[0]["runId"]
	for i, res := range results {
		if res["phase"] != string(workload.Phases[i]) || res["status"] != "passed" {
			t.Errorf("result %d = %v", i, res)
		}
		if res["runId"] != runID {
			t.Errorf("result %d run ID %v, want %v", i, res["runId"], runID)
		}
	}
	if _, err := os.Stat(filepath.Join(workdir, "done.png")); err != nil {
		t.Errorf("expected screenshot: %v", err)
	}
}

func TestRunCommand_FailingPhase(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\ntimeouts:\n  waitMs: 20\n")
	workdir := t.TempDir()

	out, err := runApp(t, "--config", cfg, "run",
		"--workload", "basic",
		"--workdir", workdir,
		"-e", "clickId=ssmissing")
	if err == nil {
		t.Fatal("expected error for failing workload")
	}

	results := decodeResults(t, out)
	var got []string
	for _, res := range results {
		got = append(got, fmt.Sprintf("%s=%s", res["phase"], res["status"]))
	}
	want := []string{"setup=passed", "runWorkload=failed", "extractResults=skipped", "teardown=passed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
	if results[1]["attachments"] == nil {
		t.Error("expected failure screenshot attachment")
	}
}

func TestRunCommand_SinglePhase(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")

	out, err := runApp(t, "--config", cfg, "run", "--workload", "pcmark", "--phase", "setup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results := decodeResults(t, out)
	if len(results) != 1 || results[0]["phase"] != "setup" {
		t.Errorf("unexpected results %v", results)
	}
}

func TestRunCommand_UnknownWorkload(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "run", "--workload", "nope")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestRunCommand_BadPhase(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "run", "--workload", "basic", "--phase", "warmup")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestRunCommand_NoWorkload(t *testing.T) {
	if _, err := runApp(t, "run"); err == nil {
		t.Error("expected error when --workload is missing")
	}
}

func TestInstrumentCommand_DryRun(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\nparams:\n  iterations: 3\n")

	out, err := runApp(t, "--config", cfg, "instrument",
		"--dry-run",
		"--package", "com.arm.wa.uiauto.pcmark",
		"--stage", "setup,teardown",
		"--workdir", "/data/local/tmp/wa",
		"-e", "names=sla0newelement0b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"am instrument -w -r -e iterations is3 -e names sla0newelement0b -e workdir ss%2Fdata%2Flocal%2Ftmp%2Fwa" +
			" -e class com.arm.wa.uiauto.pcmark.UiAutomation#setup com.arm.wa.uiauto.pcmark/android.support.test.runner.AndroidJUnitRunner",
		"am instrument -w -r -e iterations is3 -e names sla0newelement0b -e workdir ss%2Fdata%2Flocal%2Ftmp%2Fwa" +
			" -e class com.arm.wa.uiauto.pcmark.UiAutomation#teardown com.arm.wa.uiauto.pcmark/android.support.test.runner.AndroidJUnitRunner",
	}
	got := strings.Split(strings.TrimSpace(out), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestInstrumentCommand_ConfigOverrides(t *testing.T) {
	cfg := writeConfigFile(t, `driver: mock
instrumentation:
  package: com.example.bench
  class: BenchAutomation
  runner: androidx.test.runner.AndroidJUnitRunner
`)

	out, err := runApp(t, "--config", cfg, "instrument", "--dry-run", "--stage", "runWorkload")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "am instrument -w -r -e class com.example.bench.BenchAutomation#runWorkload com.example.bench/androidx.test.runner.AndroidJUnitRunner"
	if got := strings.TrimSpace(out); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInstrumentCommand_DryRunDeploy(t *testing.T) {
	apk := filepath.Join(t.TempDir(), "bench.apk")
	if err := os.WriteFile(apk, []byte("apk"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := writeConfigFile(t, "driver: mock\n")

	out, err := runApp(t, "--config", cfg, "instrument", "--dry-run",
		"--package", "com.example.bench", "--apk", apk, "--stage", "setup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "deploy "+apk+" as com.example.bench" {
		t.Errorf("output = %q", lines)
	}
}

func TestInstrumentCommand_MissingAPK(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "instrument", "--dry-run",
		"--package", "com.example.bench", "--apk", filepath.Join(t.TempDir(), "none.apk"))
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

// deployADBScript stands in for adb on PATH. The package counts as installed
// while the state file exists.
const deployADBScript = `#!/bin/sh
echo "$*" >> "{{dir}}/calls.log"
case "$*" in
  devices) printf 'List of devices attached\nemulator-5554\tdevice\n' ;;
  *get-state*) echo device ;;
  *"uninstall "*) rm -f "{{dir}}/installed" ;;
  *"install "*) touch "{{dir}}/installed" ;;
  *"pm list packages"*) [ -f "{{dir}}/installed" ] && echo package:com.example.bench ;;
  *"am instrument"*) echo "OK (1 test)" ;;
esac
exit 0
`

func TestInstrumentCommand_DeployReinstalls(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake adb is a shell script")
	}
	dir := t.TempDir()
	script := strings.ReplaceAll(deployADBScript, "{{dir}}", dir)
	if err := os.WriteFile(filepath.Join(dir, "adb"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "installed"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	apk := filepath.Join(dir, "bench.apk")
	if err := os.WriteFile(apk, []byte("apk"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	cfg := writeConfigFile(t, "driver: uiautomator2\n")

	if _, err := runApp(t, "--config", cfg, "instrument",
		"--package", "com.example.bench", "--apk", apk, "--stage", "teardown"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "calls.log"))
	if err != nil {
		t.Fatal(err)
	}
	var deploy []string
	for _, call := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if strings.Contains(call, "install") || strings.Contains(call, "am instrument") {
			deploy = append(deploy, strings.Fields(call)[2])
		}
	}
	want := []string{"uninstall", "install", "shell"}
	if diff := cmp.Diff(want, deploy); diff != "" {
		t.Errorf("adb calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInstrumentCommand_MissingPackage(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "instrument", "--dry-run")
	if !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("expected missing required, got %v", err)
	}
}

func TestInstrumentCommand_MockNeedsDryRun(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "instrument", "--package", "com.example.bench")
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestSwipeCommand_Mock(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")

	out, err := runApp(t, "--config", cfg, "swipe", "--direction", "Left", "--steps", "20")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "swiped left\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestSwipeCommand_InvalidDirection(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\n")
	_, err := runApp(t, "--config", cfg, "swipe", "--direction", "diagonal")
	if !errors.Is(err, core.ErrInvalidDirection) {
		t.Errorf("expected invalid direction, got %v", err)
	}
}

func TestWaitLogCommand_MockTimeout(t *testing.T) {
	cfg := writeConfigFile(t, "driver: mock\ntimeouts:\n  logPollMs: 10\n")

	_, err := runApp(t, "--config", cfg, "wait-log", "--text", "never", "--timeout", "50ms")
	if !errors.Is(err, core.ErrTimeout) {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestWaitLogCommand_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "device.log")
	if err := os.WriteFile(logPath, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := writeConfigFile(t, fmt.Sprintf(`driver: uiautomator2
timeouts:
  logPollMs: 20
logcat:
  file: %s
  poll: true
`, logPath))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		defer f.Close()
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Fprintln(f, "I/Bench: Benchmark done")
			}
		}
	}()
	defer wg.Wait()
	defer close(done)

	out, err := runApp(t, "--config", cfg, "wait-log", "--text", "Benchmark done", "--timeout", "10s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, `found "Benchmark done" after`) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestWaitLogCommand_NoText(t *testing.T) {
	if _, err := runApp(t, "wait-log"); err == nil {
		t.Error("expected error when --text is missing")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{0, "0ms"},
		{500, "500ms"},
		{999, "999ms"},
		{1000, "1.0s"},
		{1500, "1.5s"},
		{59999, "60.0s"},
		{60000, "1m 0s"},
		{90000, "1m 30s"},
		{125000, "2m 5s"},
	}

	for _, tc := range tests {
		result := formatDuration(tc.ms)
		if result != tc.expected {
			t.Errorf("formatDuration(%d) = %q, expected %q", tc.ms, result, tc.expected)
		}
	}
}

func TestColor_Enabled(t *testing.T) {
	oldEnabled := colorsEnabled
	defer func() { colorsEnabled = oldEnabled }()

	colorsEnabled = true
	if result := color(colorGreen); result != colorGreen {
		t.Errorf("color(colorGreen) with colors enabled = %q, want %q", result, colorGreen)
	}
}

func TestColor_Disabled(t *testing.T) {
	oldEnabled := colorsEnabled
	defer func() { colorsEnabled = oldEnabled }()

	colorsEnabled = false
	if result := color(colorGreen); result != "" {
		t.Errorf("color(colorGreen) with colors disabled = %q, want empty string", result)
	}
}

func TestSetupMessages(t *testing.T) {
	oldProgress, oldEnabled := progress, colorsEnabled
	defer func() { progress, colorsEnabled = oldProgress, oldEnabled }()
	colorsEnabled = false

	var buf bytes.Buffer
	progress = &buf
	printSetupStep("Connecting...")
	printSetupSuccess("Connected")
	printWarning("server may still be running")

	want := "  ⏳ Connecting...\n  ✓ Connected\n  ⚠ server may still be running\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestOnPhaseEnd(t *testing.T) {
	oldProgress, oldEnabled := progress, colorsEnabled
	defer func() { progress, colorsEnabled = oldProgress, oldEnabled }()
	colorsEnabled = false

	tests := []struct {
		name   string
		result workload.PhaseResult
		want   string
	}{
		{"passed", workload.PhaseResult{Phase: workload.PhaseSetup, Status: core.StatusPassed, Duration: 1500}, "✓ setup (1.5s)"},
		{"slow", workload.PhaseResult{Phase: workload.PhaseRunWorkload, Status: core.StatusPassed, Duration: 90000}, "⚠ runWorkload (1m 30s)"},
		{"skipped", workload.PhaseResult{Phase: workload.PhaseExtractResults, Status: core.StatusSkipped}, "- extractResults (skipped)"},
		{"failed", workload.PhaseResult{Phase: workload.PhaseRunWorkload, Status: core.StatusFailed, Duration: 20, Error: "boom"}, "╰─ boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			progress = &buf
			onPhaseEnd(tt.result)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	oldProgress, oldEnabled := progress, colorsEnabled
	defer func() { progress, colorsEnabled = oldProgress, oldEnabled }()
	colorsEnabled = false

	var buf bytes.Buffer
	progress = &buf
	printSummary([]workload.PhaseResult{
		{Workload: "basic", Phase: workload.PhaseSetup, Status: core.StatusPassed, Duration: 100},
		{Workload: "basic", Phase: workload.PhaseRunWorkload, Status: core.StatusFailed, Duration: 200},
		{Workload: "basic", Phase: workload.PhaseExtractResults, Status: core.StatusSkipped},
		{Workload: "basic", Phase: workload.PhaseTeardown, Status: core.StatusPassed, Duration: 50},
	})

	out := buf.String()
	for _, want := range []string{"✓ PASS", "✗ FAIL", "- SKIP", "2/3", "350ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestIsSocketInUse_NonExistentSocket(t *testing.T) {
	if isSocketInUse(filepath.Join(t.TempDir(), "missing.sock")) {
		t.Error("expected non-existent socket to not be in use")
	}
}

func TestIsSocketInUse_EmptyPath(t *testing.T) {
	if isSocketInUse("") {
		t.Error("expected empty socket path to not be in use")
	}
}

func TestIsSocketInUse_ActiveSocket(t *testing.T) {
	socketPath := "/tmp/uiauto-test-active-" + time.Now().Format("20060102150405.000") + ".sock"
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create socket listener: %v", err)
	}
	defer ln.Close()
	defer os.Remove(socketPath)

	if !isSocketInUse(socketPath) {
		t.Error("expected active socket to be in use")
	}
}

func TestIsSocketInUse_StaleSocket(t *testing.T) {
	socketPath := "/tmp/uiauto-test-stale-" + time.Now().Format("20060102150405.000") + ".sock"
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to create socket: %v", err)
	}
	// Keep the file behind after closing so it is stale.
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	ln.Close()

	if isSocketInUse(socketPath) {
		t.Error("expected stale socket to not be in use")
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Error("expected stale socket file to be removed")
		os.Remove(socketPath)
	}
}
