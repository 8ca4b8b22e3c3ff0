package workload

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/params"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
)

// Instrumentation defaults.
const (
	DefaultClass           = "UiAutomation"
	DefaultRunner          = "android.support.test.runner.AndroidJUnitRunner"
	DefaultInstrumentTime  = 600 * time.Second
	DefaultInstrumentPause = 2 * time.Second
)

// failureMarker in `am instrument -r` output means the stage failed.
const failureMarker = "FAILURE"

// Shell runs a command on the device.
// Implemented by device.AndroidDevice.
type Shell interface {
	ShellContext(ctx context.Context, cmd string) (string, error)
}

// Installer manages packages on the device.
// Implemented by device.AndroidDevice.
type Installer interface {
	IsInstalled(pkg string) bool
	Install(apkPath string) error
	Uninstall(pkg string) error
}

// InstrumentationError reports a stage whose instrumentation output
// contains a failure.
type InstrumentationError struct {
	Phase  Phase
	Output string
}

func (e *InstrumentationError) Error() string {
	return fmt.Sprintf("instrumentation %s failed:\n%s", e.Phase, strings.TrimSpace(e.Output))
}

// Instrumentation runs a workload packaged as an on-device UiAutomator test
// APK, one `am instrument` invocation per phase.
type Instrumentation struct {
	Package string // APK package, e.g. com.arm.wa.uiauto.pcmark
	Class   string // default UiAutomation
	Runner  string // default DefaultRunner
	Workdir string // passed to every stage as the workdir parameter

	Params  map[string]interface{}
	Timeout time.Duration // per stage; default DefaultInstrumentTime
	Pause   time.Duration // after each stage; default DefaultInstrumentPause

	shell Shell
	sleep func(time.Duration)
}

// NewInstrumentation creates an Instrumentation for pkg run through shell.
func NewInstrumentation(shell Shell, pkg string) *Instrumentation {
	return &Instrumentation{
		Package: pkg,
		Class:   DefaultClass,
		Runner:  DefaultRunner,
		Params:  map[string]interface{}{},
		Timeout: DefaultInstrumentTime,
		Pause:   DefaultInstrumentPause,
		shell:   shell,
		sleep:   time.Sleep,
	}
}

// Set adds a parameter passed to every stage.
func (in *Instrumentation) Set(name string, value interface{}) {
	if in.Params == nil {
		in.Params = map[string]interface{}{}
	}
	in.Params[name] = value
}

// Deploy installs apk as the instrumentation package, uninstalling any
// copy already on the device first.
func (in *Instrumentation) Deploy(dev Installer, apk string) error {
	if in.Package == "" {
		return core.ErrMissingRequired.WithMessage("instrumentation package not set")
	}
	if dev.IsInstalled(in.Package) {
		logger.Info("uninstalling %s", in.Package)
		if err := dev.Uninstall(in.Package); err != nil {
			return fmt.Errorf("uninstall %s: %w", in.Package, err)
		}
	}
	logger.Info("installing %s", apk)
	if err := dev.Install(apk); err != nil {
		return fmt.Errorf("install %s: %w", apk, err)
	}
	if !dev.IsInstalled(in.Package) {
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("%s does not provide package %s", apk, in.Package))
	}
	return nil
}

// Command builds the `am instrument` command line for p. Parameters are
// emitted in key order.
func (in *Instrumentation) Command(p Phase) (string, error) {
	if in.Package == "" {
		return "", core.ErrMissingRequired.WithMessage("instrumentation package not set")
	}
	values := make(map[string]interface{}, len(in.Params)+1)
	for k, v := range in.Params {
		if err := checkParamName(k); err != nil {
			return "", err
		}
		values[k] = v
	}
	if in.Workdir != "" {
		values[uiauto.WorkdirParam] = in.Workdir
	}
	raw, err := params.EncodeBundle(values)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("am instrument -w -r")
	for _, k := range keys {
		fmt.Fprintf(&b, " -e %s %s", k, raw[k])
	}
	fmt.Fprintf(&b, " -e class %s.%s#%s %s/%s",
		in.Package, orString(in.Class, DefaultClass), p,
		in.Package, orString(in.Runner, DefaultRunner))
	return b.String(), nil
}

// Commands builds the command line for every phase.
func (in *Instrumentation) Commands() (map[Phase]string, error) {
	out := make(map[Phase]string, len(Phases))
	for _, p := range Phases {
		cmd, err := in.Command(p)
		if err != nil {
			return nil, err
		}
		out[p] = cmd
	}
	return out, nil
}

// Execute runs phase p on the device and returns its output. Setup first
// kills any running uiautomator process. Every stage is followed by a pause.
func (in *Instrumentation) Execute(ctx context.Context, p Phase) (string, error) {
	cmd, err := in.Command(p)
	if err != nil {
		return "", err
	}

	if p == PhaseSetup {
		if _, err := in.shell.ShellContext(ctx, "killall uiautomator"); err != nil {
			logger.Debug("killall uiautomator: %v", err)
		}
	}

	timeout := in.Timeout
	if timeout <= 0 {
		timeout = DefaultInstrumentTime
	}
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Debug("instrument %s: %s", p, cmd)
	out, err := in.shell.ShellContext(stageCtx, cmd)
	if err != nil {
		if stageCtx.Err() == context.DeadlineExceeded {
			return out, core.ErrTimeout.WithMessage(fmt.Sprintf("instrumentation %s exceeded %v", p, timeout)).WithCause(err)
		}
		return out, fmt.Errorf("instrumentation %s: %w", p, err)
	}
	if strings.Contains(out, failureMarker) {
		return out, &InstrumentationError{Phase: p, Output: out}
	}
	logger.Debug("instrument %s output:\n%s", p, out)

	if in.Pause > 0 {
		in.sleep(in.Pause)
	}
	return out, nil
}

// checkParamName rejects names that would break the -e arguments: "class"
// is set per phase and whitespace splits the shell word.
func checkParamName(name string) error {
	switch {
	case name == "":
		return core.ErrInvalidConfig.WithMessage("empty parameter name")
	case name == "class":
		return core.ErrInvalidConfig.WithMessage(`parameter name "class" is reserved`)
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("parameter name %q contains whitespace", name))
	}
	return nil
}

func orString(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
