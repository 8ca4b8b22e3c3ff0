// Package uiauto is the automation base used by workload scripts: it finds
// and waits for UI elements, clicks, swipes, takes screenshots and watches
// the device log.
//
// All operations block the calling goroutine and are bounded by a timeout.
// An Automation is not safe for concurrent use.
package uiauto

import (
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/params"
)

// Default timeouts. The long text wait is what existing workload scripts
// expect from WaitText and WaitObject; criterion lookups use the short one.
const (
	DefaultWaitTimeout     = 4 * time.Second
	DefaultTextWaitTimeout = 600 * time.Second
	DefaultLogPollInterval = 2 * time.Second
)

// WorkdirParam is the parameter naming the directory screenshots are written to.
const WorkdirParam = "workdir"

// Config configures an Automation.
type Config struct {
	Device    core.Device
	LogSource core.LogSource // optional; required by WaitForLogText and ClearLog
	Params    params.Bundle

	// Workdir overrides the workdir parameter.
	Workdir string

	// Zero values select the package defaults.
	WaitTimeout     time.Duration
	TextWaitTimeout time.Duration
	LogPollInterval time.Duration
}

// Automation drives one device on behalf of a workload.
type Automation struct {
	device  core.Device
	logs    core.LogSource
	params  params.Bundle
	workdir string

	workdirErr error // workdir parameter present but not a string

	waitTimeout     time.Duration
	textWaitTimeout time.Duration
	logPollInterval time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

// New creates an Automation from cfg.
func New(cfg Config) *Automation {
	a := &Automation{
		device:          cfg.Device,
		logs:            cfg.LogSource,
		params:          cfg.Params,
		workdir:         cfg.Workdir,
		waitTimeout:     orDefault(cfg.WaitTimeout, DefaultWaitTimeout),
		textWaitTimeout: orDefault(cfg.TextWaitTimeout, DefaultTextWaitTimeout),
		logPollInterval: orDefault(cfg.LogPollInterval, DefaultLogPollInterval),
		sleep:           time.Sleep,
		now:             time.Now,
	}
	if a.params == nil {
		a.params = params.Bundle{}
	}
	if a.workdir == "" {
		a.workdir, a.workdirErr = a.params.StringOr(WorkdirParam, "")
	}
	return a
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Device returns the underlying device.
func (a *Automation) Device() core.Device {
	return a.device
}

// Params returns the decoded parameters of the current run.
func (a *Automation) Params() params.Bundle {
	return a.params
}

// Workdir returns the directory screenshots are written to.
func (a *Automation) Workdir() string {
	return a.workdir
}

// Sleep pauses for the given number of seconds.
func (a *Automation) Sleep(seconds int) {
	a.sleep(time.Duration(seconds) * time.Second)
}
