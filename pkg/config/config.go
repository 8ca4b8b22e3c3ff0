// Package config handles configuration for uiauto.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/params"
)

// Supported drivers.
const (
	DriverUIAutomator2 = "uiautomator2"
	DriverMock         = "mock"
)

// Config represents the workspace configuration (uiauto.yaml).
type Config struct {
	// Device settings
	Device  string `yaml:"device"`  // adb serial; empty = first connected device
	Driver  string `yaml:"driver"`  // uiautomator2 | mock
	APKsDir string `yaml:"apksDir"` // UIAutomator2 server APKs; empty = <home>/drivers/android

	// Run settings
	Workdir   string               `yaml:"workdir"` // screenshot directory
	LogFile   string               `yaml:"logFile"`
	Timeouts  Timeouts             `yaml:"timeouts"`
	Logcat    Logcat               `yaml:"logcat"`
	Artifacts *core.ArtifactConfig `yaml:"artifacts"`

	Instrumentation Instrumentation `yaml:"instrumentation"`

	// Workload parameters, encoded before they reach the workload.
	Params map[string]interface{} `yaml:"params"`
}

// Timeouts overrides the automation defaults. Zero keeps the default.
type Timeouts struct {
	WaitMs      int `yaml:"waitMs"`
	TextWaitSec int `yaml:"textWaitSec"`
	LogPollMs   int `yaml:"logPollMs"`
}

// Wait returns the element wait timeout.
func (t Timeouts) Wait() time.Duration { return time.Duration(t.WaitMs) * time.Millisecond }

// TextWait returns the WaitText/WaitObject timeout.
func (t Timeouts) TextWait() time.Duration { return time.Duration(t.TextWaitSec) * time.Second }

// LogPoll returns the log poll interval.
func (t Timeouts) LogPoll() time.Duration { return time.Duration(t.LogPollMs) * time.Millisecond }

// Logcat selects the device log source.
type Logcat struct {
	File string   `yaml:"file"` // follow this file instead of running adb logcat
	Poll bool     `yaml:"poll"` // poll the file instead of using inotify
	Args []string `yaml:"args"` // extra adb logcat arguments
}

// Instrumentation configures host-side `am instrument` runs.
type Instrumentation struct {
	Package    string `yaml:"package"`
	APK        string `yaml:"apk"` // installed before the first stage when set
	Class      string `yaml:"class"`
	Runner     string `yaml:"runner"`
	TimeoutSec int    `yaml:"timeoutSec"`
}

// Timeout returns the per-stage timeout.
func (i Instrumentation) Timeout() time.Duration {
	return time.Duration(i.TimeoutSec) * time.Second
}

// ArtifactConfig returns the configured artifact policy or the default.
func (c *Config) ArtifactConfig() core.ArtifactConfig {
	if c.Artifacts == nil {
		return core.DefaultArtifactConfig()
	}
	return *c.Artifacts
}

// RawParams encodes Params into their wire form.
func (c *Config) RawParams() (params.RawBundle, error) {
	if len(c.Params) == 0 {
		return params.RawBundle{}, nil
	}
	raw, err := params.EncodeBundle(c.Params)
	if err != nil {
		return nil, core.ErrInvalidConfig.WithMessage("params").WithCause(err)
	}
	return raw, nil
}

// Validate checks values the YAML types cannot.
func (c *Config) Validate() error {
	switch c.Driver {
	case "", DriverUIAutomator2, DriverMock:
	default:
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown driver %q (want %s or %s)", c.Driver, DriverUIAutomator2, DriverMock))
	}
	if c.Timeouts.WaitMs < 0 || c.Timeouts.TextWaitSec < 0 || c.Timeouts.LogPollMs < 0 || c.Instrumentation.TimeoutSec < 0 {
		return core.ErrInvalidConfig.WithMessage("timeouts must not be negative")
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithMessage(path).WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for uiauto.yaml or uiauto.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"uiauto.yaml", "uiauto.yml"} {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return empty config
	return &Config{}, nil
}
