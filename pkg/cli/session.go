package cli

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiauto/pkg/config"
	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/device"
	"github.com/devicelab-dev/uiauto/pkg/driver/mock"
	uia2driver "github.com/devicelab-dev/uiauto/pkg/driver/uiautomator2"
	"github.com/devicelab-dev/uiauto/pkg/logcat"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/params"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
	"github.com/devicelab-dev/uiauto/pkg/uiautomator2"
)

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v := c.String("device"); v != "" {
		cfg.Device = v
	}
	if v := c.String("driver"); v != "" {
		cfg.Driver = v
	}
	if v := c.String("log-file"); v != "" {
		cfg.LogFile = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := setupLogging(cfg, c.Bool("verbose")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging opens the run log. Verbose runs without a log file log to stderr.
func setupLogging(cfg *config.Config, verbose bool) error {
	logger.SetVerbose(verbose)
	switch {
	case cfg.LogFile != "":
		if err := logger.Init(cfg.LogFile); err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	case verbose:
		logger.InitWriter(os.Stderr)
	}
	return nil
}

// session is an open connection to the device under automation.
type session struct {
	cfg     *config.Config
	device  core.Device
	android *device.AndroidDevice // nil for the mock driver
	logs    core.LogSource
	cleanup func()
}

// openSession connects to the configured driver. Callers must call close.
func openSession(cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg, cleanup: func() {}}

	switch cfg.Driver {
	case config.DriverMock:
		s.device = mock.New(mock.Config{})
		s.logs = logSourceFor(cfg, nil)
	default:
		dev, err := connectAndroid(cfg)
		if err != nil {
			return nil, err
		}
		drv, cleanup, err := createUIAutomator2Driver(cfg, dev)
		if err != nil {
			return nil, err
		}
		s.android = dev
		s.device = drv
		s.cleanup = cleanup
		s.logs = logSourceFor(cfg, dev)
	}
	return s, nil
}

// logSourceFor picks the device log source: the configured log file, adb
// logcat on dev, or an empty script for the mock driver.
func logSourceFor(cfg *config.Config, dev *device.AndroidDevice) core.LogSource {
	switch {
	case cfg.Logcat.File != "":
		return &logcat.FileSource{Path: cfg.Logcat.File, Poll: cfg.Logcat.Poll}
	case dev != nil:
		return logcat.NewADBSource(dev, cfg.Logcat.Args...)
	default:
		return &mock.LogSource{}
	}
}

func (s *session) close() {
	s.cleanup()
}

// automation creates an Automation for one workload run.
func (s *session) automation(p params.Bundle) *uiauto.Automation {
	return uiauto.New(uiauto.Config{
		Device:          s.device,
		LogSource:       s.logs,
		Params:          p,
		Workdir:         s.cfg.Workdir,
		WaitTimeout:     s.cfg.Timeouts.Wait(),
		TextWaitTimeout: s.cfg.Timeouts.TextWait(),
		LogPollInterval: s.cfg.Timeouts.LogPoll(),
	})
}

// connectAndroid connects to the configured device over adb.
func connectAndroid(cfg *config.Config) (*device.AndroidDevice, error) {
	if cfg.Device != "" {
		printSetupStep(fmt.Sprintf("Connecting to device %s...", cfg.Device))
		logger.Info("Connecting to Android device: %s", cfg.Device)
	} else {
		printSetupStep("Connecting to device...")
		logger.Info("Auto-detecting Android device...")
	}
	dev, err := device.New(cfg.Device)
	if err != nil {
		logger.Error("Failed to connect to device: %v", err)
		return nil, fmt.Errorf("connect to device: %w", err)
	}

	info, err := dev.Info()
	if err != nil {
		logger.Error("Failed to get device info: %v", err)
		return nil, fmt.Errorf("get device info: %w", err)
	}
	logger.Info("Device info: %s %s, SDK %s, Serial %s, Emulator: %v",
		info.Brand, info.Model, info.SDK, info.Serial, info.IsEmulator)
	printSetupSuccess(fmt.Sprintf("Connected to %s %s (SDK %s)", info.Brand, info.Model, info.SDK))
	return dev, nil
}

// createUIAutomator2Driver starts the UIAutomator2 server and opens a session on it.
func createUIAutomator2Driver(cfg *config.Config, dev *device.AndroidDevice) (core.Device, func(), error) {
	// Fail fast before touching the device.
	if socketPath := dev.DefaultSocketPath(); isSocketInUse(socketPath) {
		return nil, nil, fmt.Errorf("device %s is already in use\n"+
			"Another uiauto instance may be using this device.\n"+
			"Socket: %s\n"+
			"Hint: Wait for it to finish or use a different device", dev.Serial(), socketPath)
	}

	if !dev.IsInstalled(device.UIAutomator2Server) || !dev.IsInstalled(device.UIAutomator2Test) {
		printSetupStep("Installing UIAutomator2 APKs...")
		apksDir := cfg.APKsDir
		if apksDir == "" {
			apksDir = config.GetDriversDir("android")
		}
		if err := dev.InstallUIAutomator2(apksDir); err != nil {
			return nil, nil, fmt.Errorf("install UIAutomator2: %w", err)
		}
		printSetupSuccess("UIAutomator2 installed")
	}

	printSetupStep("Starting UIAutomator2 server...")
	logger.Info("Starting UIAutomator2 server on device %s", dev.Serial())
	if err := dev.StartUIAutomator2(device.DefaultUIAutomator2Config()); err != nil {
		logger.Error("Failed to start UIAutomator2: %v", err)
		return nil, nil, fmt.Errorf("start UIAutomator2: %w", err)
	}
	if !dev.IsUIAutomator2Running() {
		dev.StopUIAutomator2()
		return nil, nil, core.ErrServerUnreachable.WithMessage("UIAutomator2 server not responding after start")
	}
	printSetupSuccess("UIAutomator2 server started")
	logger.Info("UIAutomator2 endpoint: socket=%q port=%d", dev.SocketPath(), dev.LocalPort())

	client := dev.UIAutomator2Client()
	if client == nil {
		dev.StopUIAutomator2()
		return nil, nil, core.ErrServerUnreachable.WithMessage("UIAutomator2 server has no forwarded endpoint")
	}

	printSetupStep("Creating session...")
	if err := client.CreateSession(uiautomator2.Capabilities{PlatformName: "Android", DeviceName: dev.Serial()}); err != nil {
		logger.Error("Failed to create session: %v", err)
		dev.StopUIAutomator2()
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("Session created successfully: %s", client.SessionID())
	printSetupSuccess("Session created")

	if info, err := client.GetDeviceInfo(); err == nil {
		logger.Info("Server device info: %s %s, API %s, display %s @ %ddpi",
			info.Manufacturer, info.Model, info.APIVersion, info.RealDisplaySize, info.DisplayDensity)
	} else {
		logger.Debug("device info: %v", err)
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close session: %v", err)
		}
		if err := dev.StopUIAutomator2(); err != nil {
			logger.Warn("stop UIAutomator2: %v", err)
			printWarning("UIAutomator2 server may still be running on " + dev.Serial())
		}
	}
	return uia2driver.New(client), cleanup, nil
}

// isSocketInUse checks if a Unix socket is in use by attempting to connect to it.
// Used to detect if another uiauto instance is using the same Android device.
func isSocketInUse(socketPath string) bool {
	if socketPath == "" {
		return false
	}

	if _, err := os.Stat(socketPath); os.IsNotExist(err) {
		return false
	}

	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		// Stale socket file; remove it so the server can bind.
		os.Remove(socketPath)
		return false
	}
	conn.Close()
	return true
}
