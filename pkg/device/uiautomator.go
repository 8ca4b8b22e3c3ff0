package device

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/uiautomator2"
)

// UIAutomator2 package names
const (
	UIAutomator2Server = "io.appium.uiautomator2.server"
	UIAutomator2Test   = "io.appium.uiautomator2.server.test"
)

// DefaultDevicePort is the port the server listens on inside the device.
const DefaultDevicePort = 6790

// Host ports tried when a Unix socket cannot be forwarded.
const (
	portRangeStart = 6001
	portRangeEnd   = 7001
)

const readyPollInterval = 500 * time.Millisecond

// server APKs and the file patterns they ship under.
var uiautomator2APKs = []struct {
	pkg     string
	pattern string
}{
	{UIAutomator2Server, "appium-uiautomator2-server-v*.apk"},
	{UIAutomator2Test, "appium-uiautomator2-server-debug-androidTest.apk"},
}

// UIAutomator2Config holds configuration for the UIAutomator2 server.
type UIAutomator2Config struct {
	SocketPath string        // host Unix socket; default DefaultSocketPath
	LocalPort  int           // host TCP port on Windows; 0 picks a free one
	DevicePort int           // default DefaultDevicePort
	Timeout    time.Duration // startup timeout; default 30s
}

// DefaultUIAutomator2Config returns default configuration.
func DefaultUIAutomator2Config() UIAutomator2Config {
	return UIAutomator2Config{
		DevicePort: DefaultDevicePort,
		Timeout:    30 * time.Second,
	}
}

// StartUIAutomator2 restarts the UIAutomator2 server and waits until it
// answers through the forwarded endpoint.
func (d *AndroidDevice) StartUIAutomator2(cfg UIAutomator2Config) error {
	for _, apk := range uiautomator2APKs {
		if !d.IsInstalled(apk.pkg) {
			return core.ErrMissingRequired.WithMessage("UIAutomator2 package not installed: " + apk.pkg)
		}
	}
	if cfg.DevicePort == 0 {
		cfg.DevicePort = DefaultDevicePort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultUIAutomator2Config().Timeout
	}

	d.StopUIAutomator2()
	if err := d.forwardServer(cfg); err != nil {
		return err
	}

	// nohup detaches the runner from the adb shell session.
	cmd := fmt.Sprintf("nohup am instrument -w -e disableAnalytics true %s/androidx.test.runner.AndroidJUnitRunner > /dev/null 2>&1 &",
		UIAutomator2Test)
	if _, err := d.Shell(cmd); err != nil {
		return fmt.Errorf("start UIAutomator2 instrumentation: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	// forwardServer succeeded, so the client is non-nil.
	if err := waitReady(ctx, d.UIAutomator2Client()); err != nil {
		d.StopUIAutomator2()
		return err
	}

	logger.Info("UIAutomator2 server ready on %s", d.serial)
	return nil
}

// forwardServer exposes the device port on the host: a Unix socket where the
// platform has them, a free TCP port otherwise.
func (d *AndroidDevice) forwardServer(cfg UIAutomator2Config) error {
	if runtime.GOOS != "windows" {
		path := cfg.SocketPath
		if path == "" {
			path = d.DefaultSocketPath()
		}
		os.Remove(path)
		if err := d.ForwardSocket(path, cfg.DevicePort); err != nil {
			return fmt.Errorf("forward %s: %w", path, err)
		}
		d.socketPath = path
		return nil
	}

	port := cfg.LocalPort
	if port == 0 {
		var err error
		if port, err = findFreePort(portRangeStart, portRangeEnd); err != nil {
			return err
		}
	}
	if err := d.Forward(port, cfg.DevicePort); err != nil {
		return fmt.Errorf("forward tcp:%d: %w", port, err)
	}
	d.localPort = port
	return nil
}

// UIAutomator2Client returns a client for the forwarded server, or nil if the
// server has not been started.
func (d *AndroidDevice) UIAutomator2Client() *uiautomator2.Client {
	switch {
	case d.socketPath != "":
		return uiautomator2.NewClient(d.socketPath)
	case d.localPort != 0:
		return uiautomator2.NewClientTCP(d.localPort)
	default:
		return nil
	}
}

// StatusChecker reports whether a server is ready. Implemented by
// uiautomator2.Client.
type StatusChecker interface {
	Status() (bool, error)
}

// waitReady polls c until it reports ready or ctx ends.
func waitReady(ctx context.Context, c StatusChecker) error {
	if c == nil {
		return core.ErrServerUnreachable.WithMessage("UIAutomator2 server is not forwarded")
	}
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		ready, err := c.Status()
		if err == nil && ready {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			e := core.ErrServerUnreachable.WithMessage(fmt.Sprintf("UIAutomator2 server not ready: %v", ctx.Err()))
			if lastErr != nil {
				e = e.WithCause(lastErr)
			}
			return e
		case <-ticker.C:
		}
	}
}

// IsUIAutomator2Running checks if the UIAutomator2 server is responding.
func (d *AndroidDevice) IsUIAutomator2Running() bool {
	c := d.UIAutomator2Client()
	if c == nil {
		return false
	}
	ready, err := c.Status()
	return err == nil && ready
}

// StopUIAutomator2 stops the server and removes every forward it may have
// left behind, including ones from earlier runs.
func (d *AndroidDevice) StopUIAutomator2() error {
	for _, apk := range uiautomator2APKs {
		d.Shell("am force-stop " + apk.pkg)
	}
	time.Sleep(300 * time.Millisecond)

	sockets := []string{d.DefaultSocketPath()}
	if d.socketPath != "" && d.socketPath != sockets[0] {
		sockets = append(sockets, d.socketPath)
	}
	for _, path := range sockets {
		d.RemoveSocketForward(path)
		os.Remove(path)
	}
	d.socketPath = ""

	if d.localPort != 0 {
		d.RemoveForward(d.localPort)
		d.localPort = 0
	}

	logger.Debug("UIAutomator2 server stopped on %s", d.serial)
	return nil
}

// InstallUIAutomator2 installs the server APKs missing on the device from apksDir.
func (d *AndroidDevice) InstallUIAutomator2(apksDir string) error {
	for _, apk := range uiautomator2APKs {
		if d.IsInstalled(apk.pkg) {
			continue
		}
		path, err := findAPK(apksDir, apk.pattern)
		if err != nil {
			return fmt.Errorf("install %s: %w", apk.pkg, err)
		}
		logger.Info("installing %s from %s", apk.pkg, path)
		if err := d.Install(path); err != nil {
			return fmt.Errorf("install %s: %w", apk.pkg, err)
		}
	}
	return nil
}

// findFreePort returns the first port in [start, end] that can be bound.
func findFreePort(start, end int) (int, error) {
	for port := start; port <= end; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			ln.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no free port in %d-%d", start, end)
}

var errNoAPK = errors.New("no APK found")

// findAPK returns the first file in dir matching pattern.
func findAPK(dir, pattern string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w matching %s in %s", errNoAPK, pattern, dir)
	}
	return matches[0], nil
}
