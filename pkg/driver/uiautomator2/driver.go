// Package uiautomator2 implements core.Device over a UIAutomator2 server session.
package uiautomator2

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/uiautomator2"
)

// Polling defaults.
const (
	// PollInterval is the quantum between element lookups while waiting.
	PollInterval = 200 * time.Millisecond

	// NewWindowTimeout bounds ClickAndWaitForNewWindow.
	NewWindowTimeout = 5500 * time.Millisecond
)

// UIA2Client defines the UIAutomator2 client operations the driver needs.
// Implemented by uiautomator2.Client.
type UIA2Client interface {
	FindElementContext(ctx context.Context, strategy, selector string) (*uiautomator2.Element, error)
	TouchDrag(startX, startY, endX, endY, steps int) error
	WindowSize() (uiautomator2.WindowSize, error)
	Screenshot() ([]byte, error)
	CurrentActivityContext(ctx context.Context) (string, error)
}

// Driver implements core.Device using UIAutomator2.
type Driver struct {
	client           UIA2Client
	pollInterval     time.Duration
	newWindowTimeout time.Duration
}

// New creates a new UIAutomator2 driver.
func New(client UIA2Client) *Driver {
	return &Driver{
		client:           client,
		pollInterval:     PollInterval,
		newWindowTimeout: NewWindowTimeout,
	}
}

// SetPollInterval overrides the wait quantum. Useful for tests.
func (d *Driver) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		d.pollInterval = interval
	}
}

// SetNewWindowTimeout overrides how long ClickAndWaitForNewWindow waits.
func (d *Driver) SetNewWindowTimeout(timeout time.Duration) {
	d.newWindowTimeout = timeout
}

// FindObject returns a lazy handle; nothing is sent to the device until the
// handle is used.
func (d *Driver) FindObject(sel core.Selector) core.Object {
	return &object{driver: d, sel: sel}
}

// DisplayWidth returns the current display width.
func (d *Driver) DisplayWidth() (int, error) {
	size, err := d.client.WindowSize()
	if err != nil {
		return 0, err
	}
	return size.Width, nil
}

// DisplayHeight returns the current display height.
func (d *Driver) DisplayHeight() (int, error) {
	size, err := d.client.WindowSize()
	if err != nil {
		return 0, err
	}
	return size.Height, nil
}

// Swipe drags between two points.
func (d *Driver) Swipe(startX, startY, endX, endY, steps int) error {
	logger.Debug("swipe (%d,%d) -> (%d,%d) steps=%d", startX, startY, endX, endY, steps)
	return d.client.TouchDrag(startX, startY, endX, endY, steps)
}

// TakeScreenshot captures the screen to path. A server without the screenshot
// endpoint yields an error matching errors.ErrUnsupported.
func (d *Driver) TakeScreenshot(path string) error {
	data, err := d.client.Screenshot()
	if err != nil {
		if uiautomator2.IsUnknownCommand(err) {
			return fmt.Errorf("screenshot: %w (%v)", errors.ErrUnsupported, err)
		}
		return fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// poll calls check every pollInterval until it reports done or timeout
// elapses. The first check always runs; no later check starts after the
// deadline. Each check's ctx ends one quantum past the deadline, so poll
// returns within timeout + pollInterval even if the server hangs.
func (d *Driver) poll(timeout time.Duration, check func(ctx context.Context) bool) bool {
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(context.Background(), deadline.Add(d.pollInterval))
	defer cancel()

	expired := time.NewTimer(timeout)
	defer expired.Stop()
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		if check(ctx) {
			return true
		}
		select {
		case <-expired.C:
			return false
		case <-ticker.C:
			// Both may be ready after a slow check.
			if !time.Now().Before(deadline) {
				return false
			}
		}
	}
}

// object is a lazily resolved element handle.
type object struct {
	driver *Driver
	sel    core.Selector
}

func (o *object) Selector() core.Selector {
	return o.sel
}

// find performs one lookup.
func (o *object) find(ctx context.Context) (*uiautomator2.Element, error) {
	return o.driver.client.FindElementContext(ctx, uiautomator2.StrategyUIAutomator, o.sel.UiSelector())
}

func (o *object) WaitForExists(timeout time.Duration) bool {
	var lastErr error
	found := o.driver.poll(timeout, func(ctx context.Context) bool {
		_, err := o.find(ctx)
		if err != nil && !uiautomator2.IsNoSuchElement(err) {
			lastErr = err
		}
		return err == nil
	})
	if !found && lastErr != nil {
		logger.Debug("wait for %s: last lookup error: %v", o.sel, lastErr)
	}
	return found
}

func (o *object) WaitUntilGone(timeout time.Duration) bool {
	return o.driver.poll(timeout, func(ctx context.Context) bool {
		_, err := o.find(ctx)
		return uiautomator2.IsNoSuchElement(err)
	})
}

// resolve finds the element once, mapping absence to core.ErrElementNotFound.
func (o *object) resolve() (*uiautomator2.Element, error) {
	elem, err := o.find(context.Background())
	if err != nil {
		if uiautomator2.IsNoSuchElement(err) {
			return nil, core.ErrElementNotFound.WithMessage(fmt.Sprintf("element %s not found", o.sel)).WithCause(err)
		}
		return nil, err
	}
	return elem, nil
}

func (o *object) Click() error {
	elem, err := o.resolve()
	if err != nil {
		return err
	}
	return elem.Click()
}

func (o *object) ClickAndWaitForNewWindow() (bool, error) {
	elem, err := o.resolve()
	if err != nil {
		return false, err
	}
	before, err := o.driver.client.CurrentActivityContext(context.Background())
	if err != nil {
		return false, fmt.Errorf("current activity: %w", err)
	}
	if err := elem.Click(); err != nil {
		return false, err
	}

	return o.driver.poll(o.driver.newWindowTimeout, func(ctx context.Context) bool {
		after, err := o.driver.client.CurrentActivityContext(ctx)
		return err == nil && after != before
	}), nil
}

func (o *object) IsClickable() (bool, error) {
	elem, err := o.resolve()
	if err != nil {
		return false, err
	}
	return elem.IsClickable()
}
