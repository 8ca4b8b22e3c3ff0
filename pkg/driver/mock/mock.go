// Package mock provides an in-memory device for dry runs and tests without
// a real device.
package mock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
)

// Element is a simulated on-screen element.
type Element struct {
	ResourceID  string
	Text        string
	Description string
	ClassName   string
	Clickable   bool

	// AppearAfter delays the element's existence, measured from New.
	AppearAfter time.Duration
	// GoneAfter removes the element, measured from New. 0 = never.
	GoneAfter time.Duration
	// OpensWindow makes ClickAndWaitForNewWindow report a new window.
	OpensWindow bool
}

// Matches reports whether sel selects e.
func (e Element) Matches(sel core.Selector) bool {
	if sel.ResourceID != "" && sel.ResourceID != e.ResourceID {
		return false
	}
	if sel.Text != "" && sel.Text != e.Text {
		return false
	}
	if sel.TextContains != "" && !strings.Contains(e.Text, sel.TextContains) {
		return false
	}
	if sel.DescriptionContains != "" && !strings.Contains(e.Description, sel.DescriptionContains) {
		return false
	}
	if sel.ClassName != "" && sel.ClassName != e.ClassName {
		return false
	}
	return true
}

// Config configures mock driver behavior.
type Config struct {
	Width    int // default 1080
	Height   int // default 2280
	Elements []Element

	// NoScreenshot makes TakeScreenshot report errors.ErrUnsupported.
	NoScreenshot bool
	// CallDelay adds artificial latency to every device call.
	CallDelay time.Duration
}

// SwipeCall records one Swipe.
type SwipeCall struct {
	StartX, StartY, EndX, EndY, Steps int
}

// Driver is a mock implementation of core.Device. It is safe for concurrent use.
type Driver struct {
	Config Config

	mu          sync.Mutex
	start       time.Time
	clicks      []core.Selector
	swipes      []SwipeCall
	screenshots []string
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Width == 0 {
		cfg.Width = 1080
	}
	if cfg.Height == 0 {
		cfg.Height = 2280
	}
	return &Driver{Config: cfg, start: time.Now()}
}

// Clicks returns the selectors clicked so far.
func (d *Driver) Clicks() []core.Selector {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]core.Selector(nil), d.clicks...)
}

// Swipes returns the swipes performed so far.
func (d *Driver) Swipes() []SwipeCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SwipeCall(nil), d.swipes...)
}

// Screenshots returns the paths written so far.
func (d *Driver) Screenshots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.screenshots...)
}

func (d *Driver) delay() {
	if d.Config.CallDelay > 0 {
		time.Sleep(d.Config.CallDelay)
	}
}

// lookup returns the first element matching sel that exists at time now.
func (d *Driver) lookup(sel core.Selector, now time.Time) (Element, bool) {
	age := now.Sub(d.start)
	for _, e := range d.Config.Elements {
		if !e.Matches(sel) || age < e.AppearAfter {
			continue
		}
		if e.GoneAfter > 0 && age >= e.GoneAfter {
			continue
		}
		return e, true
	}
	return Element{}, false
}

// FindObject returns a handle bound to sel.
func (d *Driver) FindObject(sel core.Selector) core.Object {
	return &object{driver: d, sel: sel}
}

// DisplayWidth returns the configured width.
func (d *Driver) DisplayWidth() (int, error) {
	d.delay()
	return d.Config.Width, nil
}

// DisplayHeight returns the configured height.
func (d *Driver) DisplayHeight() (int, error) {
	d.delay()
	return d.Config.Height, nil
}

// Swipe records the gesture.
func (d *Driver) Swipe(startX, startY, endX, endY, steps int) error {
	d.delay()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.swipes = append(d.swipes, SwipeCall{startX, startY, endX, endY, steps})
	return nil
}

// TakeScreenshot writes a 1x1 PNG to path.
func (d *Driver) TakeScreenshot(path string) error {
	d.delay()
	if d.Config.NoScreenshot {
		return fmt.Errorf("mock screenshot: %w", errors.ErrUnsupported)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, pngPixel, 0o644); err != nil {
		return err
	}
	d.mu.Lock()
	d.screenshots = append(d.screenshots, path)
	d.mu.Unlock()
	return nil
}

// pngPixel is a minimal valid PNG (1x1 transparent pixel).
var pngPixel = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

type object struct {
	driver *Driver
	sel    core.Selector
}

func (o *object) Selector() core.Selector {
	return o.sel
}

// waitFor sleeps until cond holds against the simulated timeline or timeout
// elapses. Elements only change at AppearAfter/GoneAfter, so it can compute
// the answer instead of polling.
func (o *object) waitFor(timeout time.Duration, cond func(now time.Time) bool) bool {
	o.driver.delay()
	now := time.Now()
	deadline := now.Add(timeout)
	for _, at := range o.driver.transitions() {
		if cond(now) {
			return true
		}
		if at.After(deadline) {
			break
		}
		if at.After(now) {
			time.Sleep(time.Until(at))
			now = at
		}
	}
	if cond(now) {
		return true
	}
	if d := time.Until(deadline); d > 0 {
		time.Sleep(d)
	}
	return cond(deadline)
}

// transitions returns the instants at which any element appears or vanishes, in order.
func (d *Driver) transitions() []time.Time {
	var out []time.Time
	for _, e := range d.Config.Elements {
		if e.AppearAfter > 0 {
			out = append(out, d.start.Add(e.AppearAfter))
		}
		if e.GoneAfter > 0 {
			out = append(out, d.start.Add(e.GoneAfter))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (o *object) WaitForExists(timeout time.Duration) bool {
	return o.waitFor(timeout, func(now time.Time) bool {
		_, ok := o.driver.lookup(o.sel, now)
		return ok
	})
}

func (o *object) WaitUntilGone(timeout time.Duration) bool {
	return o.waitFor(timeout, func(now time.Time) bool {
		_, ok := o.driver.lookup(o.sel, now)
		return !ok
	})
}

func (o *object) resolve() (Element, error) {
	o.driver.delay()
	e, ok := o.driver.lookup(o.sel, time.Now())
	if !ok {
		return Element{}, core.ErrElementNotFound.WithMessage(fmt.Sprintf("element %s not found", o.sel))
	}
	return e, nil
}

func (o *object) Click() error {
	if _, err := o.resolve(); err != nil {
		return err
	}
	o.driver.mu.Lock()
	o.driver.clicks = append(o.driver.clicks, o.sel)
	o.driver.mu.Unlock()
	return nil
}

func (o *object) ClickAndWaitForNewWindow() (bool, error) {
	e, err := o.resolve()
	if err != nil {
		return false, err
	}
	o.driver.mu.Lock()
	o.driver.clicks = append(o.driver.clicks, o.sel)
	o.driver.mu.Unlock()
	return e.OpensWindow, nil
}

func (o *object) IsClickable() (bool, error) {
	e, err := o.resolve()
	if err != nil {
		return false, err
	}
	return e.Clickable, nil
}
