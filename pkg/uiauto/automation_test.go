package uiauto

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/params"
)

// fakeClock replaces sleep and now so waits run instantly.
type fakeClock struct {
	t       time.Time
	sleeps  []time.Duration
	onSleep func(now time.Time)
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	if c.onSleep != nil {
		c.onSleep(c.t)
	}
}

func (c *fakeClock) now() time.Time { return c.t }

// fakeObject records how it was used.
type fakeObject struct {
	sel          core.Selector
	exists       bool
	gone         bool
	clickable    bool
	clickableErr error
	clickErr     error
	failAt       int // click number that returns clickErr; 0 = every click
	newWindow    bool

	waitTimeouts []time.Duration
	goneTimeouts []time.Duration
	clicks       int
	windowClicks int
}

func (o *fakeObject) Selector() core.Selector { return o.sel }

func (o *fakeObject) WaitForExists(timeout time.Duration) bool {
	o.waitTimeouts = append(o.waitTimeouts, timeout)
	return o.exists
}

func (o *fakeObject) WaitUntilGone(timeout time.Duration) bool {
	o.goneTimeouts = append(o.goneTimeouts, timeout)
	return o.gone
}

func (o *fakeObject) Click() error {
	o.clicks++
	if o.clickErr != nil && (o.failAt == 0 || o.failAt == o.clicks) {
		return o.clickErr
	}
	return nil
}

func (o *fakeObject) ClickAndWaitForNewWindow() (bool, error) {
	o.windowClicks++
	if o.clickErr != nil {
		return false, o.clickErr
	}
	return o.newWindow, nil
}

func (o *fakeObject) IsClickable() (bool, error) {
	return o.clickable, o.clickableErr
}

// fakeDevice hands out fakeObjects keyed by selector. Unknown selectors get
// an object that never exists.
type fakeDevice struct {
	mu            sync.Mutex
	objects       map[core.Selector]*fakeObject
	requested     []core.Selector
	width, height int
	sizeErr       error
	screenshotErr error
	shots         []string
	swipes        [][5]int
}

func newFakeDevice(objs ...*fakeObject) *fakeDevice {
	d := &fakeDevice{objects: map[core.Selector]*fakeObject{}, width: 1080, height: 2280}
	for _, o := range objs {
		d.objects[o.sel] = o
	}
	return d
}

func (d *fakeDevice) FindObject(sel core.Selector) core.Object {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requested = append(d.requested, sel)
	if o, ok := d.objects[sel]; ok {
		return o
	}
	o := &fakeObject{sel: sel}
	d.objects[sel] = o
	return o
}

func (d *fakeDevice) DisplayWidth() (int, error)  { return d.width, d.sizeErr }
func (d *fakeDevice) DisplayHeight() (int, error) { return d.height, d.sizeErr }

func (d *fakeDevice) Swipe(startX, startY, endX, endY, steps int) error {
	d.swipes = append(d.swipes, [5]int{startX, startY, endX, endY, steps})
	return nil
}

func (d *fakeDevice) TakeScreenshot(path string) error {
	if d.screenshotErr != nil {
		return d.screenshotErr
	}
	d.shots = append(d.shots, path)
	return nil
}

func newTestAutomation(t *testing.T, cfg Config) (*Automation, *fakeClock) {
	t.Helper()
	a := New(cfg)
	clock := newFakeClock()
	a.sleep = clock.sleep
	a.now = clock.now
	return a, clock
}

func TestNewDefaults(t *testing.T) {
	a := New(Config{Device: newFakeDevice()})

	if a.waitTimeout != DefaultWaitTimeout {
		t.Errorf("waitTimeout = %v, want %v", a.waitTimeout, DefaultWaitTimeout)
	}
	if a.textWaitTimeout != DefaultTextWaitTimeout {
		t.Errorf("textWaitTimeout = %v, want %v", a.textWaitTimeout, DefaultTextWaitTimeout)
	}
	if a.logPollInterval != DefaultLogPollInterval {
		t.Errorf("logPollInterval = %v, want %v", a.logPollInterval, DefaultLogPollInterval)
	}
	if a.Params() == nil {
		t.Error("Params() should never be nil")
	}
	if a.Workdir() != "" {
		t.Errorf("Workdir() = %q, want empty", a.Workdir())
	}
}

func TestNewWorkdirFromParams(t *testing.T) {
	b := params.Bundle{WorkdirParam: params.StringValue("/sdcard/wa")}

	a := New(Config{Device: newFakeDevice(), Params: b})
	if a.Workdir() != "/sdcard/wa" {
		t.Errorf("Workdir() = %q, want /sdcard/wa", a.Workdir())
	}

	a = New(Config{Device: newFakeDevice(), Params: b, Workdir: "/tmp/override"})
	if a.Workdir() != "/tmp/override" {
		t.Errorf("Workdir() = %q, want /tmp/override", a.Workdir())
	}
}

func TestSleep(t *testing.T) {
	a, clock := newTestAutomation(t, Config{Device: newFakeDevice()})
	a.Sleep(3)
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 3*time.Second {
		t.Errorf("sleeps = %v, want [3s]", clock.sleeps)
	}
}

var errBoom = errors.New("boom")
