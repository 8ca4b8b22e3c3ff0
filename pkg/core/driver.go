// Package core provides the device boundary and error model for uiauto.
package core

import (
	"fmt"
	"strings"
	"time"
)

// Device is the UI device driver consumed by the automation layer.
// Implementations: UIAutomator2 server, mock.
type Device interface {
	// FindObject returns a handle bound to sel. It does not wait; the
	// handle resolves the selector again on every call.
	FindObject(sel Selector) Object

	// DisplayWidth and DisplayHeight return the current display size in pixels.
	DisplayWidth() (int, error)
	DisplayHeight() (int, error)

	// Swipe drags from (startX, startY) to (endX, endY) in the given number of steps.
	Swipe(startX, startY, endX, endY, steps int) error

	// TakeScreenshot writes a PNG to path.
	// Returns an error matching errors.ErrUnsupported when the device cannot capture.
	TakeScreenshot(path string) error
}

// Object is a borrowed handle to a UI element matched by a selector.
// It is valid only while the device session is valid.
type Object interface {
	// Selector returns the selector this handle resolves.
	Selector() Selector

	// WaitForExists blocks until a matching element exists or timeout elapses.
	WaitForExists(timeout time.Duration) bool

	// WaitUntilGone blocks until no matching element exists or timeout elapses.
	WaitUntilGone(timeout time.Duration) bool

	// Click taps the element.
	Click() error

	// ClickAndWaitForNewWindow taps the element and waits for a new window.
	// Returns false if no new window appeared.
	ClickAndWaitForNewWindow() (bool, error)

	// IsClickable reports the element's clickable attribute.
	IsClickable() (bool, error)
}

// DisplayGeometry is the current display size. It is never cached:
// orientation may change between gestures.
type DisplayGeometry struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// CentreX returns the horizontal centre of the display
func (g DisplayGeometry) CentreX() int {
	return g.Width / 2
}

// CentreY returns the vertical centre of the display
func (g DisplayGeometry) CentreY() int {
	return g.Height / 2
}

// Geometry queries both display dimensions from d.
func Geometry(d Device) (DisplayGeometry, error) {
	w, err := d.DisplayWidth()
	if err != nil {
		return DisplayGeometry{}, fmt.Errorf("display width: %w", err)
	}
	h, err := d.DisplayHeight()
	if err != nil {
		return DisplayGeometry{}, fmt.Errorf("display height: %w", err)
	}
	return DisplayGeometry{Width: w, Height: h}, nil
}

// Selector is a device-level element selector.
// Empty fields do not constrain the match.
type Selector struct {
	ResourceID          string `yaml:"resourceId,omitempty"`
	Text                string `yaml:"text,omitempty"`         // exact text
	TextContains        string `yaml:"textContains,omitempty"` // substring of text
	DescriptionContains string `yaml:"descriptionContains,omitempty"`
	ClassName           string `yaml:"className,omitempty"`
}

// IsEmpty returns true if no field is set.
func (s Selector) IsEmpty() bool {
	return s == Selector{}
}

// UiSelector renders the selector as a UiAutomator expression,
// e.g. new UiSelector().resourceId("com.app:id/ok").className("android.widget.Button")
func (s Selector) UiSelector() string {
	var b strings.Builder
	b.WriteString("new UiSelector()")
	appendCall := func(method, value string) {
		if value == "" {
			return
		}
		b.WriteString("." + method + `("` + escapeUiAutomatorString(value) + `")`)
	}
	appendCall("resourceId", s.ResourceID)
	appendCall("text", s.Text)
	appendCall("textContains", s.TextContains)
	appendCall("descriptionContains", s.DescriptionContains)
	appendCall("className", s.ClassName)
	return b.String()
}

// String returns a short human-readable description.
func (s Selector) String() string {
	var parts []string
	if s.ResourceID != "" {
		parts = append(parts, fmt.Sprintf("id=%q", s.ResourceID))
	}
	if s.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", s.Text))
	}
	if s.TextContains != "" {
		parts = append(parts, fmt.Sprintf("textContains=%q", s.TextContains))
	}
	if s.DescriptionContains != "" {
		parts = append(parts, fmt.Sprintf("descriptionContains=%q", s.DescriptionContains))
	}
	if s.ClassName != "" {
		parts = append(parts, fmt.Sprintf("class=%q", s.ClassName))
	}
	if len(parts) == 0 {
		return "<any>"
	}
	return strings.Join(parts, " ")
}

// escapeUiAutomatorString escapes backslashes and quotes for a Java string literal.
func escapeUiAutomatorString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// LogSource produces fresh, forward-only log streams.
type LogSource interface {
	// Open starts a new capture. Whether lines buffered before Open are
	// delivered depends on the source; a stream never rewinds once read.
	Open() (LogStream, error)
}

// LogStream is a live capture of device log lines. Close must always be called.
type LogStream interface {
	// Pending returns every line captured since the previous call without
	// blocking. ended reports that the capture has stopped.
	Pending() (lines []LogLine, ended bool)

	// Close stops the capture and releases its resources.
	Close() error
}

// LogLine is a single captured line, or a read failure.
type LogLine struct {
	Text string
	Err  error
}

// LogClearer is implemented by log sources that can clear the device buffer.
type LogClearer interface {
	Clear() error
}
