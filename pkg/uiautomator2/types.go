// Package uiautomator2 provides an HTTP client for the UIAutomator2 server
// running on an Android device.
package uiautomator2

// Response is the standard UIAutomator2 response format.
type Response struct {
	SessionID string      `json:"sessionId"`
	Value     interface{} `json:"value"`
}

// W3C error codes the client distinguishes.
const (
	ErrTypeNoSuchElement  = "no such element"
	ErrTypeUnknownCommand = "unknown command"
	ErrTypeUnknownMethod  = "unknown method"
)

// Capabilities for session creation.
type Capabilities struct {
	PlatformName string `json:"platformName,omitempty"`
	DeviceName   string `json:"deviceName,omitempty"`
}

// SessionRequest for creating a session.
type SessionRequest struct {
	Capabilities Capabilities `json:"capabilities"`
}

// FindElementRequest for finding elements.
type FindElementRequest struct {
	Strategy string `json:"strategy"`
	Selector string `json:"selector"`
}

// TouchDragRequest drags from one screen point to another. Steps controls
// the speed: each step takes about 5ms on the device.
type TouchDragRequest struct {
	StartX int `json:"startX"`
	StartY int `json:"startY"`
	EndX   int `json:"endX"`
	EndY   int `json:"endY"`
	Steps  int `json:"steps"`
}

// WindowSize from the /window/current/size endpoint.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DeviceInfo from device info endpoint.
type DeviceInfo struct {
	AndroidID       string `json:"androidId"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model"`
	Brand           string `json:"brand"`
	APIVersion      string `json:"apiVersion"`
	PlatformVersion string `json:"platformVersion"`
	RealDisplaySize string `json:"realDisplaySize"`
	DisplayDensity  int    `json:"displayDensity"`
}

// StrategyUIAutomator locates elements with a UiSelector expression.
const StrategyUIAutomator = "-android uiautomator"
