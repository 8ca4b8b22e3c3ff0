package uiautomator2

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// getValue decodes the "value" member of a GET response into v.
func (c *Client) getValue(path string, v interface{}) error {
	return c.getValueContext(context.Background(), path, v)
}

func (c *Client) getValueContext(ctx context.Context, path string, v interface{}) error {
	data, err := c.requestContext(ctx, "GET", path, nil)
	if err != nil {
		return err
	}
	resp := struct {
		Value interface{} `json:"value"`
	}{Value: v}
	return json.Unmarshal(data, &resp)
}

// getString returns a string "value". Non-string values read as "".
func (c *Client) getString(ctx context.Context, path string) (string, error) {
	var s interface{}
	if err := c.getValueContext(ctx, path, &s); err != nil {
		return "", err
	}
	str, _ := s.(string)
	return str, nil
}

// Screenshot captures the full screen as PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	var b64 interface{}
	if err := c.getValue(c.sessionPath("/screenshot"), &b64); err != nil {
		return nil, err
	}
	s, ok := b64.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected screenshot response")
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return data, nil
}

// WindowSize returns the current display size in pixels.
func (c *Client) WindowSize() (WindowSize, error) {
	var size WindowSize
	if err := c.getValue(c.sessionPath("/window/current/size"), &size); err != nil {
		return WindowSize{}, err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return WindowSize{}, fmt.Errorf("invalid window size %dx%d", size.Width, size.Height)
	}
	return size, nil
}

// GetDeviceInfo returns what the server reports about the device.
func (c *Client) GetDeviceInfo() (*DeviceInfo, error) {
	var info DeviceInfo
	if err := c.getValue(c.sessionPath("/appium/device/info"), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CurrentActivity returns the name of the foreground activity.
func (c *Client) CurrentActivity() (string, error) {
	return c.CurrentActivityContext(context.Background())
}

// CurrentActivityContext is CurrentActivity abandoned when ctx ends.
func (c *Client) CurrentActivityContext(ctx context.Context) (string, error) {
	return c.getString(ctx, c.sessionPath("/appium/device/current_activity"))
}
