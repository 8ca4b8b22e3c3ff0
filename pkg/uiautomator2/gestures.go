package uiautomator2

import "fmt"

// TouchDrag drags from (startX, startY) to (endX, endY) in the given number
// of steps.
func (c *Client) TouchDrag(startX, startY, endX, endY, steps int) error {
	if steps < 1 {
		return fmt.Errorf("drag steps must be positive, got %d", steps)
	}
	req := TouchDragRequest{
		StartX: startX,
		StartY: startY,
		EndX:   endX,
		EndY:   endY,
		Steps:  steps,
	}
	_, err := c.request("POST", c.sessionPath("/touch/drag"), req)
	return err
}
