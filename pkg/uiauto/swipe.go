package uiauto

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// DefaultSwipeSteps is used when a swipe is requested with fewer than one step.
const DefaultSwipeSteps = 10

// Direction is a swipe direction. DirectionNull is an explicit "none" that
// Swipe rejects.
type Direction int

const (
	DirectionNull Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionNull:
		return "null"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses a direction name, case-insensitively.
// "" and "null" yield DirectionNull.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null":
		return DirectionNull, nil
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	}
	return DirectionNull, core.ErrInvalidDirection.WithMessage(fmt.Sprintf("unknown direction %q", s))
}

// SwipePath is the start and end point of a swipe.
type SwipePath struct {
	StartX, StartY int
	EndX, EndY     int
}

// SwipeCoordinates computes the path for dir on a display of geometry g.
// Each swipe runs through the centre and covers half of the dimension along
// its axis.
func SwipeCoordinates(dir Direction, g core.DisplayGeometry) (SwipePath, error) {
	cw, ch := g.CentreX(), g.CentreY()
	switch dir {
	case DirectionUp:
		return SwipePath{cw, ch + ch/2, cw, ch / 2}, nil
	case DirectionDown:
		return SwipePath{cw, ch / 2, cw, ch + ch/2}, nil
	case DirectionLeft:
		return SwipePath{cw + cw/2, ch, cw / 2, ch}, nil
	case DirectionRight:
		return SwipePath{cw / 2, ch, cw + cw/2, ch}, nil
	case DirectionNull:
		return SwipePath{}, core.ErrInvalidDirection
	default:
		return SwipePath{}, core.ErrInvalidDirection.WithMessage(fmt.Sprintf("unknown direction %v", dir))
	}
}

// Swipe performs a swipe in dir. Geometry is queried on every call.
func (a *Automation) Swipe(dir Direction, steps int) error {
	if dir == DirectionNull {
		return core.ErrInvalidDirection
	}
	g, err := core.Geometry(a.device)
	if err != nil {
		return fmt.Errorf("swipe %s: %w", dir, err)
	}
	path, err := SwipeCoordinates(dir, g)
	if err != nil {
		return err
	}
	if steps < 1 {
		steps = DefaultSwipeSteps
	}

	logger.Debug("swipe %s on %dx%d: (%d,%d) -> (%d,%d) steps=%d",
		dir, g.Width, g.Height, path.StartX, path.StartY, path.EndX, path.EndY, steps)
	if err := a.device.Swipe(path.StartX, path.StartY, path.EndX, path.EndY, steps); err != nil {
		return fmt.Errorf("swipe %s: %w", dir, err)
	}
	return nil
}

// SwipeUp swipes from the lower to the upper quarter of the screen.
func (a *Automation) SwipeUp(steps int) error { return a.Swipe(DirectionUp, steps) }

// SwipeDown swipes from the upper to the lower quarter of the screen.
func (a *Automation) SwipeDown(steps int) error { return a.Swipe(DirectionDown, steps) }

// SwipeLeft swipes from the right to the left quarter of the screen.
func (a *Automation) SwipeLeft(steps int) error { return a.Swipe(DirectionLeft, steps) }

// SwipeRight swipes from the left to the right quarter of the screen.
func (a *Automation) SwipeRight(steps int) error { return a.Swipe(DirectionRight, steps) }
