package uiauto

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// Repeat-click pacing. Intervals at or below the minimum are replaced by the
// default so the input system does not merge clicks into one tap.
const (
	MinRepeatClickIntervalMs   = 5
	DefaultRepeatClickInterval = 50 * time.Millisecond
)

// ClickMode selects how Click acts on the resolved element.
type ClickMode int

const (
	// ClickOnly taps the element.
	ClickOnly ClickMode = iota
	// ClickAndWaitForNewWindow taps and waits for a new window to open.
	ClickAndWaitForNewWindow
)

func (m ClickMode) String() string {
	switch m {
	case ClickOnly:
		return "click"
	case ClickAndWaitForNewWindow:
		return "click-and-wait-for-new-window"
	default:
		return fmt.Sprintf("ClickMode(%d)", int(m))
	}
}

// Click resolves c via FindAndWait and clicks the element in the given mode.
func (a *Automation) Click(c SearchCriterion, mode ClickMode) (core.Object, error) {
	obj, err := a.FindAndWait(c)
	if err != nil {
		return nil, err
	}

	switch mode {
	case ClickAndWaitForNewWindow:
		opened, err := obj.ClickAndWaitForNewWindow()
		if err != nil {
			return nil, fmt.Errorf("click %s: %w", c, err)
		}
		if !opened {
			logger.Debug("click %s: no new window", c)
		}
	default:
		if err := obj.Click(); err != nil {
			return nil, fmt.Errorf("click %s: %w", c, err)
		}
	}
	logger.Debug("%s %s", mode, c)
	return obj, nil
}

// RepeatClick clicks obj count times, pausing intervalMs after each click.
// It does nothing when count < 1 or obj is not clickable.
func (a *Automation) RepeatClick(obj core.Object, count, intervalMs int) error {
	if count < 1 {
		return nil
	}
	clickable, err := obj.IsClickable()
	if err != nil {
		return fmt.Errorf("repeat click %s: %w", obj.Selector(), err)
	}
	if !clickable {
		logger.Debug("repeat click %s: not clickable", obj.Selector())
		return nil
	}

	interval := DefaultRepeatClickInterval
	if intervalMs > MinRepeatClickIntervalMs {
		interval = time.Duration(intervalMs) * time.Millisecond
	}
	for i := 0; i < count; i++ {
		if err := obj.Click(); err != nil {
			return fmt.Errorf("repeat click %s (%d/%d): %w", obj.Selector(), i+1, count, err)
		}
		a.sleep(interval)
	}
	return nil
}
