// Package builtin registers the workloads shipped with uiauto. Import it for
// its side effects.
package builtin

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/params"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
	"github.com/devicelab-dev/uiauto/pkg/workload"
)

func init() {
	workload.Register("pcmark", func() workload.Workload { return &PCMark{} })
	workload.Register("basic", func() workload.Workload { return &Basic{} })
}

// PCMark prepares the PCMark home screen.
type PCMark struct {
	workload.Base
}

func (*PCMark) Name() string { return "pcmark" }

// Setup swipes past the landing page.
func (*PCMark) Setup(a *uiauto.Automation) error {
	return a.SwipeRight(uiauto.DefaultSwipeSteps)
}

// Basic drives a generic tap-and-wait workload entirely from parameters:
//
//	setup:          clearLog (bool), swipe (direction), swipeSteps (int)
//	runWorkload:    clickId, clickText, repeat (int), repeatIntervalMs (int),
//	                waitText, waitTextSec (int), waitLog, waitLogSec (int)
//	extractResults: screenshot (name)
type Basic struct {
	workload.Base
}

func (*Basic) Name() string { return "basic" }

func (*Basic) Setup(a *uiauto.Automation) error {
	p := a.Params()
	if p.Has("clearLog") {
		clear, err := p.Bool("clearLog")
		if err != nil {
			return err
		}
		if clear {
			if err := a.ClearLog(); err != nil {
				return err
			}
		}
	}
	name, err := p.StringOr("swipe", "")
	if err != nil || name == "" {
		return err
	}
	dir, err := uiauto.ParseDirection(name)
	if err != nil {
		return err
	}
	steps, err := p.IntOr("swipeSteps", uiauto.DefaultSwipeSteps)
	if err != nil {
		return err
	}
	return a.Swipe(dir, steps)
}

func (*Basic) RunWorkload(a *uiauto.Automation) error {
	p := a.Params()

	var target uiauto.SearchCriterion
	switch {
	case p.Has("clickId"):
		id, err := p.String("clickId")
		if err != nil {
			return err
		}
		target = uiauto.ResourceID(id)
	case p.Has("clickText"):
		text, err := p.String("clickText")
		if err != nil {
			return err
		}
		target = uiauto.Text(text)
	}
	if target.Match != "" {
		if err := clickRepeated(a, target); err != nil {
			return err
		}
	}

	if err := waitFor(p, "waitText", "waitTextSec", 0, a.WaitText); err != nil {
		return err
	}
	return waitFor(p, "waitLog", "waitLogSec", 60, a.WaitForLogText)
}

func clickRepeated(a *uiauto.Automation, target uiauto.SearchCriterion) error {
	p := a.Params()
	n, err := p.IntOr("repeat", 0)
	if err != nil {
		return err
	}
	interval, err := p.IntOr("repeatIntervalMs", 0)
	if err != nil {
		return err
	}
	obj, err := a.Click(target, uiauto.ClickOnly)
	if err != nil {
		return err
	}
	if n > 0 {
		return a.RepeatClick(obj, n, interval)
	}
	return nil
}

// waitFor runs wait for the text under textKey with the timeout under secKey.
func waitFor(p params.Bundle, textKey, secKey string, defSec int, wait func(string, time.Duration) error) error {
	text, err := p.StringOr(textKey, "")
	if err != nil || text == "" {
		return err
	}
	sec, err := p.IntOr(secKey, defSec)
	if err != nil {
		return err
	}
	return wait(text, seconds(sec))
}

func (*Basic) ExtractResults(a *uiauto.Automation) error {
	name, err := a.Params().StringOr("screenshot", "")
	if err != nil || name == "" {
		return err
	}
	res, err := a.TakeScreenshot(name)
	if err != nil {
		return fmt.Errorf("extract results: %w", err)
	}
	logger.Info("screenshot %s: %s", name, res)
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
