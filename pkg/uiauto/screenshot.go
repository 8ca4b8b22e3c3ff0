package uiauto

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// ScreenshotResult tells a captured screenshot apart from a device that
// cannot capture one. The zero value is returned alongside every error.
type ScreenshotResult int

const (
	ScreenshotFailed ScreenshotResult = iota
	ScreenshotTaken
	ScreenshotUnsupported
)

func (r ScreenshotResult) String() string {
	switch r {
	case ScreenshotFailed:
		return "failed"
	case ScreenshotTaken:
		return "taken"
	case ScreenshotUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("ScreenshotResult(%d)", int(r))
	}
}

// ScreenshotPath returns where TakeScreenshot writes name.
func (a *Automation) ScreenshotPath(name string) string {
	return filepath.Join(a.workdir, name+".png")
}

// TakeScreenshot writes <workdir>/<name>.png. A device without screenshot
// support yields ScreenshotUnsupported and no error.
func (a *Automation) TakeScreenshot(name string) (ScreenshotResult, error) {
	if a.workdirErr != nil {
		return ScreenshotFailed, fmt.Errorf("screenshot: %w", a.workdirErr)
	}
	if a.workdir == "" {
		return ScreenshotFailed, core.ErrMissingRequired.WithMessage("screenshot: no workdir set")
	}
	path := a.ScreenshotPath(name)
	if err := a.device.TakeScreenshot(path); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			logger.Warn("screenshot %s skipped: %v", name, err)
			return ScreenshotUnsupported, nil
		}
		return ScreenshotFailed, fmt.Errorf("screenshot %s: %w", name, err)
	}
	logger.Info("screenshot saved: %s", path)
	return ScreenshotTaken, nil
}
