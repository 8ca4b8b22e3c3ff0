package uiauto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// errStreamEnded reports a log stream whose capture stopped before the deadline.
var errStreamEnded = errors.New("log stream ended")

// TimeoutError reports log text that was not observed in time.
type TimeoutError struct {
	Pattern string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for log text %q", e.Timeout, e.Pattern)
}

// Unwrap lets errors.Is match core.ErrTimeout.
func (e *TimeoutError) Unwrap() error {
	return core.ErrTimeout
}

// WaitForLogText opens a fresh log stream and polls it until a line contains
// pattern. Lines are scanned once; nothing is replayed. The stream is closed
// on every return path.
func (a *Automation) WaitForLogText(pattern string, timeout time.Duration) error {
	if a.logs == nil {
		return core.ErrMissingRequired.WithMessage("wait for log text: no log source configured")
	}
	stream, err := a.logs.Open()
	if err != nil {
		return fmt.Errorf("open log stream: %w", err)
	}
	defer func() {
		if err := stream.Close(); err != nil {
			logger.Warn("close log stream: %v", err)
		}
	}()

	logger.Debug("waiting up to %v for log text %q", timeout, pattern)
	deadline := a.now().Add(timeout)
	for {
		remaining := deadline.Sub(a.now())
		if remaining > 0 {
			a.sleep(min(a.logPollInterval, remaining))
		}

		found, err := drain(stream, pattern)
		if err != nil {
			return fmt.Errorf("read log stream: %w", err)
		}
		if found {
			logger.Info("log text %q observed", pattern)
			return nil
		}
		if !a.now().Before(deadline) {
			return &TimeoutError{Pattern: pattern, Timeout: timeout}
		}
	}
}

// drain scans every line captured since the previous poll.
func drain(stream core.LogStream, pattern string) (bool, error) {
	lines, ended := stream.Pending()
	for _, line := range lines {
		if line.Err != nil {
			return false, line.Err
		}
		if strings.Contains(line.Text, pattern) {
			return true, nil
		}
	}
	if ended {
		return false, errStreamEnded
	}
	return false, nil
}

// ClearLog clears the device log buffer.
func (a *Automation) ClearLog() error {
	c, ok := a.logs.(core.LogClearer)
	if !ok {
		return fmt.Errorf("clear log: %w", errors.ErrUnsupported)
	}
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}
	logger.Debug("device log cleared")
	return nil
}
