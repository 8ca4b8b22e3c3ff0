package device

import (
	"fmt"
	"os/exec"
)

// LogcatCommand returns an unstarted `adb logcat` command for this device.
// Extra args are appended, e.g. "-v", "brief".
func (d *AndroidDevice) LogcatCommand(args ...string) *exec.Cmd {
	return d.command(append([]string{"logcat"}, args...)...)
}

// ClearLogcat empties the device log buffer.
func (d *AndroidDevice) ClearLogcat() error {
	if _, err := d.adb("logcat", "-c"); err != nil {
		return fmt.Errorf("clear logcat: %w", err)
	}
	return nil
}
