package cli

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiauto/pkg/config"
	"github.com/devicelab-dev/uiauto/pkg/device"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
)

var waitLogCommand = &cli.Command{
	Name:  "wait-log",
	Usage: "Wait until a device log line contains the given text",
	Description: `Poll the device log until a line contains --text or --timeout elapses.
adb logcat replays the existing buffer; pass --clear to drop it first.

Examples:
  uiauto wait-log --text "Benchmark done" --timeout 10m
  uiauto wait-log --text ActivityManager --clear`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "text",
			Aliases:  []string{"t"},
			Usage:    "Substring to wait for",
			Required: true,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "How long to wait",
			Value: time.Minute,
		},
		&cli.BoolFlag{
			Name:  "clear",
			Usage: "Clear the log buffer before waiting",
		},
	},
	Action: runWaitLog,
}

var swipeCommand = &cli.Command{
	Name:  "swipe",
	Usage: "Swipe across the centre of the screen",
	Description: `Swipe in a direction: up, down, left or right.

Examples:
  uiauto swipe --direction right
  uiauto swipe --direction up --steps 50`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "direction",
			Usage:    "up, down, left or right",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "steps",
			Usage: "Drag steps; more steps swipe slower",
			Value: uiauto.DefaultSwipeSteps,
		},
	},
	Action: runSwipe,
}

func runWaitLog(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Close()

	// Only adb is needed; the UIAutomator2 server is left alone.
	var dev *device.AndroidDevice
	if cfg.Driver != config.DriverMock && cfg.Logcat.File == "" {
		if dev, err = connectAndroid(cfg); err != nil {
			return err
		}
	}
	a := uiauto.New(uiauto.Config{
		LogSource:       logSourceFor(cfg, dev),
		LogPollInterval: cfg.Timeouts.LogPoll(),
	})

	if c.Bool("clear") {
		if err := a.ClearLog(); err != nil {
			return err
		}
	}

	text := c.String("text")
	start := time.Now()
	if err := a.WaitForLogText(text, c.Duration("timeout")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "found %q after %s\n", text, formatDuration(time.Since(start).Milliseconds()))
	return nil
}

func runSwipe(c *cli.Context) error {
	dir, err := uiauto.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Close()

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.automation(nil).Swipe(dir, c.Int("steps")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "swiped %s\n", dir)
	return nil
}
