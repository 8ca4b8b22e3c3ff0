// Package cli provides the command-line interface for uiauto.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	// Registers the shipped workloads.
	_ "github.com/devicelab-dev/uiauto/pkg/workload/builtin"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (default: uiauto.yaml in the current directory)",
		EnvVars: []string{"UIAUTO_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"s"},
		Usage:   "adb serial of the device to drive",
		EnvVars: []string{"UIAUTO_DEVICE", "ANDROID_SERIAL"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Driver to use (uiautomator2, mock)",
		EnvVars: []string{"UIAUTO_DRIVER"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIAUTO_VERBOSE"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write the run log to this file",
		EnvVars: []string{"UIAUTO_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Commands are the uiauto subcommands.
var Commands = []*cli.Command{
	decodeCommand,
	encodeCommand,
	runCommand,
	instrumentCommand,
	waitLogCommand,
	swipeCommand,
}

// NewApp builds the uiauto application.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "uiauto",
		Usage:   "UI automation base layer for Android workloads",
		Version: Version,
		Description: `uiauto drives Android workloads through UIAutomator2: it decodes
workload parameters, finds and clicks elements, swipes, captures screenshots
and waits for device log output.

Examples:
  uiauto decode -e iterations=is3 -e names=sla0newelement0b
  uiauto run --workload basic --phase all -e swipe=ssright
  uiauto instrument --stage setup
  uiauto wait-log --text "Benchmark done" --timeout 10m`,
		Flags:    GlobalFlags,
		Commands: Commands,

		// Encoded values may contain commas.
		DisableSliceFlagSeparator: true,

		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
