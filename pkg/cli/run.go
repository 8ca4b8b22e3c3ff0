package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiauto/pkg/config"
	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
	"github.com/devicelab-dev/uiauto/pkg/params"
	"github.com/devicelab-dev/uiauto/pkg/workload"
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run workload phases on the device",
	Description: fmt.Sprintf(`Run one or all phases of a registered workload. Parameters from the
config file are encoded first; -e values are already encoded and win.

Workloads: %s

Examples:
  uiauto run --workload pcmark --phase setup
  uiauto run --workload basic --phase all -e clickText=ssStart -e waitLog=ssdone`,
		strings.Join(workload.Names(), ", ")),
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "workload",
			Aliases:  []string{"w"},
			Usage:    "Registered workload name",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "phase",
			Usage: "Phase to run (setup, runWorkload, extractResults, teardown), comma list or all",
			Value: "all",
		},
		&cli.StringFlag{
			Name:  "workdir",
			Usage: "Directory for screenshots (overrides config and the workdir parameter)",
		},
		extraFlag,
	},
	Action: runWorkload,
}

var instrumentCommand = &cli.Command{
	Name:  "instrument",
	Usage: "Run workload stages as on-device instrumentation",
	Description: `Run a workload packaged as a UiAutomator test APK, one am instrument
invocation per stage. Parameters come from the config file and -e.

Examples:
  uiauto instrument --package com.arm.wa.uiauto.pcmark --stage setup
  uiauto instrument --package com.arm.wa.uiauto.pcmark --apk pcmark.apk
  uiauto instrument --stage all --dry-run`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "stage",
			Usage: "Stage to run (setup, runWorkload, extractResults, teardown), comma list or all",
			Value: "all",
		},
		&cli.StringFlag{
			Name:  "package",
			Usage: "Instrumentation APK package (overrides config)",
		},
		&cli.StringFlag{
			Name:  "apk",
			Usage: "APK to (re)install as the package before the first stage",
		},
		&cli.StringFlag{
			Name:  "workdir",
			Usage: "Device workdir passed to every stage",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Print the commands without running them",
		},
		extraFlag,
	},
	Action: runInstrument,
}

// workloadParams merges the config params with -e overrides and decodes them.
func workloadParams(cfg *config.Config, extra []string) (params.Bundle, error) {
	base, err := cfg.RawParams()
	if err != nil {
		return nil, err
	}
	override, err := parseParamArgs(extra)
	if err != nil {
		return nil, err
	}
	return params.DecodeBundle(mergeParams(base, override))
}

func runWorkload(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Close()

	if v := c.String("workdir"); v != "" {
		cfg.Workdir = v
	}

	w, err := workload.Lookup(c.String("workload"))
	if err != nil {
		return err
	}
	phases, err := workload.ParsePhases(c.String("phase"))
	if err != nil {
		return err
	}
	bundle, err := workloadParams(cfg, c.StringSlice("extra"))
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	runner := workload.NewRunner(s.automation(bundle), workload.RunnerConfig{
		Artifacts:    cfg.ArtifactConfig(),
		OnPhaseStart: onPhaseStart,
		OnPhaseEnd:   onPhaseEnd,
	})
	logger.Info("run %s: workload %s, phases %v", runner.RunID(), w.Name(), phases)

	results := runner.RunAll(w, phases)
	printSummary(results)
	if err := writeYAML(c.App.Writer, results); err != nil {
		return err
	}
	if workload.Failed(results) {
		return fmt.Errorf("workload %s failed", w.Name())
	}
	return nil
}

func runInstrument(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	defer logger.Close()

	pkg := c.String("package")
	if pkg == "" {
		pkg = cfg.Instrumentation.Package
	}
	if pkg == "" {
		return core.ErrMissingRequired.WithMessage("instrumentation package (--package or instrumentation.package)")
	}
	apk := c.String("apk")
	if apk == "" {
		apk = cfg.Instrumentation.APK
	}
	if apk != "" {
		if _, err := os.Stat(apk); err != nil {
			return core.ErrInvalidConfig.WithMessage("instrumentation apk").WithCause(err)
		}
	}
	stages, err := workload.ParsePhases(c.String("stage"))
	if err != nil {
		return err
	}
	bundle, err := workloadParams(cfg, c.StringSlice("extra"))
	if err != nil {
		return err
	}

	dryRun := c.Bool("dry-run")
	var shell workload.Shell
	var installer workload.Installer
	if !dryRun {
		if cfg.Driver == config.DriverMock {
			return core.ErrInvalidConfig.WithMessage("instrument needs a real device; use --dry-run with the mock driver")
		}
		dev, err := connectAndroid(cfg)
		if err != nil {
			return err
		}
		shell = dev
		installer = dev
	}

	inst := workload.NewInstrumentation(shell, pkg)
	if cfg.Instrumentation.Class != "" {
		inst.Class = cfg.Instrumentation.Class
	}
	if cfg.Instrumentation.Runner != "" {
		inst.Runner = cfg.Instrumentation.Runner
	}
	if t := cfg.Instrumentation.Timeout(); t > 0 {
		inst.Timeout = t
	}
	inst.Workdir = cfg.Workdir
	if v := c.String("workdir"); v != "" {
		inst.Workdir = v
	}
	for k, v := range bundle.Native() {
		if k == params.ClassKey {
			continue
		}
		inst.Set(k, v)
	}

	if apk != "" {
		if dryRun {
			fmt.Fprintf(c.App.Writer, "deploy %s as %s\n", apk, pkg)
		} else {
			printSetupStep(fmt.Sprintf("Deploying %s...", filepath.Base(apk)))
			if err := inst.Deploy(installer, apk); err != nil {
				return err
			}
			printSetupSuccess(fmt.Sprintf("Deployed %s", pkg))
		}
	}

	for _, stage := range stages {
		if dryRun {
			cmd, err := inst.Command(stage)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, cmd)
			continue
		}

		printSetupStep(fmt.Sprintf("Instrumentation %s...", stage))
		if _, err := inst.Execute(c.Context, stage); err != nil {
			return err
		}
		printSetupSuccess(fmt.Sprintf("Instrumentation %s done", stage))
	}
	return nil
}
