package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/workload"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Slow phase threshold in milliseconds (60 seconds)
const slowThresholdMs = 60000

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Progress goes to stderr; only color it on a terminal.
	if fileInfo, err := os.Stderr.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// progress receives setup and phase progress. Command results go to the
// app writer so they can be piped.
var progress io.Writer = os.Stderr

// printSetupStep prints a setup step with spinner-style prefix
func printSetupStep(msg string) {
	fmt.Fprintf(progress, "  %s⏳%s %s\n", color(colorCyan), color(colorReset), msg)
}

// printSetupSuccess prints a success message for setup
func printSetupSuccess(msg string) {
	fmt.Fprintf(progress, "  %s✓%s %s\n", color(colorGreen), color(colorReset), msg)
}

func printWarning(msg string) {
	fmt.Fprintf(progress, "  %s⚠%s %s\n", color(colorYellow), color(colorReset), msg)
}

// Live progress callbacks
func onPhaseStart(name string, phase workload.Phase) {
	fmt.Fprintf(progress, "\n  %s▸%s %s%s%s %s\n",
		color(colorCyan), color(colorReset), color(colorBold), name, color(colorReset), phase)
}

func onPhaseEnd(res workload.PhaseResult) {
	durStr := formatDuration(res.Duration)

	switch res.Status {
	case core.StatusPassed:
		symbol := "✓"
		symbolColor := color(colorGreen)
		durColor := ""
		if res.Duration >= slowThresholdMs {
			durColor = color(colorYellow)
			symbol = "⚠"
			symbolColor = color(colorYellow)
		}
		fmt.Fprintf(progress, "    %s%s%s %s %s(%s)%s\n",
			symbolColor, symbol, color(colorReset), res.Phase, durColor, durStr, color(colorReset))
	case core.StatusSkipped:
		fmt.Fprintf(progress, "    %s-%s %s (skipped)\n", color(colorCyan), color(colorReset), res.Phase)
	default:
		fmt.Fprintf(progress, "    %s✗%s %s (%s)\n", color(colorRed), color(colorReset), res.Phase, durStr)
		if res.Error != "" {
			fmt.Fprintf(progress, "      %s╰─%s %s\n", color(colorGray), color(colorReset), res.Error)
		}
	}
}

func printSummary(results []workload.PhaseResult) {
	var passed, failed, skipped int
	var total int64
	for _, res := range results {
		switch res.Status {
		case core.StatusPassed:
			passed++
		case core.StatusSkipped:
			skipped++
		default:
			failed++
		}
		total += res.Duration
	}

	fmt.Fprintln(progress)
	tableWidth := 60
	fmt.Fprintln(progress, strings.Repeat("═", tableWidth))
	fmt.Fprintf(progress, "  %-20s %-16s %8s %10s\n", "Workload", "Phase", "Status", "Duration")
	fmt.Fprintln(progress, strings.Repeat("─", tableWidth))
	for _, res := range results {
		var status, statusColor string
		switch res.Status {
		case core.StatusPassed:
			status, statusColor = "✓ PASS", color(colorGreen)
		case core.StatusSkipped:
			status, statusColor = "- SKIP", color(colorCyan)
		default:
			status, statusColor = "✗ FAIL", color(colorRed)
		}
		fmt.Fprintf(progress, "  %-20s %-16s %s%8s%s %10s\n",
			res.Workload, res.Phase, statusColor, status, color(colorReset), formatDuration(res.Duration))
	}
	fmt.Fprintln(progress, strings.Repeat("─", tableWidth))

	statusColor := color(colorGreen)
	if failed > 0 {
		statusColor = color(colorRed)
	}
	fmt.Fprintf(progress, "  %s%-37s%s %s%8s%s %10s\n",
		color(colorBold), "TOTAL", color(colorReset),
		statusColor, fmt.Sprintf("%d/%d", passed, len(results)-skipped), color(colorReset),
		formatDuration(total))
	fmt.Fprintln(progress, strings.Repeat("═", tableWidth))
}

// formatDuration formats milliseconds to a human-readable string.
// Shows milliseconds for values < 1s, seconds otherwise.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}

// writeYAML writes v as a YAML document.
func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
