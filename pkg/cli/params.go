package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/params"
)

// extraFlag collects instrumentation-style key=value parameters.
var extraFlag = &cli.StringSliceFlag{
	Name:    "extra",
	Aliases: []string{"e"},
	Usage:   "Encoded parameter as key=value (repeatable)",
}

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "Decode encoded workload parameters and print them as YAML",
	Description: `Decode parameters in the wire form the workload receives.

Examples:
  uiauto decode -e iterations=is3 -e names=sla0newelement0b
  uiauto decode -e title=ssbench%20mark`,
	Flags:  []cli.Flag{extraFlag},
	Action: runDecode,
}

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "Encode YAML parameters into -e key value arguments",
	ArgsUsage: "[params.yaml]",
	Description: `Encode a YAML mapping of parameters. Without a file, the params
block of the config file is encoded.

Examples:
  uiauto encode params.yaml
  uiauto --config uiauto.yaml encode`,
	Action: runEncode,
}

func runDecode(c *cli.Context) error {
	raw, err := parseParamArgs(c.StringSlice("extra"))
	if err != nil {
		return err
	}
	bundle, err := params.DecodeBundle(raw)
	if err != nil {
		return err
	}
	return writeYAML(c.App.Writer, bundle.Native())
}

func runEncode(c *cli.Context) error {
	var values map[string]interface{}
	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path) //#nosec G304 -- user-provided params file
		if err != nil {
			return fmt.Errorf("read params: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return core.ErrInvalidConfig.WithMessage(path).WithCause(err)
		}
	} else {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		values = cfg.Params
	}

	raw, err := params.EncodeBundle(values)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, formatParamArgs(raw))
	return nil
}

// parseParamArgs parses key=value pairs. Only the first "=" separates.
func parseParamArgs(args []string) (params.RawBundle, error) {
	raw := make(params.RawBundle, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("parameter %q must be key=value", arg))
		}
		raw[key] = value
	}
	return raw, nil
}

// mergeParams overlays override onto base.
func mergeParams(base, override params.RawBundle) params.RawBundle {
	out := make(params.RawBundle, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// formatParamArgs renders raw as `-e key value` arguments in key order.
func formatParamArgs(raw params.RawBundle) string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("-e %s %s", k, raw[k]))
	}
	return strings.Join(parts, " ")
}
