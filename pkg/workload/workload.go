// Package workload runs UI workloads phase by phase, either in-process
// against a core.Device or on the device through `am instrument`.
package workload

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
)

// Phase is one stage of a workload. The values are the method names the
// on-device instrumentation class exposes.
type Phase string

const (
	PhaseSetup          Phase = "setup"
	PhaseRunWorkload    Phase = "runWorkload"
	PhaseExtractResults Phase = "extractResults"
	PhaseTeardown       Phase = "teardown"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseSetup, PhaseRunWorkload, PhaseExtractResults, PhaseTeardown}

// ParsePhase accepts a phase name or its short form (run, extract),
// case-insensitively.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "setup":
		return PhaseSetup, nil
	case "run", "runworkload":
		return PhaseRunWorkload, nil
	case "extract", "extractresults":
		return PhaseExtractResults, nil
	case "teardown":
		return PhaseTeardown, nil
	}
	return "", core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown phase %q", s))
}

// ParsePhases parses a comma-separated phase list; "all" selects every phase.
func ParsePhases(s string) ([]Phase, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") || strings.TrimSpace(s) == "" {
		return append([]Phase(nil), Phases...), nil
	}
	var out []Phase
	for _, part := range strings.Split(s, ",") {
		p, err := ParsePhase(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Workload is a UI automation script. Each phase can be invoked on its own
// and fails independently.
type Workload interface {
	Name() string
	Setup(a *uiauto.Automation) error
	RunWorkload(a *uiauto.Automation) error
	ExtractResults(a *uiauto.Automation) error
	Teardown(a *uiauto.Automation) error
}

// Base gives no-op phases. Embed it and override what the workload needs.
type Base struct{}

func (Base) Setup(*uiauto.Automation) error          { return nil }
func (Base) RunWorkload(*uiauto.Automation) error    { return nil }
func (Base) ExtractResults(*uiauto.Automation) error { return nil }
func (Base) Teardown(*uiauto.Automation) error       { return nil }

// call dispatches p to w.
func call(w Workload, p Phase, a *uiauto.Automation) error {
	switch p {
	case PhaseSetup:
		return w.Setup(a)
	case PhaseRunWorkload:
		return w.RunWorkload(a)
	case PhaseExtractResults:
		return w.ExtractResults(a)
	case PhaseTeardown:
		return w.Teardown(a)
	default:
		return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown phase %q", p))
	}
}

// Factory creates a fresh workload instance.
type Factory func() Workload

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a workload available by name. It panics if the name is
// already taken or f is nil.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("workload: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("workload: Register called twice for " + name)
	}
	registry[name] = f
}

// Lookup creates the workload registered under name.
func Lookup(name string) (Workload, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown workload %q (available: %s)", name, strings.Join(Names(), ", ")))
	}
	return f(), nil
}

// Names returns the registered workload names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
