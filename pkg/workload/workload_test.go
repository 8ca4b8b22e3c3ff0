package workload

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/uiauto"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want Phase
	}{
		{"setup", PhaseSetup},
		{"run", PhaseRunWorkload},
		{"runWorkload", PhaseRunWorkload},
		{"EXTRACT", PhaseExtractResults},
		{"extractResults", PhaseExtractResults},
		{" teardown ", PhaseTeardown},
	}
	for _, tt := range tests {
		got, err := ParsePhase(tt.in)
		if err != nil {
			t.Errorf("ParsePhase(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePhase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParsePhase("initialize"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestParsePhases(t *testing.T) {
	got, err := ParsePhases("all")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Phases, got); diff != "" {
		t.Errorf("all mismatch (-want +got):\n%s", diff)
	}

	got, err = ParsePhases("setup,run")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Phase{PhaseSetup, PhaseRunWorkload}, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParsePhases("setup,bogus"); err == nil {
		t.Error("expected error")
	}
}

type named struct {
	Base
	name string
}

func (n *named) Name() string { return n.name }

func TestRegistry(t *testing.T) {
	Register("registry-test", func() Workload { return &named{name: "registry-test"} })

	w, err := Lookup("registry-test")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if w.Name() != "registry-test" {
		t.Errorf("Name() = %q", w.Name())
	}

	found := false
	for _, n := range Names() {
		if n == "registry-test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Names() = %v, missing registry-test", Names())
	}

	if _, err := Lookup("no-such-workload"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup-test", func() Workload { return &named{name: "dup-test"} })
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("dup-test", func() Workload { return &named{name: "dup-test"} })
}

func TestBaseIsNoop(t *testing.T) {
	w := &named{name: "noop"}
	for _, p := range Phases {
		if err := call(w, p, (*uiauto.Automation)(nil)); err != nil {
			t.Errorf("%s: %v", p, err)
		}
	}
	if err := call(w, Phase("bogus"), nil); err == nil {
		t.Error("expected error for unknown phase")
	}
}
