package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSilentUntilInit(t *testing.T) {
	Close()
	Info("dropped %d", 1)
	if GetWriter() != io.Discard {
		t.Error("expected io.Discard before Init")
	}
}

func TestInitWritesLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uiauto.log")
	if err := Init(path); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	defer Close()

	SetVerbose(false)
	Info("waiting for %s", "ok")
	Debug("hidden")
	SetVerbose(true)
	Debug("shown")
	Warn("careful")
	Error("boom")
	SetVerbose(false)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"[INFO] waiting for ok", "[DEBUG] shown", "[WARN] careful", "[ERROR] boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug line written while not verbose")
	}
}

func TestInitBadPath(t *testing.T) {
	if err := Init(filepath.Join(t.TempDir(), "missing", "x.log")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestInitWriter(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	defer Close()

	Warn("low battery")
	if !strings.Contains(buf.String(), "[WARN] low battery") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if GetWriter() != io.Discard {
		t.Error("GetWriter should not expose a caller-owned writer")
	}
}
