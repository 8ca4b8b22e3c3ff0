package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestPhaseStatus_String(t *testing.T) {
	tests := []struct {
		status   PhaseStatus
		expected string
	}{
		{StatusPending, "pending"},
		{StatusRunning, "running"},
		{StatusPassed, "passed"},
		{StatusFailed, "failed"},
		{StatusErrored, "errored"},
		{StatusSkipped, "skipped"},
		{PhaseStatus(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("PhaseStatus(%d).String() = %q, want %q", tt.status, got, tt.expected)
		}
	}
}

func TestPhaseStatus_IsSuccess(t *testing.T) {
	if !StatusPassed.IsSuccess() {
		t.Error("StatusPassed.IsSuccess() = false, want true")
	}
	for _, s := range []PhaseStatus{StatusFailed, StatusErrored, StatusSkipped, StatusPending} {
		if s.IsSuccess() {
			t.Errorf("PhaseStatus(%s).IsSuccess() = true, want false", s)
		}
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want PhaseStatus
	}{
		{"nil", nil, StatusPassed},
		{"element not found", fmt.Errorf("click: %w", ErrElementNotFound), StatusFailed},
		{"timeout", ErrTimeout, StatusFailed},
		{"decode", ErrDecode, StatusErrored},
		{"direction", ErrInvalidDirection, StatusErrored},
		{"unknown", errors.New("adb died"), StatusErrored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForError(tt.err); got != tt.want {
				t.Errorf("StatusForError() = %s, want %s", got, tt.want)
			}
		})
	}
}
