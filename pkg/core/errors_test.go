package core

import (
	"errors"
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestExecutionError_Error(t *testing.T) {
	if got := ErrTimeout.Error(); got != "operation timed out" {
		t.Errorf("Error() = %q", got)
	}

	err := ErrElementNotFound.WithCause(errors.New("no such element"))
	if got := err.Error(); got != "element not found: no such element" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExecutionError_CopiesLeaveSentinelAlone(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrTimeout.WithMessage("log text not seen").WithCause(cause)

	if err.Message != "log text not seen" || err.Cause != cause {
		t.Errorf("copy = %+v", err)
	}
	if err.Code != ErrTimeout.Code || err.Category != ErrTimeout.Category {
		t.Error("copy changed code or category")
	}
	if ErrTimeout.Cause != nil || ErrTimeout.Message != "operation timed out" {
		t.Error("sentinel was modified")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
}

func TestExecutionError_IsMatchesSentinelCopies(t *testing.T) {
	err := fmt.Errorf("phase failed: %w", ErrElementNotFound.WithMessage("could not find view"))

	if !errors.Is(err, ErrElementNotFound) {
		t.Error("errors.Is() should match a copy of the sentinel")
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("errors.Is() should not match a different code")
	}
	if errors.Is(err, &ExecutionError{}) {
		t.Error("errors.Is() should not match an empty code")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrDecode, ErrCategoryConfig, "decode_error"},
		{ErrElementNotFound, ErrCategoryAssertion, "element_not_found"},
		{ErrTimeout, ErrCategoryTimeout, "timeout"},
		{ErrInvalidDirection, ErrCategoryInput, "invalid_direction"},
		{ErrDeviceDisconnected, ErrCategoryConnection, "device_disconnected"},
		{ErrServerUnreachable, ErrCategoryConnection, "server_unreachable"},
		{ErrInvalidConfig, ErrCategoryConfig, "invalid_config"},
		{ErrMissingRequired, ErrCategoryConfig, "missing_required"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryAssertion, "assertion"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryConnection, "connection"},
		{ErrCategoryInput, "input"},
		{ErrCategoryConfig, "config"},
		{ErrorCategory(99), "unknown"},
		{ErrorCategory(-1), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestErrorCategory_MarshalYAML(t *testing.T) {
	out, err := yaml.Marshal(map[string]ErrorCategory{"category": ErrCategoryTimeout})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "category: timeout\n" {
		t.Errorf("yaml = %q", out)
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrCategoryNone},
		{"plain", errors.New("boom"), ErrCategoryNone},
		{"direct", ErrTimeout, ErrCategoryTimeout},
		{"wrapped", fmt.Errorf("run: %w", ErrDecode), ErrCategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategoryOf(tt.err); got != tt.want {
				t.Errorf("CategoryOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
