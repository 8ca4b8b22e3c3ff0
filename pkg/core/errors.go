package core

import (
	"errors"
	"fmt"
)

// ErrorCategory groups errors by what a phase result should blame.
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota
	ErrCategoryAssertion                // element not found
	ErrCategoryTimeout                  // wait or log poll ran out of time
	ErrCategoryConnection               // adb or UIAutomator2 server gone
	ErrCategoryInput                    // bad gesture request
	ErrCategoryConfig                   // malformed parameters or configuration
)

var categoryNames = [...]string{
	ErrCategoryNone:       "none",
	ErrCategoryAssertion:  "assertion",
	ErrCategoryTimeout:    "timeout",
	ErrCategoryConnection: "connection",
	ErrCategoryInput:      "input",
	ErrCategoryConfig:     "config",
}

func (c ErrorCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// MarshalYAML renders the category by name.
func (c ErrorCategory) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// ExecutionError is a categorized error. The package-level sentinels below
// are templates: callers derive copies with WithMessage and WithCause, and
// errors.Is matches a copy against its sentinel by Code.
type ExecutionError struct {
	Category ErrorCategory
	Code     string // stable, machine-readable
	Message  string
	Cause    error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an ExecutionError with the same non-empty Code.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	return ok && t != nil && t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of e wrapping cause.
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	c := *e
	c.Cause = cause
	return &c
}

// WithMessage returns a copy of e with msg replacing the message.
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	c := *e
	c.Message = msg
	return &c
}

var (
	ErrDecode = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "decode_error",
		Message:  "malformed parameter value",
	}
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "timeout",
		Message:  "operation timed out",
	}
	ErrInvalidDirection = &ExecutionError{
		Category: ErrCategoryInput,
		Code:     "invalid_direction",
		Message:  "no direction specified",
	}
	ErrDeviceDisconnected = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "device_disconnected",
		Message:  "device connection lost",
	}
	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
)

// CategoryOf returns the category of the first ExecutionError in err's chain.
func CategoryOf(err error) ErrorCategory {
	var e *ExecutionError
	if errors.As(err, &e) {
		return e.Category
	}
	return ErrCategoryNone
}
