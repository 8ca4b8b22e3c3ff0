package uiauto

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/uiauto/pkg/core"
	"github.com/devicelab-dev/uiauto/pkg/logger"
)

// ClassTextView scopes WaitText lookups.
const ClassTextView = "android.widget.TextView"

// By selects what a SearchCriterion matches against.
type By int

const (
	// ByResourceID matches the resource ID exactly.
	ByResourceID By = iota
	// ByText matches elements whose text contains the match string.
	ByText
	// ByDescription matches elements whose content description contains the match string.
	ByDescription
)

func (b By) String() string {
	switch b {
	case ByResourceID:
		return "resource ID"
	case ByText:
		return "text"
	case ByDescription:
		return "description"
	default:
		return fmt.Sprintf("By(%d)", int(b))
	}
}

// SearchCriterion describes one element lookup.
type SearchCriterion struct {
	By        By
	Match     string
	ClassName string        // optional scope
	Timeout   time.Duration // 0 = the Automation's wait timeout
}

// ResourceID returns a criterion matching the resource ID exactly.
func ResourceID(id string) SearchCriterion {
	return SearchCriterion{By: ByResourceID, Match: id}
}

// Text returns a criterion matching text containing s.
func Text(s string) SearchCriterion {
	return SearchCriterion{By: ByText, Match: s}
}

// Description returns a criterion matching a content description containing s.
func Description(s string) SearchCriterion {
	return SearchCriterion{By: ByDescription, Match: s}
}

// In scopes the criterion to a class name.
func (c SearchCriterion) In(className string) SearchCriterion {
	c.ClassName = className
	return c
}

// Within overrides the wait timeout.
func (c SearchCriterion) Within(timeout time.Duration) SearchCriterion {
	c.Timeout = timeout
	return c
}

// Selector builds the device-level selector for c.
func (c SearchCriterion) Selector() core.Selector {
	sel := core.Selector{ClassName: c.ClassName}
	switch c.By {
	case ByResourceID:
		sel.ResourceID = c.Match
	case ByText:
		sel.TextContains = c.Match
	case ByDescription:
		sel.DescriptionContains = c.Match
	}
	return sel
}

func (c SearchCriterion) String() string {
	if c.ClassName != "" {
		return fmt.Sprintf("%q %q", c.ClassName, c.Match)
	}
	return fmt.Sprintf("view with %s: %s", c.By, c.Match)
}

// ElementNotFoundError reports an element that did not appear in time.
// Criterion is zero when the wait was on an existing handle.
type ElementNotFoundError struct {
	Criterion SearchCriterion
	Selector  core.Selector
	Timeout   time.Duration
}

func (e *ElementNotFoundError) Error() string {
	what := e.Criterion.String()
	if e.Criterion.Match == "" {
		what = "object " + e.Selector.String()
	}
	return fmt.Sprintf("could not find %s within %v", what, e.Timeout)
}

// Unwrap lets errors.Is match core.ErrElementNotFound.
func (e *ElementNotFoundError) Unwrap() error {
	return core.ErrElementNotFound
}

// FindAndWait resolves c and blocks until a matching element exists.
// It fails with *ElementNotFoundError once the timeout elapses.
func (a *Automation) FindAndWait(c SearchCriterion) (core.Object, error) {
	timeout := orDefault(c.Timeout, a.waitTimeout)
	return a.waitFor(c, c.Selector(), timeout)
}

func (a *Automation) waitFor(c SearchCriterion, sel core.Selector, timeout time.Duration) (core.Object, error) {
	logger.Debug("waiting up to %v for %s", timeout, sel)
	obj := a.device.FindObject(sel)
	if !obj.WaitForExists(timeout) {
		return nil, &ElementNotFoundError{Criterion: c, Selector: sel, Timeout: timeout}
	}
	return obj, nil
}

// ObjectByResourceID waits the default time for an element with the given resource ID.
func (a *Automation) ObjectByResourceID(id string) (core.Object, error) {
	return a.FindAndWait(ResourceID(id))
}

// ObjectByText waits the default time for an element whose text contains text.
func (a *Automation) ObjectByText(text string) (core.Object, error) {
	return a.FindAndWait(Text(text))
}

// ObjectByDescription waits the default time for an element whose description contains desc.
func (a *Automation) ObjectByDescription(desc string) (core.Object, error) {
	return a.FindAndWait(Description(desc))
}

// WaitText waits for a TextView showing exactly text. A zero timeout selects
// DefaultTextWaitTimeout.
func (a *Automation) WaitText(text string, timeout time.Duration) error {
	timeout = orDefault(timeout, a.textWaitTimeout)
	c := Text(text).In(ClassTextView).Within(timeout)
	sel := core.Selector{Text: text, ClassName: ClassTextView}
	_, err := a.waitFor(c, sel, timeout)
	return err
}

// WaitObject waits for obj to exist. A zero timeout selects DefaultTextWaitTimeout.
func (a *Automation) WaitObject(obj core.Object, timeout time.Duration) error {
	timeout = orDefault(timeout, a.textWaitTimeout)
	if !obj.WaitForExists(timeout) {
		return &ElementNotFoundError{Selector: obj.Selector(), Timeout: timeout}
	}
	return nil
}

// WaitUntilGone reports whether obj disappeared within timeout. It never fails.
// A zero timeout selects the Automation's wait timeout.
func (a *Automation) WaitUntilGone(obj core.Object, timeout time.Duration) bool {
	timeout = orDefault(timeout, a.waitTimeout)
	gone := obj.WaitUntilGone(timeout)
	if !gone {
		logger.Debug("%s still present after %v", obj.Selector(), timeout)
	}
	return gone
}
