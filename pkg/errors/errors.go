// Package errors provides the structured error kinds used by the scoring
// engine. Callers check kinds with Is(err, ErrX) or errors.As instead of
// matching message text.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError indicates invalid input, configuration or dataset content.
type ValidationError struct {
	Op  string // where it happened (package.Function)
	Msg string // human friendly message
	Err error  // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error           { return e.Err }
func (e *ValidationError) Operation() string       { return e.Op }
func (e *ValidationError) Message() string         { return e.Msg }
func (e *ValidationError) Context() map[string]any { return map[string]any{"op": e.Op, "msg": e.Msg} }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// UnknownMethodError is returned when a method identifier does not name a
// registered similarity method.
type UnknownMethodError struct {
	Method    string
	Available []string
}

func (e *UnknownMethodError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown similarity method %q", e.Method)
	}
	return fmt.Sprintf("unknown similarity method %q (available: %s)", e.Method, strings.Join(e.Available, ", "))
}

func (e *UnknownMethodError) Context() map[string]any {
	return map[string]any{"method": e.Method, "available": e.Available}
}

func NewUnknownMethod(method string, available []string) error {
	return &UnknownMethodError{Method: method, Available: available}
}

// ExternalAPIError represents failures in external services (LLM endpoints, SDKs).
type ExternalAPIError struct {
	Op     string
	Msg    string
	Err    error
	System string // optional system name e.g. "openai"
}

func (e *ExternalAPIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	sys := e.System
	if sys == "" {
		sys = "external"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", sys, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", sys, e.Op, e.Msg)
}

func (e *ExternalAPIError) Unwrap() error     { return e.Err }
func (e *ExternalAPIError) Operation() string { return e.Op }
func (e *ExternalAPIError) Message() string   { return e.Msg }
func (e *ExternalAPIError) Context() map[string]any {
	return map[string]any{"op": e.Op, "msg": e.Msg, "system": e.System}
}

func NewExternal(op, system, msg string, err error) error {
	return &ExternalAPIError{Op: op, System: system, Msg: msg, Err: err}
}

// BizError is for domain failures that aren't programmer bugs
// (template rendering, empty benchmark selection).
type BizError struct {
	Op  string
	Msg string
	Err error
}

func (e *BizError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("biz: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("biz: %s: %s", e.Op, e.Msg)
}

func (e *BizError) Unwrap() error           { return e.Err }
func (e *BizError) Operation() string       { return e.Op }
func (e *BizError) Message() string         { return e.Msg }
func (e *BizError) Context() map[string]any { return map[string]any{"op": e.Op, "msg": e.Msg} }

func NewBiz(op, msg string, err error) error { return &BizError{Op: op, Msg: msg, Err: err} }

// Kind sentinels for Is.
// Example: if errors.Is(err, errors.ErrUnknownMethod) { ... }
var (
	ErrValidation    = &ValidationError{}
	ErrUnknownMethod = &UnknownMethodError{}
	ErrExternal      = &ExternalAPIError{}
	ErrBiz           = &BizError{}
)

// Is reports whether err carries the same kind as target. Kind sentinels
// are matched with errors.As against the zero-value pointer of each type.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *ValidationError:
		var v *ValidationError
		return errors.As(err, &v)
	case *UnknownMethodError:
		var u *UnknownMethodError
		return errors.As(err, &u)
	case *ExternalAPIError:
		var ex *ExternalAPIError
		return errors.As(err, &ex)
	case *BizError:
		var b *BizError
		return errors.As(err, &b)
	default:
		return errors.Is(err, target)
	}
}
