package inference

import (
	"errors"
	"fmt"
)

// FailureKind classifies how a submission failed. Callers branch on this to
// present different guidance (retry later vs. fix the input vs. report a bug).
type FailureKind string

const (
	KindTransport FailureKind = "TRANSPORT" // network/HTTP failure
	KindUpstream  FailureKind = "UPSTREAM"  // service emitted an explicit error event
	KindTimeout   FailureKind = "TIMEOUT"   // poll budget exhausted without a terminal event
	KindDecode    FailureKind = "DECODE"    // payload shape violates the expected envelope
)

// Error is a classified protocol failure.
type Error struct {
	Kind    FailureKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind FailureKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func errorf(kind FailureKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure kind from err, or "" if err carries none.
func KindOf(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
