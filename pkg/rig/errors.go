package rig

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification with errors.Is. The typed errors
// below wrap these so callers can branch on kind without inspecting
// message text.
var (
	ErrCapability = errors.New("capability error")
	ErrFraming    = errors.New("framing error")
	ErrTimeout    = errors.New("timeout")
	ErrNak        = errors.New("device rejected command")
	ErrTransport  = errors.New("transport error")
)

// CapabilityError reports an operation or value the connected model does
// not support. Raised before any bytes are constructed, never retried.
type CapabilityError struct {
	Model  string
	Op     string
	Reason string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability error: %s: %s (%s)", e.Op, e.Reason, e.Model)
}

func (e *CapabilityError) Is(target error) bool { return target == ErrCapability }

// FramingError reports a malformed or incomplete wire frame. The
// connection stays usable; the failed exchange is surfaced to the caller.
type FramingError struct {
	Family string
	Detail string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing error (%s): %s", e.Family, e.Detail)
}

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// TimeoutError reports a read that did not complete within the window.
// Faults the owning session.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for response to %s", e.Op)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// NakError reports an explicit rejection from the device. Surfaced
// verbatim and never retried automatically.
type NakError struct {
	Op string
}

func (e *NakError) Error() string {
	return fmt.Sprintf("device rejected %s command", e.Op)
}

func (e *NakError) Is(target error) bool { return target == ErrNak }

// TransportError reports an I/O failure on the serial channel. Fatal to
// the session until an explicit reconnect.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
