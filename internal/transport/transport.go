// internal/transport/transport.go
package transport

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// ConnectionType represents how the printer is attached
type ConnectionType string

const (
	ConnectionSerial   ConnectionType = "serial"
	ConnectionUSB      ConnectionType = "usb"
	ConnectionNetwork  ConnectionType = "network"
	ConnectionFallback ConnectionType = "fallback"
)

// State represents the transport lifecycle state
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StatePrinting
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StatePrinting:
		return "PRINTING"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode classifies transport failures. Every failed PrintResult
// carries exactly one of these so callers can distinguish the cases
// without parsing messages.
type ErrorCode string

const (
	ErrCapabilityUnavailable ErrorCode = "CAPABILITY_UNAVAILABLE"
	ErrNoDevice              ErrorCode = "NO_DEVICE"
	ErrOpenFailed            ErrorCode = "OPEN_FAILED"
	ErrWriteFailed           ErrorCode = "WRITE_FAILED"
	ErrNotImplemented        ErrorCode = "NOT_IMPLEMENTED"
)

// Error is the typed error adapters return across the adapter boundary.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// ErrorInfo is the JSON-facing error detail inside a PrintResult.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Details string    `json:"details,omitempty"`
}

// PrintResult is the outcome of every public transport operation. It is
// a value, not an exception: failures are reported here and never panic
// across the public boundary.
type PrintResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

func successResult(message string) *PrintResult {
	return &PrintResult{Success: true, Message: message}
}

func failureResult(code ErrorCode, message string, cause error) *PrintResult {
	info := &ErrorInfo{Code: code}
	if cause != nil {
		info.Details = cause.Error()
	}
	return &PrintResult{Success: false, Message: message, Error: info}
}

// resultFromError converts an adapter error into a PrintResult,
// preserving the taxonomy code when the adapter supplied one.
func resultFromError(err error, fallbackMessage string) *PrintResult {
	if te, ok := err.(*Error); ok {
		return failureResult(te.Code, te.Message, te.Cause)
	}
	return failureResult(ErrOpenFailed, fallbackMessage, err)
}

// Connection is the uniform contract every hardware adapter implements.
// A connection holds at most one underlying handle; Open and Close are
// the only places the handle is acquired or released.
type Connection interface {
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool
	Write(ctx context.Context, data []byte) error
	Type() ConnectionType
}

// CapabilityProbe reports whether the host exposes a given hardware
// API. Injectable so tests can simulate presence or absence
// deterministically.
type CapabilityProbe interface {
	HasSerial() bool
	HasUSB() bool
}

// hostProbe checks the real host.
type hostProbe struct{}

func (hostProbe) HasSerial() bool {
	_, err := serial.GetPortsList()
	return err == nil
}

func (hostProbe) HasUSB() bool {
	// libusb is linked in; enumeration failures surface at open time
	return true
}
