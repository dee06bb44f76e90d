package errors

import (
	"errors"
	"fmt"
)

// SidecarError is the base interface for all errors produced by this module.
type SidecarError interface {
	error
	IsSidecarError() bool
}

// Compile-time verification that all error types implement SidecarError.
var (
	_ SidecarError = (*WorkerNotFoundError)(nil)
	_ SidecarError = (*WorkerError)(nil)
	_ SidecarError = (*SerializationError)(nil)
	_ SidecarError = (*ProcessError)(nil)
	_ SidecarError = (*InvalidParamsError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotStarted indicates the client has not been started yet.
	ErrClientNotStarted = errors.New("client not started")

	// ErrClientAlreadyStarted indicates the client is already running.
	ErrClientAlreadyStarted = errors.New("client already started")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with New()")

	// ErrTransportUnavailable indicates the worker's input pipe is absent or
	// closed, so no request can be written.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrCallTimeout indicates a call expired before the worker answered.
	ErrCallTimeout = errors.New("call timeout")

	// ErrRouterStopped indicates the read pipeline has stopped.
	ErrRouterStopped = errors.New("router stopped")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrSubscriptionClosed indicates the event subscription has been closed.
	ErrSubscriptionClosed = errors.New("subscription closed")

	// ErrJournalDisabled indicates the client was started without a journal.
	ErrJournalDisabled = errors.New("journal not enabled")
)

// WorkerNotFoundError indicates the worker binary was not found.
type WorkerNotFoundError struct {
	Command string
	Err     error
}

func (e *WorkerNotFoundError) Error() string {
	return fmt.Sprintf("worker command %q not found: %v", e.Command, e.Err)
}

func (e *WorkerNotFoundError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *WorkerNotFoundError) IsSidecarError() bool { return true }

// WorkerError is an error the worker reported in a response document.
// The message is surfaced verbatim; the numeric code is preserved for
// callers that switch on it.
type WorkerError struct {
	Code    int32
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}

// IsSidecarError implements SidecarError.
func (e *WorkerError) IsSidecarError() bool { return true }

// SerializationError indicates a request could not be encoded. The call
// never reached the wire and its pending entry has been rolled back.
type SerializationError struct {
	Method string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to encode request for %q: %v", e.Method, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *SerializationError) IsSidecarError() bool { return true }

// ProcessError indicates the worker process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("worker process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("worker process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *ProcessError) IsSidecarError() bool { return true }

// InvalidParamsError indicates call params failed validation against the
// registered method schema. Nothing was written to the wire.
type InvalidParamsError struct {
	Method string
	Err    error
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params for %q: %v", e.Method, e.Err)
}

func (e *InvalidParamsError) Unwrap() error {
	return e.Err
}

// IsSidecarError implements SidecarError.
func (e *InvalidParamsError) IsSidecarError() bool { return true }
