package sidecarrpc

import "github.com/wagiedev/sidecar-rpc-go/internal/errors"

// Re-export error types from internal package

// WorkerNotFoundError indicates the worker binary was not found.
type WorkerNotFoundError = errors.WorkerNotFoundError

// WorkerError is an error response from the worker, surfaced verbatim.
type WorkerError = errors.WorkerError

// ProcessError indicates the worker process failed.
type ProcessError = errors.ProcessError

// SerializationError indicates a request could not be encoded.
type SerializationError = errors.SerializationError

// InvalidParamsError indicates params failed a registered method schema.
type InvalidParamsError = errors.InvalidParamsError

// SidecarError is the base interface for all errors produced by this module.
type SidecarError = errors.SidecarError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotStarted indicates the client has not been started yet.
	ErrClientNotStarted = errors.ErrClientNotStarted

	// ErrClientAlreadyStarted indicates the client is already running.
	ErrClientAlreadyStarted = errors.ErrClientAlreadyStarted

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrTransportUnavailable indicates the worker's input pipe is absent or
	// closed, so no request can be written.
	ErrTransportUnavailable = errors.ErrTransportUnavailable

	// ErrCallTimeout indicates a call expired before the worker answered.
	ErrCallTimeout = errors.ErrCallTimeout

	// ErrSubscriptionClosed indicates the event subscription has been closed.
	ErrSubscriptionClosed = errors.ErrSubscriptionClosed

	// ErrJournalDisabled indicates the client was started without a journal.
	ErrJournalDisabled = errors.ErrJournalDisabled
)
