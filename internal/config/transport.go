package config

import "context"

// Transport defines the interface for worker communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote workers).
//
// The default implementation spawns a subprocess and talks to it over
// stdio. Custom transports can be injected via Options.Transport.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// This is called before any requests are sent or lines received.
	Start(ctx context.Context) error

	// Lines returns channels for receiving output lines and errors.
	// The line channel yields complete lines from the worker's stdout,
	// already stripped of their terminators. The error channel yields any
	// errors that occur during reading, including process exit failures.
	// Both channels are closed when reading completes.
	Lines(ctx context.Context) (<-chan []byte, <-chan error)

	// Send writes one request line to the worker.
	// The data should be a complete document (a newline is appended if
	// missing). This method must be safe for concurrent use: lines from
	// concurrent senders never interleave.
	Send(ctx context.Context, data []byte) error

	// EndInput signals that no more input will be sent.
	// For process-based transports, this closes stdin.
	EndInput() error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error
}
