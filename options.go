package sidecarrpc

import (
	"log/slog"

	"github.com/wagiedev/sidecar-rpc-go/internal/config"
)

// Option configures Options using the functional options pattern.
// This is the primary option type for configuring clients and one-shot calls.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithWorkerCommand sets the worker binary to spawn. A bare name is
// resolved via PATH; a name containing a path separator is used as given.
// Defaults to DefaultWorkerCommand.
func WithWorkerCommand(command string) Option {
	return func(o *Options) {
		o.Command = command
	}
}

// WithArgs sets extra arguments passed to the worker binary.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.Args = args
	}
}

// WithEnv provides additional environment variables for the worker process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithCwd sets the working directory for the worker process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithStderr sets a callback invoked with each line the worker writes to
// stderr. Stderr never carries protocol documents; this is purely for
// diagnostics.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// ===== Events and Journal =====

// WithEventBuffer sets the per-subscription event channel capacity.
// Events that arrive while a subscription's buffer is full are dropped.
func WithEventBuffer(size int) Option {
	return func(o *Options) {
		o.EventBuffer = size
	}
}

// WithJournal enables the wire-traffic journal at the given SQLite
// database path. Journaled traffic is available via RecentTraffic.
func WithJournal(path string) Option {
	return func(o *Options) {
		o.JournalPath = path
	}
}

// ===== Advanced =====

// WithTransport injects a custom transport implementation.
// The transport must implement the Transport interface.
func WithTransport(transport config.Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
