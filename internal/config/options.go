// Package config provides configuration types for the sidecar RPC client.
package config

import (
	"log/slog"
)

// DefaultWorkerCommand is the worker binary spawned when none is configured.
const DefaultWorkerCommand = "agent"

// Options configures a client and its worker process.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Command is the worker binary to spawn. A bare name is resolved via
	// PATH; a name containing a path separator is used as given.
	// Defaults to DefaultWorkerCommand.
	Command string

	// Args are extra arguments passed to the worker binary.
	Args []string

	// Env provides additional environment variables for the worker process.
	Env map[string]string

	// Cwd sets the working directory for the worker process.
	Cwd string

	// Stderr is a callback invoked with each line the worker writes to
	// stderr. Stderr never carries protocol documents; this is purely for
	// diagnostics.
	Stderr func(string)

	// EventBuffer is the per-subscription channel capacity. Values < 1 use
	// the sink's default.
	EventBuffer int

	// JournalPath enables the wire-traffic journal at the given SQLite
	// database path. Empty disables journaling.
	JournalPath string

	// Transport allows injecting a custom transport implementation.
	// If nil, a worker subprocess transport is created automatically.
	// This field is not serialized to JSON.
	Transport Transport `json:"-"`
}
