// Package subprocess provides the worker subprocess transport.
//
// This package implements the Transport interface by spawning the worker
// as a child process and communicating via stdin/stdout. It handles process
// lifecycle, per-stream line demultiplexing, and exit diagnostics.
package subprocess
