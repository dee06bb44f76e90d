// Package errors defines error types for the sidecar RPC client.
//
// This package provides structured error types that wrap different failure
// scenarios when talking to a worker process. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
