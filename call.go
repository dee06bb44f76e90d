package sidecarrpc

import (
	"context"
	"fmt"
)

// Call performs a one-shot request: it spawns a worker, sends a single
// request, waits for the matching response, and shuts the worker down.
//
// For multiple calls against one worker, or to receive events, use
// NewClient and keep the client open.
//
// Example usage:
//
//	result, err := sidecarrpc.Call(ctx, "sendMessage", params,
//	    sidecarrpc.WithWorkerCommand("agent"),
//	    sidecarrpc.WithLogger(slog.Default()),
//	)
func Call(ctx context.Context, method string, params any, opts ...Option) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	client := NewClient()
	if err := client.Start(ctx, opts...); err != nil {
		return "", fmt.Errorf("failed to start client: %w", err)
	}

	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Warn("failed to close client", "error", closeErr)
		}
	}()

	return client.Call(ctx, method, params)
}
