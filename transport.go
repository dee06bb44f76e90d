package sidecarrpc

import "github.com/wagiedev/sidecar-rpc-go/internal/config"

// Transport defines the interface for worker communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., remote workers).
//
// The default implementation spawns a worker subprocess.
// Custom transports can be injected via WithTransport.
type Transport = config.Transport
