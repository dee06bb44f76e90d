package sidecarrpc

import (
	"context"

	"github.com/wagiedev/sidecar-rpc-go/internal/client"
)

// clientWrapper wraps the internal client to adapt it to the public interface.
type clientWrapper struct {
	impl *client.Client
}

// Compile-time check that *clientWrapper implements the Client interface.
var _ Client = (*clientWrapper)(nil)

// newClientImpl creates the internal client implementation.
func newClientImpl() Client {
	return &clientWrapper{impl: client.New()}
}

// Start spawns the worker process and begins reading its output.
func (c *clientWrapper) Start(ctx context.Context, opts ...Option) error {
	// Options is a type alias to config.Options, so no conversion is needed.
	return c.impl.Start(ctx, applyOptions(opts))
}

// Call sends a request to the worker and waits for the matching response.
func (c *clientWrapper) Call(ctx context.Context, method string, params any) (string, error) {
	return c.impl.Call(ctx, method, params)
}

// SendMessage invokes the sendMessage worker method with typed params.
func (c *clientWrapper) SendMessage(ctx context.Context, params SendMessageParams) (string, error) {
	return c.impl.SendMessage(ctx, params)
}

// Subscribe registers interest in events carrying the given tag.
func (c *clientWrapper) Subscribe(tag string) (*Subscription, error) {
	return c.impl.Subscribe(tag)
}

// RegisterMethod adds a method to the client's catalog.
func (c *clientWrapper) RegisterMethod(spec MethodSpec) error {
	return c.impl.RegisterMethod(spec)
}

// Methods lists registered methods sorted by name.
func (c *clientWrapper) Methods() []MethodSpec {
	return c.impl.Methods()
}

// EventsDropped reports how many events were discarded because a
// subscriber's buffer was full.
func (c *clientWrapper) EventsDropped() uint64 {
	return c.impl.EventsDropped()
}

// RecentTraffic returns the newest journaled wire documents.
func (c *clientWrapper) RecentTraffic(ctx context.Context, limit int) ([]Entry, error) {
	return c.impl.RecentTraffic(ctx, limit)
}

// Close terminates the worker and cleans up resources.
func (c *clientWrapper) Close() error {
	return c.impl.Close()
}
