package sidecarrpc

import (
	"context"
)

// Client provides a stateful connection to a single worker process.
//
// A client owns one worker subprocess (or an injected transport),
// multiplexes concurrent calls over the worker's stdin/stdout pipes, and
// fans unsolicited worker events out to subscribers. Calls block until the
// worker answers, the context is cancelled, the transport fails, or a
// fixed 60 second timeout expires; events flow independently of any call.
//
// Lifecycle: clients are single-use. After Close(), create a new client
// with NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithWorkerCommand("agent"),
//	    WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Stream assistant output while the call is in flight
//	sub, err := client.Subscribe(EventAssistantDelta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sub.Close()
//
//	go func() {
//	    for evt := range sub.Events() {
//	        var d DeltaEvent
//	        if evt.Decode(&d) == nil {
//	            fmt.Print(d.Delta)
//	        }
//	    }
//	}()
//
//	result, err := client.SendMessage(ctx, SendMessageParams{
//	    APIKey:   apiKey,
//	    Model:    "claude-sonnet-4-5",
//	    Messages: []ChatMessage{{Role: "user", Content: "Hello"}},
//	})
type Client interface {
	// Start spawns the worker process and begins reading its output.
	// Must be called before any other method except RegisterMethod.
	// Returns WorkerNotFoundError if the worker binary cannot be found.
	Start(ctx context.Context, opts ...Option) error

	// Call sends a request to the worker and blocks until the matching
	// response arrives. The returned string is the worker's result payload.
	// A worker-reported failure surfaces as a WorkerError with the worker's
	// message verbatim. Calls race the context, the transport's health and
	// a fixed 60 second timeout; concurrent calls are safe and independent.
	Call(ctx context.Context, method string, params any) (string, error)

	// SendMessage invokes the sendMessage worker method with typed params.
	SendMessage(ctx context.Context, params SendMessageParams) (string, error)

	// Subscribe registers interest in events carrying the given tag.
	// Use AllTags to receive every event. Delivery is best-effort: events
	// arriving while the subscription's buffer is full are dropped, never
	// blocking the reader pipeline.
	Subscribe(tag string) (*Subscription, error)

	// RegisterMethod adds a method to the client's catalog. When a spec
	// carries a schema, params are validated against it before each call
	// and a failing document yields InvalidParamsError without touching
	// the wire. Registration is allowed before Start.
	RegisterMethod(spec MethodSpec) error

	// Methods lists registered methods sorted by name.
	Methods() []MethodSpec

	// EventsDropped reports how many events were discarded because a
	// subscriber's buffer was full.
	EventsDropped() uint64

	// RecentTraffic returns the newest journaled wire documents, most
	// recent first. Requires WithJournal; returns ErrJournalDisabled
	// otherwise.
	RecentTraffic(ctx context.Context, limit int) ([]Entry, error)

	// Close terminates the worker and cleans up resources.
	// After Close(), the client cannot be reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new client.
//
// Call Start() with options to spawn the worker:
//
//	client := NewClient()
//	err := client.Start(ctx,
//	    WithWorkerCommand("agent"),
//	    WithLogger(slog.Default()),
//	)
func NewClient() Client {
	return newClientImpl()
}
