package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/sidecar-rpc-go/internal/config"
	"github.com/wagiedev/sidecar-rpc-go/internal/errors"
	"github.com/wagiedev/sidecar-rpc-go/internal/events"
	"github.com/wagiedev/sidecar-rpc-go/internal/journal"
	"github.com/wagiedev/sidecar-rpc-go/internal/protocol"
	"github.com/wagiedev/sidecar-rpc-go/internal/subprocess"
	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// defaultCallTimeout bounds how long a call waits for the worker's
// response. Calls that expire are dropped from the pending table; a late
// response is discarded.
const defaultCallTimeout = 60 * time.Second

// Client owns one worker process and the protocol machinery around it:
// the transport, the correlator that matches responses to calls, the
// router that drains the worker's stdout, and the event sink.
type Client struct {
	log       *slog.Logger
	options   *config.Options
	transport config.Transport
	corr      *protocol.Correlator
	router    *protocol.Router
	sink      *events.Sink
	journal   *journal.Journal

	// Registered method schemas, consulted before each call
	methodsMu sync.RWMutex
	methods   map[string]*registeredMethod

	// How long Call waits for the worker's answer
	callTimeout time.Duration

	// Errgroup for goroutine management
	eg *errgroup.Group

	// Lifecycle management
	mu        sync.Mutex
	done      chan struct{}
	started   bool
	closed    bool
	closeOnce sync.Once
}

// New creates a client. It owns no process until Start is called.
func New() *Client {
	return &Client{
		methods:     make(map[string]*registeredMethod),
		callTimeout: defaultCallTimeout,
		done:        make(chan struct{}),
	}
}

// state reports whether the client can serve calls right now.
func (c *Client) state() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if !c.started {
		return errors.ErrClientNotStarted
	}

	return nil
}

// Start spawns the worker and wires up the read pipeline.
//
// Returns WorkerNotFoundError if the worker binary cannot be located. The
// context bounds startup only; the running client is shut down via Close.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if c.started {
		return errors.ErrClientAlreadyStarted
	}

	// Default to empty options if nil
	if options == nil {
		options = &config.Options{}
	}

	// Extract logger from options, defaulting to a no-op logger
	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.log = log.With("component", "client")
	c.options = options

	// Create or use injected transport
	var transport config.Transport

	if options.Transport != nil {
		transport = options.Transport

		c.log.Debug("Using injected custom transport")
	} else {
		transport = subprocess.New(c.log, options)
	}

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = transport

	if options.JournalPath != "" {
		jour, err := journal.Open(ctx, c.log, options.JournalPath)
		if err != nil {
			_ = transport.Close()

			return fmt.Errorf("open journal: %w", err)
		}

		c.journal = jour
	}

	c.sink = events.NewSink(c.log, options.EventBuffer)
	c.corr = protocol.NewCorrelator(c.log)

	// A nil *Journal must stay a nil Recorder interface.
	var rec protocol.Recorder
	if c.journal != nil {
		rec = c.journal
	}

	c.router = protocol.NewRouter(c.log, c.corr, c.sink, rec)

	// Create errgroup with background context for goroutine management.
	// We use context.Background() instead of the caller's ctx because:
	// 1. The caller's ctx may have a timeout for startup operations
	// 2. When that timeout expires, it would kill the read pipeline
	// 3. The client should remain connected until explicitly closed via Close()
	// 4. The c.done channel provides explicit shutdown signaling
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	lines, errs := c.transport.Lines(egCtx)

	c.router.Start(egCtx, lines, errs)

	c.eg.Go(func() error {
		return c.watchRouter()
	})

	c.started = true
	c.log.Info("Client started")

	return nil
}

// watchRouter waits for the read pipeline to stop and surfaces its fatal
// error, if any. Returning an error cancels the errgroup context, which
// unblocks any transport reader still parked on a channel send.
func (c *Client) watchRouter() error {
	select {
	case <-c.router.Done():
		if err := c.router.FatalError(); err != nil {
			c.log.Error("Worker stream failed", "error", err)

			return err
		}

		c.log.Debug("Worker stream ended")

		return nil

	case <-c.done:
		return nil
	}
}

// Call sends one request and blocks until its response, the timeout, the
// context, or client shutdown settles it.
//
// The call is registered with the correlator before the request bytes ever
// reach the transport, so a response cannot arrive unmatched no matter how
// fast the worker answers. Any failure to get the request onto the wire
// rolls that registration back.
//
// A worker error response is returned as a WorkerError carrying the
// worker's message verbatim. A call that expires returns ErrCallTimeout
// and its pending entry is removed; if the response shows up later it is
// discarded as unmatched.
func (c *Client) Call(ctx context.Context, method string, params any) (string, error) {
	if err := c.state(); err != nil {
		return "", err
	}

	// Fail fast once the read pipeline is gone; a response could never
	// arrive anyway.
	select {
	case <-c.router.Done():
		if err := c.router.FatalError(); err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrTransportUnavailable, err)
		}

		return "", errors.ErrTransportUnavailable
	default:
	}

	if err := c.validateParams(method, params); err != nil {
		return "", err
	}

	id, outcome := c.corr.Issue()

	req := &wire.Request{ID: id, Method: method, Params: params}

	data, err := wire.EncodeRequest(req)
	if err != nil {
		c.corr.Drop(id)

		return "", &errors.SerializationError{Method: method, Err: err}
	}

	if c.journal != nil {
		c.journal.RecordSend(req, data)
	}

	c.log.Debug("Sending request", "request_id", id, "method", method)

	if err := c.transport.Send(ctx, data); err != nil {
		c.corr.Drop(id)

		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		if stderrors.Is(err, errors.ErrTransportUnavailable) {
			return "", fmt.Errorf("send request: %w", err)
		}

		return "", fmt.Errorf("%w: %w", errors.ErrTransportUnavailable, err)
	}

	timer := time.NewTimer(c.callTimeout)
	defer timer.Stop()

	select {
	case out := <-outcome:
		if out.Err != nil {
			return "", out.Err
		}

		return out.Result, nil

	case <-timer.C:
		c.corr.Drop(id)

		return "", fmt.Errorf("%w: no response to %q after %s", errors.ErrCallTimeout, method, c.callTimeout)

	case <-ctx.Done():
		c.corr.Drop(id)

		return "", ctx.Err()

	case <-c.done:
		c.corr.Drop(id)

		return "", errors.ErrClientClosed
	}
}

// Subscribe registers interest in events carrying the given tag. Use
// events.AllTags to receive everything.
func (c *Client) Subscribe(tag string) (*events.Subscription, error) {
	if err := c.state(); err != nil {
		return nil, err
	}

	return c.sink.Subscribe(tag), nil
}

// EventsDropped reports how many events have been discarded so far
// because a subscriber's buffer was full. Zero for a client that never
// started.
func (c *Client) EventsDropped() uint64 {
	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()

	if sink == nil {
		return 0
	}

	return sink.Dropped()
}

// RecentTraffic returns the newest journaled wire documents, most recent
// first. Requires a journal path in the options.
func (c *Client) RecentTraffic(ctx context.Context, limit int) ([]journal.Entry, error) {
	if err := c.state(); err != nil {
		return nil, err
	}

	if c.journal == nil {
		return nil, errors.ErrJournalDisabled
	}

	return c.journal.Recent(ctx, limit)
}

// Close shuts the worker down and releases every resource the client
// owns. Pending calls fail with ErrTransportUnavailable or ErrClientClosed.
// Safe to call multiple times; the client cannot be restarted.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasStarted := c.started
		c.started = false
		c.mu.Unlock()

		if !wasStarted {
			return
		}

		c.log.Info("Closing client")

		// Signal shutdown
		close(c.done)

		// Let the worker see EOF on stdin so it can exit on its own
		// before the kill below.
		if err := c.transport.EndInput(); err != nil {
			c.log.Debug("End input failed", "error", err)
		}

		if c.router != nil {
			c.router.Stop()
		}

		if c.transport != nil {
			closeErr = c.transport.Close()
		}

		// Wait for errgroup goroutines to complete
		if c.eg != nil {
			if err := c.eg.Wait(); err != nil && closeErr == nil {
				closeErr = err
			}
		}

		if c.sink != nil {
			c.sink.Close()
		}

		if c.journal != nil {
			if err := c.journal.Close(); err != nil && closeErr == nil {
				closeErr = err
			}
		}

		c.log.Info("Client closed")
	})

	return closeErr
}
