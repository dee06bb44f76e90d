package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wagiedev/sidecar-rpc-go/internal/errors"
	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// EventPublisher receives events the router pulls off the wire. Publish
// must not block: the router is the single reader and anything that stalls
// it stalls response delivery too.
type EventPublisher interface {
	Publish(evt *wire.Event)
}

// Recorder observes classified wire traffic, e.g. for journaling. A nil
// Recorder disables recording. Implementations must not block.
type Recorder interface {
	RecordResponse(resp *wire.Response, raw []byte)
	RecordEvent(evt *wire.Event, raw []byte)
}

// Router is the single reader task of a client. It drains the worker's
// stdout lines, classifies each one, resolves responses against the
// correlator, and publishes events to the sink. Unrecognized lines are
// skipped, never fatal.
//
// When the line stream ends, whatever the cause, the router stores the
// fatal error, fails every pending call so no caller is left waiting, and
// closes Done.
type Router struct {
	log  *slog.Logger
	corr *Correlator
	sink EventPublisher
	rec  Recorder

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewRouter creates a router. sink is required; rec may be nil.
func NewRouter(log *slog.Logger, corr *Correlator, sink EventPublisher, rec Recorder) *Router {
	return &Router{
		log:  log.With("component", "router"),
		corr: corr,
		sink: sink,
		rec:  rec,
		done: make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (r *Router) closeDone() {
	r.closeOnce.Do(func() {
		close(r.done)
	})
}

// SetFatalError stores a fatal error and broadcasts to all waiters by closing done.
func (r *Router) SetFatalError(err error) {
	r.errMu.Lock()

	if r.fatalErr == nil {
		r.fatalErr = err
	}

	r.errMu.Unlock()

	r.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (r *Router) FatalError() error {
	r.errMu.RLock()
	defer r.errMu.RUnlock()

	return r.fatalErr
}

// Done returns a channel that is closed when the router stops.
func (r *Router) Done() <-chan struct{} {
	return r.done
}

// Start begins draining lines and errs in a background goroutine.
//
// The goroutine stops when lines closes, a transport error arrives, the
// context is cancelled, or Stop is called. On every exit path it sweeps
// the pending table.
func (r *Router) Start(ctx context.Context, lines <-chan []byte, errs <-chan error) {
	r.log.Debug("Starting router")

	r.wg.Add(1)

	go r.readLoop(ctx, lines, errs)
}

// Stop shuts the router down and waits for the read loop to exit. Safe to
// call multiple times.
func (r *Router) Stop() {
	r.closeDone()
	r.wg.Wait()
	r.log.Debug("Router stopped")
}

// readLoop drains the transport and routes each line.
func (r *Router) readLoop(ctx context.Context, lines <-chan []byte, errs <-chan error) {
	defer r.wg.Done()
	defer r.sweep()
	defer r.log.Debug("Router read loop stopped")

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				r.log.Debug("Line channel closed")
				// The transport may have queued an exit diagnostic just
				// before closing; pick it up so the sweep can carry it.
				r.drainTransportError(errs)

				return
			}

			r.route(line)

		case err, ok := <-errs:
			if !ok {
				r.log.Debug("Error channel closed")

				return
			}

			if err != nil {
				r.log.Debug("Transport error in router", "error", err)
				r.SetFatalError(err)

				return
			}

		case <-r.done:
			r.log.Debug("Router stop signal received")

			return

		case <-ctx.Done():
			r.log.Debug("Context cancelled in router read loop")

			return
		}
	}
}

// drainTransportError collects a transport error that raced with the line
// channel closing. Non-blocking: a transport that closes lines while its
// error channel stays open must not stall the sweep.
func (r *Router) drainTransportError(errs <-chan error) {
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			r.SetFatalError(err)
		}
	default:
	}
}

// sweep fails every pending call once the stream is gone. Calls issued
// after the sweep fail on write instead, so nothing waits forever either way.
func (r *Router) sweep() {
	err := fmt.Errorf("%w: worker stream closed", errors.ErrTransportUnavailable)
	if fatal := r.FatalError(); fatal != nil {
		err = fmt.Errorf("%w: %w", errors.ErrTransportUnavailable, fatal)
	}

	if n := r.corr.FailAll(err); n > 0 {
		r.log.Warn("Failed pending calls on stream closure", "count", n)
	}

	r.closeDone()
}

// route classifies one line and dispatches it.
func (r *Router) route(line []byte) {
	classified := wire.Classify(line)

	switch classified.Kind {
	case wire.KindEvent:
		r.log.Debug("Event received", "tag", classified.Event.Tag)

		if r.rec != nil {
			r.rec.RecordEvent(classified.Event, line)
		}

		r.sink.Publish(classified.Event)

	case wire.KindResponse:
		if r.rec != nil {
			r.rec.RecordResponse(classified.Response, line)
		}

		r.resolve(classified.Response)

	case wire.KindUnrecognized:
		r.log.Debug("Skipping unrecognized line", "line", string(line))
	}
}

// resolve settles the pending call a response correlates to, if any.
func (r *Router) resolve(resp *wire.Response) {
	if resp.ID == nil {
		// Readiness documents and other id-less responses correlate to
		// nothing.
		r.log.Debug("Response without id ignored")

		return
	}

	id := *resp.ID

	var out Outcome

	if resp.Error != nil {
		out.Err = &errors.WorkerError{
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
		}
	} else if resp.Result != nil {
		out.Result = *resp.Result
	}

	if !r.corr.Resolve(id, out) {
		// Late, duplicate, or never issued. Discarded without effect.
		r.log.Debug("No pending call for response", "request_id", id)

		return
	}

	r.log.Debug("Resolved call", "request_id", id, "is_error", out.Err != nil)
}
