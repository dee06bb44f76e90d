package protocol

import (
	"log/slog"
	"sync"
)

// Outcome is the settled result of a call: a worker result string or an
// error, never both.
type Outcome struct {
	Result string
	Err    error
}

// Correlator matches worker responses to in-flight calls.
//
// Each call is issued a process-unique uint64 id and a one-shot channel.
// The table entry lives until exactly one of: a response arrives for the
// id, the caller abandons the call (timeout or cancellation), or the
// worker's stream closes and every entry is failed in bulk. After removal
// the id is never reused, so a late response for it is a no-op.
type Correlator struct {
	log *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan Outcome
}

// NewCorrelator creates a correlator. IDs start at 1 and increase
// monotonically for the lifetime of the process.
func NewCorrelator(log *slog.Logger) *Correlator {
	return &Correlator{
		log:     log.With("component", "correlator"),
		nextID:  1,
		pending: make(map[uint64]chan Outcome, 10),
	}
}

// Issue assigns the next id and registers a pending entry for it.
//
// The entry is registered before the caller writes anything to the wire,
// so a worker answering instantly still finds it. The returned channel is
// buffered: delivery never blocks the reader pipeline.
func (c *Correlator) Issue() (uint64, <-chan Outcome) {
	ch := make(chan Outcome, 1)

	c.mu.Lock()

	id := c.nextID
	c.nextID++
	c.pending[id] = ch

	c.mu.Unlock()

	c.log.Debug("Issued request id", "request_id", id)

	return id, ch
}

// Resolve delivers an outcome to the call waiting on id and removes the
// entry. Returns false when no entry exists, which covers late responses,
// duplicates, and ids this process never issued.
func (c *Correlator) Resolve(id uint64, out Outcome) bool {
	c.mu.Lock()

	ch, exists := c.pending[id]
	if exists {
		delete(c.pending, id)
	}

	c.mu.Unlock()

	if !exists {
		return false
	}

	// We own the entry now; the channel is buffered so this never blocks.
	ch <- out

	return true
}

// Drop removes the pending entry for id without delivering anything.
// Callers use it when abandoning a call: encode failure, timeout, or
// context cancellation. A response arriving afterwards is a no-op.
func (c *Correlator) Drop(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, exists := c.pending[id]
	if exists {
		delete(c.pending, id)
	}

	return exists
}

// FailAll settles every pending call with err and empties the table.
// Called when the worker's stream closes so no caller waits forever.
// Returns the number of calls failed.
func (c *Correlator) FailAll(err error) int {
	c.mu.Lock()

	swept := c.pending
	c.pending = make(map[uint64]chan Outcome, 10)

	c.mu.Unlock()

	for id, ch := range swept {
		c.log.Debug("Failing pending call", "request_id", id, "error", err)

		ch <- Outcome{Err: err}
	}

	return len(swept)
}

// Pending reports how many calls are awaiting a response.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}
