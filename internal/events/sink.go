// Package events fans worker events out to subscribers.
package events

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// AllTags subscribes to every event regardless of tag.
const AllTags = "*"

// DefaultBuffer is the per-subscription channel capacity used when the
// caller does not pick one.
const DefaultBuffer = 16

// Subscription is one subscriber's view of the event stream.
type Subscription struct {
	id  string
	tag string
	ch  chan *wire.Event

	sink      *Sink
	closeOnce sync.Once
}

// ID returns the subscription's unique identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Tag returns the tag this subscription was created with.
func (s *Subscription) Tag() string {
	return s.tag
}

// Events returns the subscription's channel. The channel is closed when
// the subscription or the sink closes.
func (s *Subscription) Events() <-chan *wire.Event {
	return s.ch
}

// All iterates over events until the subscription closes or the context is
// cancelled.
func (s *Subscription) All(ctx context.Context) iter.Seq[*wire.Event] {
	return func(yield func(*wire.Event) bool) {
		for {
			select {
			case evt, ok := <-s.ch:
				if !ok {
					return
				}

				if !yield(evt) {
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}
}

// Close removes the subscription from its sink and closes its channel.
// Safe to call multiple times.
func (s *Subscription) Close() {
	s.sink.unsubscribe(s)
	s.markClosed()
}

func (s *Subscription) markClosed() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}

// Sink delivers worker events to subscribers.
//
// Delivery is fire-and-forget: Publish never blocks, because it runs on
// the client's single reader task and a stalled subscriber must not stall
// response correlation. When a subscription's buffer is full the event is
// dropped for that subscriber and counted.
type Sink struct {
	log     *slog.Logger
	bufSize int

	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription
	closed bool

	dropped atomic.Uint64
}

// NewSink creates a sink. bufSize is the channel capacity given to each
// subscription; values < 1 fall back to DefaultBuffer.
func NewSink(log *slog.Logger, bufSize int) *Sink {
	if bufSize < 1 {
		bufSize = DefaultBuffer
	}

	return &Sink{
		log:     log.With("component", "events"),
		bufSize: bufSize,
		subs:    make(map[string]map[string]*Subscription, 4),
	}
}

// Subscribe registers a subscriber for events carrying tag. Use AllTags to
// receive everything. Subscribing on a closed sink returns a subscription
// whose channel is already closed.
func (s *Sink) Subscribe(tag string) *Subscription {
	sub := &Subscription{
		id:   ulid.Make().String(),
		tag:  tag,
		ch:   make(chan *wire.Event, s.bufSize),
		sink: s,
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		sub.markClosed()

		return sub
	}

	byID, ok := s.subs[tag]
	if !ok {
		byID = make(map[string]*Subscription, 2)
		s.subs[tag] = byID
	}

	byID[sub.id] = sub

	s.mu.Unlock()

	s.log.Debug("Subscription added", "tag", tag, "subscription_id", sub.id)

	return sub
}

// Publish delivers evt to subscribers of its tag and to AllTags
// subscribers. Never blocks.
func (s *Sink) Publish(evt *wire.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	for _, sub := range s.subs[evt.Tag] {
		s.deliver(sub, evt)
	}

	if evt.Tag != AllTags {
		for _, sub := range s.subs[AllTags] {
			s.deliver(sub, evt)
		}
	}
}

// deliver sends without blocking. Callers hold at least the read lock, so
// no subscription channel can close mid-send.
func (s *Sink) deliver(sub *Subscription, evt *wire.Event) {
	select {
	case sub.ch <- evt:
	default:
		s.dropped.Add(1)
		s.log.Debug("Dropping event for slow subscriber",
			"tag", evt.Tag,
			"subscription_id", sub.id,
		)
	}
}

// Dropped reports how many events were discarded because a subscriber's
// buffer was full.
func (s *Sink) Dropped() uint64 {
	return s.dropped.Load()
}

// unsubscribe removes sub from the registry. The channel stays open here;
// the caller closes it once the removal is visible to publishers.
func (s *Sink) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.subs[sub.tag]
	if !ok {
		return
	}

	delete(byID, sub.id)

	if len(byID) == 0 {
		delete(s.subs, sub.tag)
	}
}

// Close shuts the sink down and closes every subscription channel.
// Publishing afterwards is a no-op. Safe to call multiple times.
func (s *Sink) Close() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return
	}

	s.closed = true

	var all []*Subscription
	for _, byID := range s.subs {
		for _, sub := range byID {
			all = append(all, sub)
		}
	}

	s.subs = nil

	s.mu.Unlock()

	for _, sub := range all {
		sub.markClosed()
	}

	s.log.Debug("Event sink closed", "subscriptions", len(all))
}
