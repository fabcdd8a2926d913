// internal/bus/bus.go
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/metrics"
)

// Event announces that a collection changed. Source is the identity of the
// page/coordinator that made the write; subscribers that mutate state in
// response must compare it against their own identity or they will loop.
type Event struct {
	Collection string    `json:"collection"`
	Source     string    `json:"source"`
	Timestamp  time.Time `json:"timestamp"`
}

type Handler func(Event)

// Relay carries events to pages outside this process, best-effort and
// unordered relative to other processes.
type Relay interface {
	Publish(ctx context.Context, ev Event) error
	Listen(dispatch func(Event))
	Close() error
}

// Bus fans change events out to in-process subscribers, in emission order,
// and hands them to the relay (when attached) for everyone else.
type Bus struct {
	mu      sync.Mutex
	nextID  int
	subs    []subscription
	relay   Relay
	timeout time.Duration
}

type subscription struct {
	id      int
	handler Handler
}

func New() *Bus {
	return &Bus{timeout: 2 * time.Second}
}

// AttachRelay starts forwarding local emissions through the relay and
// re-dispatching remote events locally.
func (b *Bus) AttachRelay(r Relay) {
	b.mu.Lock()
	b.relay = r
	b.mu.Unlock()
	r.Listen(b.Dispatch)
}

// Subscribe registers a handler for every dispatched event, own emissions
// included. The returned function removes it.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit announces a change made by source and relays it beyond the process.
// Relay failures are logged and ignored: unreachable pages simply catch up
// on their next timer tick.
func (b *Bus) Emit(collection, source string) {
	ev := Event{
		Collection: collection,
		Source:     source,
		Timestamp:  time.Now().UTC(),
	}
	b.Dispatch(ev)

	b.mu.Lock()
	relay := b.relay
	timeout := b.timeout
	b.mu.Unlock()

	if relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := relay.Publish(ctx, ev); err != nil {
			logger.Debug.Printf("relay publish for %s failed: %v", collection, err)
		}
	}
}

// Dispatch delivers an event to local subscribers only. The relay's receive
// loop uses it so remote events are not published back out.
func (b *Bus) Dispatch(ev Event) {
	metrics.CollectionEventsTotal.WithLabelValues(ev.Collection).Inc()

	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.handler(ev)
	}
}

func (b *Bus) Close() error {
	b.mu.Lock()
	relay := b.relay
	b.relay = nil
	b.mu.Unlock()

	if relay != nil {
		return relay.Close()
	}
	return nil
}
