package event

import (
	"sync"

	"github.com/rs/zerolog"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events (delivery is
// best-effort; consumers re-fetch authoritative state on every event).
const subscriberBuffer = 16

// Subscription is one attached consumer. Events arrive on C in publish
// order. A subscription attached after an event was published never
// receives that event.
type Subscription struct {
	id int
	C  <-chan Event

	ch chan Event
}

// Bus is the process-wide publish point for change notifications.
// Publish never blocks: a full subscriber buffer drops the event for
// that subscriber only.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
	log    zerolog.Logger
}

// NewBus creates an empty bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[int]*Subscription),
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe attaches a new consumer and returns its subscription.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{id: b.nextID, C: ch, ch: ch}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe detaches a consumer and closes its channel. Safe to call
// while a publish is in progress and safe to call twice.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; !ok {
		return
	}
	delete(b.subs, sub.id)
	close(sub.ch)
}

// Publish delivers ev to every currently attached subscriber. Per
// subscriber the delivery order matches publish order; across
// subscribers no ordering is guaranteed.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			b.log.Warn().
				Str("type", string(ev.Type)).
				Int("subscriber", sub.id).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// SubscriberCount reports how many consumers are attached.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
