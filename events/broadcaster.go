package events

import (
	"sync"

	"github.com/Iwinswap/iwinswap-amm-engine-go/protocols/cpmm"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity used when
// the caller passes a non-positive buffer size.
const DefaultSubscriberBuffer = 128

// Broadcaster is a Sink that fans events out to any number of subscribers
// over buffered channels. A subscriber that falls behind its buffer misses
// events rather than blocking the publishing pool; the feed is informational
// and never feeds back into pool state.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[uint64]chan cpmm.Event
	nextID uint64
	buffer int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:   make(map[uint64]chan cpmm.Event),
		buffer: buffer,
	}
}

// Publish delivers the event to every subscriber with buffer room.
func (b *Broadcaster) Publish(e cpmm.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Slow consumer: drop rather than stall the pool.
		}
	}
}

// Subscribe registers a new subscriber and returns its channel together with
// a cancel function. Cancel closes the channel and must be called exactly
// once when the subscriber is done.
func (b *Broadcaster) Subscribe() (<-chan cpmm.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan cpmm.Event, b.buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Len returns the current number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}
