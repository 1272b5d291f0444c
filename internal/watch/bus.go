package watch

import (
	"sync"
	"sync/atomic"
)

const defaultSubscriberBuffer = 128

// Sink receives normalized events. Emit must not block for long: it runs
// on the backend's delivery goroutine.
type Sink interface {
	Emit(topic string, event ChangeEvent)
}

// Message is a ChangeEvent tagged with its topic, as delivered to
// subscribers and serialized for the UI.
type Message struct {
	Topic string      `json:"event"`
	Event ChangeEvent `json:"payload"`
}

// BusOptions configures a Bus.
type BusOptions struct {
	// SubscriberBuffer is the per-subscriber channel capacity.
	SubscriberBuffer int

	// OnDrop is called whenever a message is dropped for a full subscriber.
	OnDrop func()
}

// Bus is the application-wide event sink. Emit fans out to every
// subscriber without blocking; a subscriber whose buffer is full misses
// the message.
type Bus struct {
	mu          sync.Mutex
	subscribers map[uint64]chan Message
	nextID      uint64
	closed      bool
	buffer      int
	onDrop      func()
	published   atomic.Int64
	dropped     atomic.Int64
}

// NewBus returns an open Bus.
func NewBus(opts BusOptions) *Bus {
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = defaultSubscriberBuffer
	}
	return &Bus{
		subscribers: make(map[uint64]chan Message),
		buffer:      opts.SubscriberBuffer,
		onDrop:      opts.OnDrop,
	}
}

// Subscribe returns a channel receiving every subsequent message and a
// cancel func that unsubscribes and closes it. On a closed bus the
// channel is returned already closed.
func (b *Bus) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	b.nextID++
	id := b.nextID
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Emit implements Sink.
func (b *Bus) Emit(topic string, event ChangeEvent) {
	msg := Message{Topic: topic, Event: event}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.published.Add(1)
	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			b.dropped.Add(1)
			if b.onDrop != nil {
				b.onDrop()
			}
		}
	}
}

// Published returns the number of messages emitted while open.
func (b *Bus) Published() int64 { return b.published.Load() }

// Dropped returns the number of per-subscriber deliveries skipped.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel. Later Emits are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
