package bus

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

const defaultBuffer = 256

// MemoryBus delivers messages between subscriptions in one process. Each
// subscription has a bounded queue; a message that finds the queue full is
// dropped and counted rather than blocking the publisher.
type MemoryBus struct {
	buffer int

	mu   sync.RWMutex
	subs []*memorySubscription

	closed  atomic.Bool
	dropped atomic.Int64
}

// NewMemoryBus creates an in-memory transport with the default queue length.
func NewMemoryBus() *MemoryBus {
	return NewMemoryBusSize(defaultBuffer)
}

// NewMemoryBusSize creates an in-memory transport whose subscriptions queue
// up to buffer messages. A non-positive buffer selects the default.
func NewMemoryBusSize(buffer int) *MemoryBus {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &MemoryBus{buffer: buffer}
}

func (b *MemoryBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validSubject(subject, false); err != nil {
		return err
	}

	msg := &Message{Subject: subject, Data: slices.Clone(data)}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !matchSubject(sub.pattern, subject) {
			continue
		}
		select {
		case sub.queue <- msg:
		default:
			b.dropped.Add(1)
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, pattern string, handler MessageHandler) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if err := validSubject(pattern, true); err != nil {
		return nil, err
	}

	sub := &memorySubscription{
		id:      ulid.Make(),
		pattern: pattern,
		queue:   make(chan *Message, b.buffer),
		handler: handler,
		bus:     b,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go sub.run(ctx)
	return sub, nil
}

// Dropped returns the number of messages lost to full queues.
func (b *MemoryBus) Dropped() int64 {
	return b.dropped.Load()
}

func (b *MemoryBus) Close() error {
	if b.closed.Swap(true) {
		return ErrClosed
	}

	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
	return nil
}

func (b *MemoryBus) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s *memorySubscription) bool {
		return s.id == sub.id
	})
}

type memorySubscription struct {
	id      ulid.ULID
	pattern string
	queue   chan *Message
	handler MessageHandler
	bus     *MemoryBus
	once    sync.Once
}

// stop closes the queue once. Messages already queued are still handled.
func (s *memorySubscription) stop() {
	s.once.Do(func() { close(s.queue) })
}

func (s *memorySubscription) Unsubscribe() error {
	s.bus.remove(s)
	s.stop()
	return nil
}

func (s *memorySubscription) Subject() string {
	return s.pattern
}

func (s *memorySubscription) run(ctx context.Context) {
	for {
		select {
		case msg, ok := <-s.queue:
			if !ok {
				return
			}
			s.handler(msg)
		case <-ctx.Done():
			s.bus.remove(s)
			s.stop()
			return
		}
	}
}
