package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	received := make(chan *Message, 1)

	sub, err := bus.Subscribe(ctx, "cursing.db.connect", func(msg *Message) {
		received <- msg
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	payload := []byte("hello")
	require.NoError(t, bus.Publish(ctx, "cursing.db.connect", payload))
	payload[0] = 'j'

	select {
	case msg := <-received:
		assert.Equal(t, "hello", string(msg.Data), "publisher buffer must not leak into delivery")
		assert.Equal(t, "cursing.db.connect", msg.Subject)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestMemoryBus_WildcardAndOrder(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var mu sync.Mutex
	var got []string
	var wg sync.WaitGroup
	wg.Add(3)

	sub, err := bus.Subscribe(ctx, "cursing.ui.*", func(msg *Message) {
		mu.Lock()
		got = append(got, string(msg.Data))
		mu.Unlock()
		wg.Done()
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, "cursing.ui.feedback", []byte("1")))
	require.NoError(t, bus.Publish(ctx, "cursing.db.connect", []byte("x")))
	require.NoError(t, bus.Publish(ctx, "cursing.ui.table-list", []byte("2")))
	require.NoError(t, bus.Publish(ctx, "cursing.ui.database-list", []byte("3")))

	waitTimeout(t, &wg)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestMemoryBus_MultipleSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(3)

	for range 3 {
		sub, err := bus.Subscribe(ctx, "cursing.ui.feedback", func(*Message) {
			wg.Done()
		})
		require.NoError(t, err)
		defer sub.Unsubscribe()
	}

	require.NoError(t, bus.Publish(ctx, "cursing.ui.feedback", []byte("x")))
	waitTimeout(t, &wg)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx := context.Background()
	var received atomic.Int32

	sub, err := bus.Subscribe(ctx, "cursing.ui.feedback", func(*Message) {
		received.Add(1)
	})
	require.NoError(t, err)
	assert.Equal(t, "cursing.ui.feedback", sub.Subject())

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())

	require.NoError(t, bus.Publish(ctx, "cursing.ui.feedback", []byte("x")))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, received.Load())

	bus.mu.RLock()
	assert.Empty(t, bus.subs)
	bus.mu.RUnlock()
}

func TestMemoryBus_ContextEndsSubscription(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	_, err := bus.Subscribe(ctx, "cursing.>", func(*Message) {})
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subs) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryBus_FullQueueDrops(t *testing.T) {
	bus := NewMemoryBusSize(1)
	defer bus.Close()

	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	sub, err := bus.Subscribe(ctx, "cursing.ui.tick", func(*Message) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()
	defer close(release)

	require.NoError(t, bus.Publish(ctx, "cursing.ui.tick", nil))
	<-started
	require.NoError(t, bus.Publish(ctx, "cursing.ui.tick", nil))
	require.NoError(t, bus.Publish(ctx, "cursing.ui.tick", nil))

	assert.Equal(t, int64(1), bus.Dropped())
}

func TestMemoryBus_RejectsBadSubjects(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()
	ctx := context.Background()

	for _, subject := range []string{"", "cursing..db", "cursing.db.*", "cursing.>"} {
		assert.ErrorIs(t, bus.Publish(ctx, subject, nil), ErrSubject, subject)
	}
	for _, pattern := range []string{"", "cursing.>.db", "a..b"} {
		_, err := bus.Subscribe(ctx, pattern, func(*Message) {})
		assert.ErrorIs(t, err, ErrSubject, pattern)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, bus.Publish(cancelled, "cursing.db.connect", nil), context.Canceled)
}

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"a.b.c", "a.b.c", true},
		{"a.b.c", "a.b.d", false},
		{"a.*.c", "a.b.c", true},
		{"a.*.c", "a.b.d", false},
		{"a.*", "a.b", true},
		{"a.*", "a.b.c", false},
		{"a.*", "a", false},
		{"a.>", "a.b", true},
		{"a.>", "a.b.c.d", true},
		{"a.>", "a", false},
		{"cursing.db.*", "cursing.db.raw-query", true},
		{"cursing.db.*", "cursing.ui.feedback", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, matchSubject(tt.pattern, tt.subject))
		})
	}
}

func TestMemoryBus_ClosedOperations(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Close())

	ctx := context.Background()
	assert.ErrorIs(t, bus.Publish(ctx, "x", nil), ErrClosed)

	_, err := bus.Subscribe(ctx, "x", func(*Message) {})
	assert.ErrorIs(t, err, ErrClosed)

	assert.ErrorIs(t, bus.Close(), ErrClosed)
}

func TestOpen(t *testing.T) {
	b, err := Open(Config{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBus{}, b)
	b.Close()

	b, err = Open(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, defaultBuffer, b.(*MemoryBus).buffer)
	b.Close()

	_, err = Open(Config{Kind: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handlers")
	}
}
