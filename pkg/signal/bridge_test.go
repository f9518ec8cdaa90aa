package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/cursing/pkg/bus"
)

func TestEncodeDecode(t *testing.T) {
	ev := New(DBConnect, F("hostname", "localhost", "port", 3306))
	data, err := Encode(ev)
	require.NoError(t, err)

	got, err := Decode(data, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, DBConnect, got.Name())
	assert.True(t, got.Remote())
	assert.Equal(t, []string{"hostname", "port"}, got.Fields().Names())
	n, ok := got.Fields().Int("port")
	assert.True(t, ok)
	assert.Equal(t, 3306, n)

	_, err = Decode([]byte(`{"fields":[]}`), nil)
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`), nil)
	assert.Error(t, err)
}

func TestBridge_ForwardAndListen(t *testing.T) {
	transport := bus.NewMemoryBus()
	defer transport.Close()
	ctx := context.Background()

	// Two buses share one transport: the interface side and a collaborator.
	uiBus := NewBus(WithCatalog(DefaultCatalog()))
	dbBus := NewBus(WithCatalog(DefaultCatalog()))

	inbound := make(chan *Event, 4)
	uiBridge := NewBridge(uiBus, transport, func(ev *Event) { inbound <- ev })
	dbBridge := NewBridge(dbBus, transport, func(ev *Event) { inbound <- ev }, WithPrefix("cursing."))
	defer uiBridge.Close()
	defer dbBridge.Close()

	uiBridge.Forward(ctx, DBSetTable)
	require.NoError(t, dbBridge.Listen(ctx, "db.*"))

	assert.True(t, uiBus.Emit(DBSetTable, F("table", "books")))

	select {
	case ev := <-inbound:
		assert.Equal(t, DBSetTable, ev.Name())
		assert.Equal(t, "books", ev.Fields().Str("table"))
		assert.True(t, ev.Remote())
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for bridged event")
	}
}

func TestBridge_RemoteEventsAreNotForwarded(t *testing.T) {
	transport := bus.NewMemoryBus()
	defer transport.Close()
	ctx := context.Background()

	local := NewBus()
	b := NewBridge(local, transport, nil)
	defer b.Close()
	b.Forward(ctx, DBDisconnect)

	published := make(chan *bus.Message, 1)
	_, err := transport.Subscribe(ctx, b.Subject(DBDisconnect), func(msg *bus.Message) {
		published <- msg
	})
	require.NoError(t, err)

	assert.True(t, local.Dispatch(New(DBDisconnect, Fields{}, FromRemote())))

	select {
	case <-published:
		t.Fatal("remote event was forwarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBridge_CloseReleasesRegistrations(t *testing.T) {
	transport := bus.NewMemoryBus()
	defer transport.Close()

	local := NewBus()
	b := NewBridge(local, transport, nil)
	b.Forward(context.Background(), DBConnect, DBDisconnect)
	require.NoError(t, b.Listen(context.Background(), "ui.*"))
	assert.Len(t, local.Names(), 2)

	require.NoError(t, b.Close())
	assert.Empty(t, local.Names())
	assert.Equal(t, "cursing.ui.feedback", b.Subject(UIFeedback))
}
