package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields_OrderAndReplace(t *testing.T) {
	f := F("hostname", "localhost", "port", 3306, "username", "root")
	f.Set("port", 3307)

	assert.Equal(t, []string{"hostname", "port", "username"}, f.Names())
	n, ok := f.Int("port")
	assert.True(t, ok)
	assert.Equal(t, 3307, n)

	f.Delete("hostname")
	assert.Equal(t, []string{"port", "username"}, f.Names())
	assert.False(t, f.Has("hostname"))
}

func TestFields_Accessors(t *testing.T) {
	f := F("name", "books", "error", true, "tables", []any{"a", "b"}, "dangling")

	assert.Equal(t, "books", f.Str("name"))
	assert.Equal(t, "", f.Str("error"))
	assert.True(t, f.Bool("error"))
	assert.False(t, f.Bool("missing"))
	assert.Equal(t, []string{"a", "b"}, f.Strings("tables"))
	assert.True(t, f.Has("dangling"))

	v, ok := f.Get("dangling")
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = f.Int("name")
	assert.False(t, ok)
}

func TestFields_CloneIsIndependent(t *testing.T) {
	f := F("a", 1)
	c := f.Clone()
	c.Set("a", 2)
	c.Set("b", 3)

	n, _ := f.Int("a")
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.Len())
	assert.Equal(t, map[string]any{"a": 2, "b": 3}, c.Map())
}

func TestFields_Merge(t *testing.T) {
	f := F("a", 1, "b", 2)
	f.Merge(F("b", 20, "c", 30))
	assert.Equal(t, []string{"a", "b", "c"}, f.Names())
	assert.Equal(t, map[string]any{"a": 1, "b": 20, "c": 30}, f.Map())
}

func TestEvent_Lifecycle(t *testing.T) {
	fields := F("table", "books")
	ev := New(DBSetTable, fields)

	assert.Equal(t, DBSetTable, ev.Name())
	assert.True(t, ev.Alive())
	assert.True(t, ev.Propagate())
	assert.False(t, ev.Remote())
	assert.Equal(t, "db.set-table{table: books}", ev.String())

	// The event does not alias the caller's field set.
	fields.Set("table", "cars")
	assert.Equal(t, "books", ev.Fields().Str("table"))

	ev.Kill()
	assert.False(t, ev.Alive())
}

func TestEvent_Options(t *testing.T) {
	ev := New("PING", Fields{}, NoPropagate(), FromRemote())
	assert.False(t, ev.Propagate())
	assert.True(t, ev.Remote())
	assert.Equal(t, "PING{}", ev.String())
}
