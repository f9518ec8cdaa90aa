// Package signal implements the event bus that connects widgets to the
// components they talk to. Widgets and collaborators never call each other
// directly; they exchange named events through a Bus.
package signal

import (
	"context"
	"fmt"
	"strings"
)

// Field is a single named value carried by an event.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered set of uniquely named values.
// The zero value is an empty set ready to use.
type Fields struct {
	items []Field
}

// F builds Fields from alternating name/value pairs.
// A trailing name without a value is stored with a nil value.
func F(pairs ...any) Fields {
	var fs Fields
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			continue
		}
		var v any
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		fs.Set(name, v)
	}
	return fs
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.items)
}

// Get returns the value stored under name.
func (f Fields) Get(name string) (any, bool) {
	for _, it := range f.items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return nil, false
}

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// Str returns the named value as a string, or "" when absent or not a string.
func (f Fields) Str(name string) string {
	v, _ := f.Get(name)
	s, _ := v.(string)
	return s
}

// Int returns the named value as an int.
func (f Fields) Int(name string) (int, bool) {
	v, _ := f.Get(name)
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Bool returns the named value as a bool, false when absent.
func (f Fields) Bool(name string) bool {
	v, _ := f.Get(name)
	b, _ := v.(bool)
	return b
}

// Strings returns the named value as a string slice.
func (f Fields) Strings(name string) []string {
	v, _ := f.Get(name)
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return nil
}

// Set stores value under name, replacing an existing value in place so the
// original ordering is preserved.
func (f *Fields) Set(name string, value any) {
	for i := range f.items {
		if f.items[i].Name == name {
			f.items[i].Value = value
			return
		}
	}
	f.items = append(f.items, Field{Name: name, Value: value})
}

// Delete removes name if present.
func (f *Fields) Delete(name string) {
	for i := range f.items {
		if f.items[i].Name == name {
			f.items = append(f.items[:i:i], f.items[i+1:]...)
			return
		}
	}
}

// Names returns field names in insertion order.
func (f Fields) Names() []string {
	out := make([]string, len(f.items))
	for i, it := range f.items {
		out[i] = it.Name
	}
	return out
}

// Each calls fn for every field in order.
func (f Fields) Each(fn func(name string, value any)) {
	for _, it := range f.items {
		fn(it.Name, it.Value)
	}
}

// Clone returns an independent copy of the field set.
func (f Fields) Clone() Fields {
	if len(f.items) == 0 {
		return Fields{}
	}
	items := make([]Field, len(f.items))
	copy(items, f.items)
	return Fields{items: items}
}

// Merge copies every field of other into f, overwriting shared names.
func (f *Fields) Merge(other Fields) {
	for _, it := range other.items {
		f.Set(it.Name, it.Value)
	}
}

// Map returns the fields as a plain map.
func (f Fields) Map() map[string]any {
	out := make(map[string]any, len(f.items))
	for _, it := range f.items {
		out[it.Name] = it.Value
	}
	return out
}

func (f Fields) format() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, it := range f.items {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", it.Name, it.Value)
	}
	b.WriteByte('}')
	return b.String()
}

// Event is a named message dispatched through a Bus. An event is created for
// a single dispatch and discarded afterwards; once killed it is never
// delivered again.
type Event struct {
	name      string
	fields    Fields
	propagate bool
	alive     bool
	remote    bool
	ctx       context.Context
}

// EventOption configures a new event.
type EventOption func(*Event)

// NoPropagate restricts delivery to the first handler.
func NoPropagate() EventOption {
	return func(e *Event) {
		e.propagate = false
	}
}

// FromRemote marks an event as received from a transport.
func FromRemote() EventOption {
	return func(e *Event) {
		e.remote = true
	}
}

// New creates a live, propagating event.
func New(name string, fields Fields, opts ...EventOption) *Event {
	e := &Event{
		name:      name,
		fields:    fields.Clone(),
		propagate: true,
		alive:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the event identifier.
func (e *Event) Name() string {
	return e.name
}

// Fields returns a copy of the event payload.
func (e *Event) Fields() Fields {
	return e.fields.Clone()
}

// Propagate reports whether more than one handler may receive the event.
func (e *Event) Propagate() bool {
	return e.propagate
}

// Alive reports whether the event may still be dispatched.
func (e *Event) Alive() bool {
	return e.alive
}

// Remote reports whether the event arrived through a transport bridge.
func (e *Event) Remote() bool {
	return e.remote
}

// Context returns the context of the dispatch delivering the event. On a
// traced bus it carries the dispatch span; otherwise it is Background.
func (e *Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Kill prevents any further delivery of the event.
func (e *Event) Kill() {
	e.alive = false
}

// String formats the event for logs.
func (e *Event) String() string {
	return e.name + e.fields.format()
}
