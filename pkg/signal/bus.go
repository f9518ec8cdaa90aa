package signal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// HandlerFunc receives a dispatched event.
type HandlerFunc func(ev *Event)

// Lifetime is implemented by handler targets that can die before they
// deregister. Entries whose target reports false are skipped and purged.
type Lifetime interface {
	Alive() bool
}

// Sink accepts events for delivery. Bus implements it; so do local scopes
// such as forms that collect events from their children.
type Sink interface {
	Dispatch(ev *Event) bool
}

// Observer is notified of bus activity. Implementations must not dispatch.
type Observer interface {
	Dispatched(name string, delivered int)
	Dropped(name, reason string)
	Registered(name string, handlers int)
}

type entry struct {
	name     string
	target   any
	fn       HandlerFunc
	released bool
}

func (e *entry) usable() bool {
	if e.released {
		return false
	}
	if lt, ok := e.target.(Lifetime); ok && !lt.Alive() {
		return false
	}
	return true
}

// Handle identifies one registration. The zero Handle is inert.
type Handle struct {
	bus   *Bus
	entry *entry
}

// Valid reports whether the registration is still in effect.
func (h Handle) Valid() bool {
	return h.entry != nil && h.entry.usable()
}

// Name returns the event name of the registration.
func (h Handle) Name() string {
	if h.entry == nil {
		return ""
	}
	return h.entry.name
}

// Release removes the registration. Releasing twice is a no-op.
func (h Handle) Release() {
	if h.bus == nil || h.entry == nil || h.entry.released {
		return
	}
	h.bus.remove(h.entry)
}

// Bus routes events to the handlers registered for their name.
//
// Handler lists are copy-on-write: a dispatch iterates a snapshot, so handlers
// may register, deregister and dispatch re-entrantly. The bus is not safe for
// concurrent use; every call must happen on the UI loop goroutine.
type Bus struct {
	handlers map[string][]*entry
	catalog  *Catalog
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer

	// current is the context of the dispatch in progress, so nested
	// dispatches become child spans.
	current context.Context
}

// Option configures a Bus.
type Option func(*Bus)

// WithCatalog validates every dispatched event against catalog.
func WithCatalog(catalog *Catalog) Option {
	return func(b *Bus) {
		b.catalog = catalog
	}
}

// WithObserver reports bus activity to o.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		b.observer = o
	}
}

// WithLogger traces dispatches at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTracer opens a span for every dispatch. Dispatches made from inside a
// handler are recorded as children of the outer dispatch.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *Bus) {
		b.tracer = tracer
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[string][]*entry),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Catalog returns the catalog used for validation, or nil.
func (b *Bus) Catalog() *Catalog {
	return b.catalog
}

// Register adds fn as the handler of target for events called name.
// A target holds at most one registration per name: registering again
// returns the existing handle and false. Targets must be comparable
// (typically a pointer); a nil or non-comparable target is rejected.
func (b *Bus) Register(name string, target any, fn HandlerFunc) (Handle, bool) {
	if name == "" || fn == nil || target == nil || !reflect.TypeOf(target).Comparable() {
		return Handle{}, false
	}

	list := b.handlers[name]
	for _, e := range list {
		if e.target == target {
			if e.usable() {
				return Handle{bus: b, entry: e}, false
			}
			b.remove(e)
			list = b.handlers[name]
			break
		}
	}

	e := &entry{name: name, target: target, fn: fn}
	next := make([]*entry, len(list), len(list)+1)
	copy(next, list)
	b.handlers[name] = append(next, e)

	if b.observer != nil {
		b.observer.Registered(name, len(b.handlers[name]))
	}
	return Handle{bus: b, entry: e}, true
}

// Deregister removes the registration of target for name, if any.
func (b *Bus) Deregister(name string, target any) {
	for _, e := range b.handlers[name] {
		if e.target == target {
			b.remove(e)
			return
		}
	}
}

// remove drops e from its list and deletes the name once the list is empty.
func (b *Bus) remove(e *entry) {
	e.released = true
	list := b.handlers[e.name]
	idx := slices.Index(list, e)
	if idx < 0 {
		return
	}
	if len(list) == 1 {
		delete(b.handlers, e.name)
	} else {
		next := make([]*entry, 0, len(list)-1)
		next = append(next, list[:idx]...)
		next = append(next, list[idx+1:]...)
		b.handlers[e.name] = next
	}
	if b.observer != nil {
		b.observer.Registered(e.name, len(b.handlers[e.name]))
	}
}

// purge removes every expired entry registered under name.
func (b *Bus) purge(name string) []*entry {
	list := b.handlers[name]
	for _, e := range list {
		if !e.usable() {
			b.remove(e)
		}
	}
	return b.handlers[name]
}

// Emit dispatches a new propagating event built from name and fields.
func (b *Bus) Emit(name string, fields Fields) bool {
	return b.Dispatch(New(name, fields))
}

// Dispatch delivers ev to its handlers in registration order.
func (b *Bus) Dispatch(ev *Event) bool {
	return b.dispatch(ev, false)
}

// DispatchReverse delivers ev to its handlers, most recent registration first.
func (b *Bus) DispatchReverse(ev *Event) bool {
	return b.dispatch(ev, true)
}

func (b *Bus) dispatch(ev *Event, reverse bool) bool {
	if ev == nil || !ev.Alive() {
		return false
	}
	name := ev.Name()

	if b.catalog != nil {
		if err := b.catalog.Validate(name, ev.fields); err != nil {
			b.logger.Debug("event rejected", slog.String("event", name), slog.String("error", err.Error()))
			b.drop(name, "schema")
			return false
		}
	}

	list := b.purge(name)
	if len(list) == 0 {
		b.drop(name, "no_handlers")
		return false
	}

	snapshot := make([]*entry, len(list))
	copy(snapshot, list)
	if reverse {
		slices.Reverse(snapshot)
	}
	if !ev.Propagate() {
		ev.Kill()
		snapshot = snapshot[:1]
	}

	b.logger.Debug("dispatch", slog.String("event", ev.String()), slog.Int("handlers", len(snapshot)))

	var span trace.Span
	if b.tracer != nil {
		prev := b.current
		parent := prev
		if parent == nil {
			parent = context.Background()
		}
		var ctx context.Context
		ctx, span = b.tracer.Start(parent, "signal.dispatch", trace.WithAttributes(
			attribute.String("signal.event", name),
			attribute.Bool("signal.reverse", reverse),
			attribute.Bool("signal.propagate", ev.Propagate()),
			attribute.Bool("signal.remote", ev.Remote()),
		))
		ev.ctx = ctx
		b.current = ctx
		defer func() {
			b.current = prev
			span.End()
		}()
	}

	delivered := 0
	for _, e := range snapshot {
		if !e.usable() {
			// Expired between snapshot and call.
			b.remove(e)
			continue
		}
		e.fn(ev)
		delivered++
	}

	if span != nil {
		span.SetAttributes(attribute.Int("signal.delivered", delivered))
	}
	if b.observer != nil {
		b.observer.Dispatched(name, delivered)
	}
	return delivered > 0
}

func (b *Bus) drop(name, reason string) {
	if b.current != nil {
		trace.SpanFromContext(b.current).AddEvent("signal.dropped", trace.WithAttributes(
			attribute.String("signal.event", name),
			attribute.String("signal.reason", reason),
		))
	}
	if b.observer != nil {
		b.observer.Dropped(name, reason)
	}
}

// Names returns every event name with at least one registration.
func (b *Bus) Names() []string {
	out := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of registrations for name, including expired
// entries that have not been purged yet.
func (b *Bus) Count(name string) int {
	return len(b.handlers[name])
}

// Dump writes the registration table for debugging.
func (b *Bus) Dump(w io.Writer) {
	for _, name := range b.Names() {
		fmt.Fprintf(w, "%s\n", name)
		for _, e := range b.handlers[name] {
			state := "live"
			if !e.usable() {
				state = "expired"
			}
			fmt.Fprintf(w, "    %T %p (%s)\n", e.target, e.fn, state)
		}
	}
}

// Registrations collects the handles owned by one component so they can be
// released together when the component is torn down.
type Registrations struct {
	handles []Handle
}

// Add keeps h when it is a new registration and reports whether it did.
// It accepts the results of Bus.Register directly.
func (r *Registrations) Add(h Handle, added bool) bool {
	if !added {
		return false
	}
	r.handles = append(r.handles, h)
	return true
}

// Len returns the number of tracked handles.
func (r *Registrations) Len() int {
	return len(r.handles)
}

// ReleaseAll releases every tracked handle.
func (r *Registrations) ReleaseAll() {
	for _, h := range r.handles {
		h.Release()
	}
	r.handles = nil
}
