// Package translate connects widgets to the signal bus. A Translator turns
// a widget's local state into outgoing events when the widget finishes an
// edit, and turns incoming events back into local state.
package translate

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
)

// Composer is implemented by widgets that produce data. Compose reports
// whether the widget has something to send and the fields to send.
type Composer interface {
	Compose() (bool, signal.Fields)
}

// Decomposer is implemented by widgets that accept data from events.
type Decomposer interface {
	Decompose(fields signal.Fields)
}

// Rename maps field names from one side of a translator to the other.
// Fields without an entry keep their name.
type Rename map[string]string

func (r Rename) apply(in signal.Fields) signal.Fields {
	var out signal.Fields
	in.Each(func(name string, value any) {
		if to, ok := r[name]; ok {
			name = to
		}
		out.Set(name, value)
	})
	return out
}

type output struct {
	name      string
	rename    Rename
	constants signal.Fields
}

type binding struct {
	rename    Rename
	decompose bool
	focus     bool
}

// Translator is the bus adapter of one widget. Build one with New and
// chain the Map methods.
type Translator struct {
	owner    runtime.Widget
	sink     signal.Sink
	inputs   map[string]*binding
	outputs  []output
	requests []string

	requested bool
	released  bool
}

// New creates a translator for w and installs it as w's adapter. Map
// requests before the widget is first shown.
func New(w runtime.Widget) *Translator {
	t := &Translator{
		owner:  w,
		inputs: make(map[string]*binding),
	}
	w.Base().SetAdapter(t)
	return t
}

// To sends composed events and requests to sink instead of the widget's
// bus. Forms use this to collect their children's fields.
func (t *Translator) To(sink signal.Sink) *Translator {
	t.sink = sink
	return t
}

// MapInput decomposes events called name into the widget, renaming event
// fields with rename.
func (t *Translator) MapInput(name string, rename Rename) *Translator {
	b := t.bind(name)
	b.rename = rename
	b.decompose = true
	return t
}

// MapOutput composes the widget's fields into an event called name.
// Constants are added to the payload and win over composed fields.
func (t *Translator) MapOutput(name string, rename Rename, constants signal.Fields) *Translator {
	t.outputs = append(t.outputs, output{name: name, rename: rename, constants: constants})
	return t
}

// MapRequest emits name with an empty payload once, when the widget is
// first shown or focused.
func (t *Translator) MapRequest(names ...string) *Translator {
	t.requests = append(t.requests, names...)
	return t
}

// MapFocus moves focus to the widget whenever an event called name is
// dispatched. The previous holder is restored on Escape.
func (t *Translator) MapFocus(names ...string) *Translator {
	for _, name := range names {
		t.bind(name).focus = true
	}
	return t
}

func (t *Translator) bind(name string) *binding {
	b, ok := t.inputs[name]
	if !ok {
		b = &binding{}
		t.inputs[name] = b
		t.owner.Base().Subscribe(name, t, t.handle)
	}
	return b
}

// Alive reports whether the translator still serves a live widget. Bus
// entries of a released translator lapse.
func (t *Translator) Alive() bool {
	return !t.released && t.owner.Base().Alive()
}

func (t *Translator) handle(ev *signal.Event) {
	b, ok := t.inputs[ev.Name()]
	if !ok {
		return
	}
	if b.decompose {
		t.Decompose(ev)
	}
	if b.focus {
		t.OnFocus(ev)
	}
}

// Decompose applies an input-mapped event to the widget. Events without an
// input mapping are ignored.
func (t *Translator) Decompose(ev *signal.Event) {
	b, ok := t.inputs[ev.Name()]
	if !ok || !b.decompose {
		return
	}
	d, ok := t.owner.(Decomposer)
	if !ok {
		return
	}
	d.Decompose(b.rename.apply(ev.Fields()))
	t.owner.Base().MarkDirty()
}

// OnFocus pushes focus to the widget.
func (t *Translator) OnFocus(*signal.Event) {
	if ctx := t.owner.Base().Context(); ctx != nil {
		ctx.Focus().Push(t.owner)
	}
}

// Compose asks the widget for its fields and emits one event per output
// mapping. It reports whether anything was emitted.
func (t *Translator) Compose() bool {
	c, ok := t.owner.(Composer)
	if !ok || t.released {
		return false
	}
	ready, fields := c.Compose()
	if !ready {
		return false
	}
	sent := false
	for _, out := range t.outputs {
		payload := out.rename.apply(fields)
		payload.Merge(out.constants)
		if t.emit(signal.New(out.name, payload)) {
			sent = true
		}
	}
	return sent
}

func (t *Translator) emit(ev *signal.Event) bool {
	if t.sink != nil {
		return t.sink.Dispatch(ev)
	}
	ctx := t.owner.Base().Context()
	if ctx == nil {
		return false
	}
	return ctx.Bus().Dispatch(ev)
}

// Activate emits the request mappings. Only the first call has an effect.
func (t *Translator) Activate() {
	if t.requested || t.released {
		return
	}
	t.requested = true
	for _, name := range t.requests {
		t.emit(signal.New(name, signal.Fields{}))
	}
}

// Flush composes the widget. The engine calls it when the widget returns
// End.
func (t *Translator) Flush() {
	t.Compose()
}

// Release stops the translator. Its bus entries lapse and are purged on
// the next dispatch of their names.
func (t *Translator) Release() {
	t.released = true
}
