package translate

import (
	"testing"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

type valueWidget struct {
	runtime.Node
	values signal.Fields
	ready  bool
}

func newValueWidget(label string) *valueWidget {
	w := &valueWidget{ready: true}
	w.Init(w, label)
	w.SetFocusable(true)
	return w
}

func (w *valueWidget) Draw(*runtime.Canvas) {}

func (w *valueWidget) HandleInput(terminal.KeyEvent) runtime.Status {
	return runtime.End
}

func (w *valueWidget) GainFocus() {}
func (w *valueWidget) LoseFocus() {}

func (w *valueWidget) Compose() (bool, signal.Fields) {
	return w.ready, w.values
}

func (w *valueWidget) Decompose(fields signal.Fields) {
	w.values.Merge(fields)
}

type recorder struct {
	events []*signal.Event
}

func (r *recorder) Dispatch(ev *signal.Event) bool {
	r.events = append(r.events, ev)
	return true
}

func (r *recorder) on(bus *signal.Bus, names ...string) {
	for _, name := range names {
		bus.Register(name, r, func(ev *signal.Event) {
			r.events = append(r.events, ev)
		})
	}
}

func newRoot() (*valueWidget, *runtime.Context) {
	root := newValueWidget("root")
	root.SetFocusable(false)
	root.Resize(80, 24)
	ctx := runtime.NewContext(root, nil, nil)
	ctx.Resize(80, 24)
	return root, ctx
}

func TestComposeDecomposeRoundTrip(t *testing.T) {
	root, ctx := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	New(w).
		MapInput("x", nil).
		MapOutput("y", nil, signal.Fields{})

	rec := &recorder{}
	rec.on(ctx.Bus(), "y")

	ctx.Bus().Emit("x", signal.F("a", 5))
	if v, _ := w.values.Int("a"); v != 5 {
		t.Fatalf("decompose stored a=%v, want 5", v)
	}

	if !w.Adapter().(*Translator).Compose() {
		t.Fatal("Compose emitted nothing")
	}
	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Name() != "y" {
		t.Fatalf("event name = %q", ev.Name())
	}
	if v, _ := ev.Fields().Int("a"); v != 5 {
		t.Fatalf("y.a = %v, want 5", v)
	}
}

func TestRenameAndConstants(t *testing.T) {
	root, ctx := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	New(w).
		MapInput(signal.UIDatabaseList, Rename{"databases": "options"}).
		MapOutput(signal.DBSetDatabase, Rename{"option": "database"}, signal.F("source", "ui"))

	ctx.Bus().Emit(signal.UIDatabaseList, signal.F("databases", []string{"a", "b"}))
	if got := w.values.Strings("options"); len(got) != 2 {
		t.Fatalf("options = %v", got)
	}

	rec := &recorder{}
	rec.on(ctx.Bus(), signal.DBSetDatabase)
	w.values = signal.F("option", "b", "source", "widget")
	w.Adapter().Flush()

	if len(rec.events) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.events))
	}
	fields := rec.events[0].Fields()
	if fields.Str("database") != "b" {
		t.Errorf("database = %q, want b", fields.Str("database"))
	}
	if fields.Has("option") {
		t.Error("renamed field kept its old name")
	}
	if fields.Str("source") != "ui" {
		t.Errorf("constant did not override composed field: %q", fields.Str("source"))
	}
}

func TestComposeNotReady(t *testing.T) {
	root, ctx := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	w.ready = false
	tr := New(w).MapOutput("y", nil, signal.Fields{})

	rec := &recorder{}
	rec.on(ctx.Bus(), "y")
	if tr.Compose() || len(rec.events) != 0 {
		t.Fatal("widget that is not ready emitted")
	}
}

func TestDecomposeUnmappedIsNoop(t *testing.T) {
	root, _ := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	tr := New(w).MapFocus("z")

	tr.Decompose(signal.New("other", signal.F("a", 1)))
	tr.Decompose(signal.New("z", signal.F("a", 1)))
	if w.values.Len() != 0 {
		t.Fatalf("values = %v, want none", w.values.Names())
	}
}

func TestRequestEmittedOnce(t *testing.T) {
	root, ctx := newRoot()
	w := newValueWidget("w")
	New(w).MapRequest(signal.DBListDatabases)
	w.Hide()
	runtime.Attach(root, w)

	rec := &recorder{}
	rec.on(ctx.Bus(), signal.DBListDatabases)
	if len(rec.events) != 0 {
		t.Fatal("request emitted before the widget was shown")
	}

	w.Show()
	ctx.Focus().Focus(w)
	w.Hide()
	w.Show()
	if len(rec.events) != 1 {
		t.Fatalf("request emitted %d times, want 1", len(rec.events))
	}
	if rec.events[0].Fields().Len() != 0 {
		t.Fatal("request payload not empty")
	}
}

func TestRequestOnAttachAfterStart(t *testing.T) {
	root := newValueWidget("root")
	root.SetFocusable(false)
	app := runtime.NewApp(runtime.Config{Root: root})
	bus := app.Context().Bus()
	rec := &recorder{}
	rec.on(bus, signal.DBListDatabases)
	app.Start()

	w := newValueWidget("late")
	New(w).MapRequest(signal.DBListDatabases)
	runtime.Attach(root, w)
	if len(rec.events) != 1 {
		t.Fatalf("request emitted %d times after attaching to a started tree, want 1", len(rec.events))
	}

	hidden := newValueWidget("hidden")
	New(hidden).MapRequest(signal.DBListDatabases)
	hidden.Hide()
	runtime.Attach(root, hidden)
	if len(rec.events) != 1 {
		t.Fatal("hidden widget requested on attach")
	}
	hidden.Show()
	if len(rec.events) != 2 {
		t.Fatalf("request emitted %d times after show, want 2", len(rec.events))
	}
}

func TestFocusMap(t *testing.T) {
	root, ctx := newRoot()
	a := runtime.Attach(root, newValueWidget("a"))
	status := runtime.Attach(root, newValueWidget("status"))
	New(status).MapFocus(signal.UIFeedback)

	ctx.Focus().Focus(a)
	ctx.Bus().Emit(signal.UIFeedback, signal.F("message", "hi", "error", false))
	if !status.Focused() {
		t.Fatal("focus map did not focus the widget")
	}
	ctx.Focus().Escape()
	if !a.Focused() {
		t.Fatal("Escape did not restore the previous holder")
	}
}

func TestSinkOverridesBus(t *testing.T) {
	root, ctx := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	w.values = signal.F("text", "hi")
	sink := &recorder{}
	New(w).MapOutput(signal.FormField, Rename{"text": "hostname"}, signal.Fields{}).To(sink)

	onBus := &recorder{}
	onBus.on(ctx.Bus(), signal.FormField)
	w.Adapter().Flush()

	if len(onBus.events) != 0 {
		t.Fatal("event reached the bus")
	}
	if len(sink.events) != 1 || sink.events[0].Fields().Str("hostname") != "hi" {
		t.Fatal("event not delivered to the sink")
	}
}

func TestReleaseAndDestroy(t *testing.T) {
	root, ctx := newRoot()
	w := runtime.Attach(root, newValueWidget("w"))
	tr := New(w).MapInput("x", nil)

	tr.Release()
	if ctx.Bus().Emit("x", signal.F("a", 1)) {
		t.Fatal("released translator still handles events")
	}
	if w.values.Len() != 0 {
		t.Fatal("released translator decomposed")
	}

	w2 := runtime.Attach(root, newValueWidget("w2"))
	New(w2).MapInput("y", nil)
	runtime.Destroy(w2)
	if ctx.Bus().Count("y") != 0 {
		t.Fatal("Destroy left translator registrations on the bus")
	}
}
