package runtime

import (
	"testing"

	"github.com/odvcencio/cursing/pkg/signal"
)

func TestAttachBindsContext(t *testing.T) {
	root, ctx := newTree()
	panel := newBox("panel")
	leaf := Attach(panel, newTestWidget("leaf"))
	if leaf.Context() != nil {
		t.Fatal("detached subtree has a context")
	}

	Attach(root, panel)
	if leaf.Context() != ctx || panel.Context() != ctx {
		t.Fatal("Attach did not bind the subtree")
	}
	if leaf.Parent() != Widget(panel) {
		t.Fatal("parent not set")
	}
	if got := len(root.Children()); got != 1 {
		t.Fatalf("root has %d children, want 1", got)
	}
}

func TestReattachMovesChild(t *testing.T) {
	root, _ := newTree()
	a := Attach(root, newBox("a"))
	b := Attach(root, newBox("b"))
	leaf := Attach(a, newTestWidget("leaf"))

	Attach(b, leaf)
	if len(a.Children()) != 0 || len(b.Children()) != 1 {
		t.Fatal("child not moved between parents")
	}
}

func TestOnIsHeldUntilAttached(t *testing.T) {
	root, ctx := newTree()
	w := newTestWidget("w")

	var got []string
	w.On("ping", func(ev *signal.Event) {
		got = append(got, ev.Name())
	})
	if ctx.Bus().Count("ping") != 0 {
		t.Fatal("registration applied before attach")
	}

	Attach(root, w)
	if ctx.Bus().Count("ping") != 1 {
		t.Fatal("registration not applied on attach")
	}
	root.Emit("ping", signal.Fields{})
	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
}

func TestDestroyReleasesRegistrations(t *testing.T) {
	root, ctx := newTree()
	panel := Attach(root, newBox("panel"))
	leaf := Attach(panel, newTestWidget("leaf"))
	adapter := &testAdapter{}
	leaf.SetAdapter(adapter)

	calls := 0
	panel.On("ping", func(*signal.Event) { calls++ })
	leaf.On("ping", func(*signal.Event) { calls++ })
	if ctx.Bus().Count("ping") != 2 {
		t.Fatalf("Count = %d, want 2", ctx.Bus().Count("ping"))
	}

	Destroy(panel)
	if ctx.Bus().Count("ping") != 0 {
		t.Fatalf("Count = %d after Destroy, want 0", ctx.Bus().Count("ping"))
	}
	if adapter.released != 1 {
		t.Fatalf("adapter released %d times, want 1", adapter.released)
	}
	if panel.Alive() || leaf.Alive() {
		t.Fatal("destroyed widgets report alive")
	}
	if len(root.Children()) != 0 {
		t.Fatal("destroyed widget still attached")
	}
	if ctx.Bus().Emit("ping", signal.Fields{}) || calls != 0 {
		t.Fatal("destroyed widgets received an event")
	}

	leaf.On("ping", func(*signal.Event) { calls++ })
	if ctx.Bus().Count("ping") != 0 {
		t.Fatal("destroyed widget registered a handler")
	}
	Destroy(panel)
}

func TestShowActivatesOnce(t *testing.T) {
	root, _ := newTree()
	w := newTestWidget("w")
	w.Hide()
	adapter := &testAdapter{}
	w.SetAdapter(adapter)
	Attach(root, w)

	if adapter.activated != 0 {
		t.Fatal("hidden widget activated on attach")
	}
	w.Show()
	w.Hide()
	w.Show()
	if adapter.activated != 1 {
		t.Fatalf("activated %d times, want 1", adapter.activated)
	}
}

func TestFocusActivates(t *testing.T) {
	root, ctx := newTree()
	w := Attach(root, newTestWidget("w"))
	adapter := &testAdapter{}
	w.SetAdapter(adapter)

	ctx.Focus().Focus(w)
	ctx.Focus().Clear()
	ctx.Focus().Focus(w)
	if adapter.activated != 1 {
		t.Fatalf("activated %d times, want 1", adapter.activated)
	}
}

func TestMarkDirtyStopsAtBatch(t *testing.T) {
	root, ctx := newTree()
	panel := Attach(root, newBox("panel"))
	panel.SetBatch(true)
	leaf := Attach(panel, newTestWidget("leaf"))
	other := Attach(root, newTestWidget("other"))

	ctx.Render(NewBuffer(80, 24))
	if ctx.NeedsRender() || leaf.Dirty() || root.Dirty() {
		t.Fatal("Render left the tree dirty")
	}

	leaf.MarkDirty()
	if !leaf.Dirty() || !panel.Dirty() {
		t.Fatal("dirty flag did not reach the batch ancestor")
	}
	if root.Dirty() {
		t.Fatal("dirty flag crossed the batch boundary")
	}
	if ctx.full || len(ctx.batches) != 1 {
		t.Fatalf("full=%v batches=%d, want a single batch redraw", ctx.full, len(ctx.batches))
	}

	other.MarkDirty()
	if !root.Dirty() || !ctx.full {
		t.Fatal("dirty flag outside a batch did not reach the root")
	}
}

func TestStateFollowsFocusAndDisabled(t *testing.T) {
	root, ctx := newTree()
	w := Attach(root, newTestWidget("w"))

	if w.State().String() != "default" {
		t.Fatalf("State = %s", w.State())
	}
	ctx.Focus().Focus(w)
	if w.State().String() != "focused" {
		t.Fatalf("State = %s", w.State())
	}
	w.SetDisabled(true)
	if w.State().String() != "disabled" || w.Focused() {
		t.Fatalf("State = %s, focused = %v", w.State(), w.Focused())
	}
}
