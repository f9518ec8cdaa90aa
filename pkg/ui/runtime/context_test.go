package runtime

import (
	"testing"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

type floatingWidget struct {
	testWidget
}

func (f *floatingWidget) Floating() bool { return true }

func newFloating(label string, fill rune) *floatingWidget {
	f := &floatingWidget{}
	f.Init(f, label)
	f.fill = fill
	return f
}

func TestRenderDrawsTreeInOrder(t *testing.T) {
	root, ctx := newTree()
	root.Resize(6, 2)
	a := Attach(root, newTestWidget("a"))
	a.Resize(4, 1)
	a.fill = 'a'
	b := Attach(root, newTestWidget("b"))
	b.Resize(4, 1)
	b.Move(2, 0)
	b.fill = 'b'

	buf := NewBuffer(6, 2)
	ctx.Render(buf)
	if got := buf.Line(0); got != "aabbbb" {
		t.Fatalf("Line(0) = %q", got)
	}
}

func TestRenderFloatingLast(t *testing.T) {
	root, ctx := newTree()
	root.Resize(6, 1)
	menu := Attach(root, newFloating("menu", 'm'))
	menu.Resize(3, 1)
	later := Attach(root, newTestWidget("later"))
	later.Resize(6, 1)
	later.fill = 'x'

	buf := NewBuffer(6, 1)
	ctx.Render(buf)
	if got := buf.Line(0); got != "mmmxxx" {
		t.Fatalf("Line(0) = %q", got)
	}
}

func TestRenderSkipsHidden(t *testing.T) {
	root, ctx := newTree()
	root.Resize(3, 1)
	w := Attach(root, newTestWidget("w"))
	w.Resize(3, 1)
	w.fill = 'w'
	w.Hide()

	buf := NewBuffer(3, 1)
	ctx.Render(buf)
	if got := buf.Line(0); got != "" {
		t.Fatalf("hidden widget drawn: %q", got)
	}
}

func TestRenderBatchOnly(t *testing.T) {
	root, ctx := newTree()
	root.Resize(6, 1)
	panel := Attach(root, newBox("panel"))
	panel.Resize(3, 1)
	panel.SetBatch(true)
	leaf := Attach(panel, newTestWidget("leaf"))
	leaf.Resize(3, 1)
	leaf.fill = 'l'
	other := Attach(root, newTestWidget("other"))
	other.Resize(3, 1)
	other.Move(3, 0)
	other.fill = 'o'

	buf := NewBuffer(6, 1)
	ctx.Render(buf)

	other.fill = 'O'
	leaf.fill = 'L'
	leaf.MarkDirty()
	ctx.Render(buf)
	if got := buf.Line(0); got != "LLLooo" {
		t.Fatalf("Line(0) = %q, want only the batch redrawn", got)
	}
}

func TestTickEmits(t *testing.T) {
	_, ctx := newTree()
	ticks := 0
	ctx.Bus().Register(signal.UITick, t, func(*signal.Event) { ticks++ })

	ctx.Tick()
	ctx.Tick()
	if ticks != 2 || ctx.Ticks() != 2 {
		t.Fatalf("ticks = %d, Ticks() = %d", ticks, ctx.Ticks())
	}
}

func TestSetThemeForcesFullRedraw(t *testing.T) {
	_, ctx := newTree()
	ctx.Render(NewBuffer(80, 24))

	ctx.SetTheme(nil)
	if ctx.NeedsRender() {
		t.Fatal("nil theme scheduled a redraw")
	}
	th := theme.Default()
	ctx.SetTheme(th)
	if !ctx.NeedsRender() || ctx.Theme() != th {
		t.Fatal("SetTheme did not take effect")
	}
}
