package runtime

import (
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

type testWidget struct {
	Node
	fill    rune
	capture bool
	keys    []terminal.KeyEvent
	gained  int
	lost    int
	onGain  func()
}

func newTestWidget(label string) *testWidget {
	w := &testWidget{}
	w.Init(w, label)
	w.SetFocusable(true)
	return w
}

// newBox returns a widget that cannot take focus.
func newBox(label string) *testWidget {
	w := newTestWidget(label)
	w.SetFocusable(false)
	return w
}

func (w *testWidget) Draw(c *Canvas) {
	if w.fill != 0 {
		c.Fill(w.fill, "")
	}
}

func (w *testWidget) HandleInput(ev terminal.KeyEvent) Status {
	w.keys = append(w.keys, ev)
	if ev.Key == terminal.KeyEnter {
		return End
	}
	return Continue
}

func (w *testWidget) Captures(ev terminal.KeyEvent) bool {
	return w.capture && ev.Printable()
}

func (w *testWidget) GainFocus() {
	w.gained++
	if w.onGain != nil {
		w.onGain()
	}
}
func (w *testWidget) LoseFocus() { w.lost++ }

type testAdapter struct {
	activated int
	flushed   int
	released  int
}

func (a *testAdapter) Activate() { a.activated++ }
func (a *testAdapter) Flush() { a.flushed++ }
func (a *testAdapter) Release() { a.released++ }

// newTree builds an 80x24 root bound to a fresh context.
func newTree() (*testWidget, *Context) {
	root := newBox("root")
	root.Resize(80, 24)
	ctx := NewContext(root, nil, nil)
	ctx.Resize(80, 24)
	return root, ctx
}

func countFocused(ws ...*testWidget) int {
	n := 0
	for _, w := range ws {
		if w.Focused() {
			n++
		}
	}
	return n
}
