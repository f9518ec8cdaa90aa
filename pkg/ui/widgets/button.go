package widgets

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Button is a push button. Enter pushes it and ends the edit; its
// translator then emits the mapped events with an empty payload.
type Button struct {
	runtime.Node
	pushed bool
}

// NewButton creates a button sized to its label. A zero trigger leaves the
// button reachable by Tab only.
func NewButton(label string, trigger rune) *Button {
	b := &Button{}
	b.Init(b, label)
	b.SetFocusable(true)
	b.SetTriggerRune(trigger)
	b.Fit(4, 0)
	return b
}

// ContentSize is the label size; the button adds two columns of padding
// and its parentheses.
func (b *Button) ContentSize() runtime.Size {
	return runtime.Size{Width: width(b.Label()), Height: 1}
}

// Pushed reports whether Enter was pressed since the button gained focus.
func (b *Button) Pushed() bool {
	return b.pushed
}

func (b *Button) Compose() (bool, signal.Fields) {
	return b.pushed, signal.Fields{}
}

func (b *Button) Draw(c *runtime.Canvas) {
	w := c.Width()
	c.Text("(", runtime.TextOptions{})
	c.Text(")", runtime.TextOptions{Align: runtime.AlignEnd})
	c.Sub(1, 0, w-2, 1).Text(b.Label(), runtime.TextOptions{
		Padding: 1,
		Align:   runtime.AlignCenter,
		Hint:    hint(&b.Node),
	})
}

func (b *Button) HandleInput(ev terminal.KeyEvent) runtime.Status {
	if isEnter(ev) {
		b.pushed = true
		return runtime.End
	}
	return runtime.Continue
}

func (b *Button) GainFocus() {
	b.pushed = false
	announce(&b.Node, "Enter:Execute")
}

func (b *Button) LoseFocus() {}
