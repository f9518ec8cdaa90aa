package widgets

import (
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Label shows the label of another widget outside that widget's box. It
// is attached as a child of the widget it names and placed to its left on
// a given row.
type Label struct {
	runtime.Node
	target runtime.Widget
	prefix string
	suffix string
	row    int
}

// NewLabel creates a label for target and attaches it to target.
func NewLabel(target runtime.Widget) *Label {
	l := &Label{target: target}
	l.Init(l, "label")
	l.SetStyleKey(theme.Label)
	return runtime.Attach(target, l)
}

// Embellish sets text drawn around the target's label.
func (l *Label) Embellish(prefix, suffix string) {
	l.prefix, l.suffix = prefix, suffix
	l.MarkDirty()
}

// ToRow aligns the label with row of the target.
func (l *Label) ToRow(row int) {
	l.row = row
	l.MarkDirty()
}

// Text returns the embellished label.
func (l *Label) Text() string {
	return l.prefix + l.target.Base().Label() + l.suffix
}

// Locate places the label immediately left of the target.
func (l *Label) Locate() runtime.Box {
	tb := l.target.Base().Box()
	w := width(l.Text())
	return runtime.Box{X: tb.X - w, Y: tb.Y + l.row, Width: w, Height: 1}
}

func (l *Label) Draw(c *runtime.Canvas) {
	c = c.ForState(l.target.Base().State())
	c.Text(l.Text(), runtime.TextOptions{Hint: hint(l.target.Base())})
}

func (l *Label) HandleInput(terminal.KeyEvent) runtime.Status {
	return runtime.Continue
}

func (l *Label) GainFocus() {}
func (l *Label) LoseFocus() {}
