package widgets

import (
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Tab is one page of a tab group. Tabs sharing a parent form the group:
// only one is shown at a time, and every shown tab draws the headers of
// the whole group. A hidden tab stays reachable by its trigger key and by
// Tab traversal.
type Tab struct {
	runtime.Node
}

// NewTab creates a tab covering the width of its parent. Use AddTab to
// attach it so the group stays consistent.
func NewTab(label string, trigger rune) *Tab {
	t := &Tab{}
	t.Init(t, label)
	t.SetFocusable(true)
	t.SetTriggerRune(trigger)
	t.SetHeader(true)
	t.SetScope(true)
	t.SetGeometry(runtime.Fill())
	return t
}

// AddTab attaches t to parent. The first tab of a group is shown; later
// tabs start hidden.
func AddTab(parent runtime.Widget, t *Tab) *Tab {
	if len(siblingTabs(parent)) > 0 {
		t.Hide()
	}
	return runtime.Attach(parent, t)
}

func siblingTabs(parent runtime.Widget) []*Tab {
	if parent == nil {
		return nil
	}
	var tabs []*Tab
	for _, child := range parent.Base().Children() {
		if tab, ok := child.(*Tab); ok && tab.Alive() {
			tabs = append(tabs, tab)
		}
	}
	return tabs
}

// Group returns the tabs of t's group in order, including t.
func (t *Tab) Group() []*Tab {
	if t.Parent() == nil {
		return []*Tab{t}
	}
	return siblingTabs(t.Parent())
}

// Select shows t and hides the rest of its group.
func (t *Tab) Select() {
	for _, other := range t.Group() {
		if other != t {
			other.Hide()
		}
	}
	t.Show()
}

// Descend focuses the first focusable widget inside the tab.
func (t *Tab) Descend() bool {
	ctx := t.Context()
	if ctx == nil {
		return false
	}
	for _, w := range ctx.Focus().Order() {
		if isDescendant(w, t) {
			return ctx.Focus().Focus(w)
		}
	}
	return false
}

func (t *Tab) Draw(c *runtime.Canvas) {
	w, h := c.Width(), c.Height()
	c.Sub(0, 2, w, h-2).Border(runtime.BorderOptions{})

	x := 2
	for _, tab := range t.Group() {
		tw := width(tab.Label()) + 4
		header := c.Sub(x, 0, tw, 3)
		if tab == t {
			header.Border(runtime.BorderOptions{})
			header.Set(0, 2, '┘', header.Style(theme.Border))
			header.Set(tw-1, 2, '└', header.Style(theme.Border))
			for i := 1; i < tw-1; i++ {
				header.Set(i, 2, ' ', header.Style(theme.Border))
			}
			header.Text(tab.Label(), runtime.TextOptions{Row: 1, Margin: 2, Key: theme.Label, Hint: hint(&tab.Node)})
		} else {
			header.Border(runtime.BorderOptions{Key: theme.Inactive})
			header.Text(tab.Label(), runtime.TextOptions{Row: 1, Margin: 2, Key: theme.Inactive, Hint: hint(&tab.Node)})
		}
		x += tw + 2
	}
}

func (t *Tab) HandleInput(ev terminal.KeyEvent) runtime.Status {
	if isEnter(ev) {
		t.Descend()
	}
	return runtime.Continue
}

func (t *Tab) GainFocus() {
	t.Select()
	announce(&t.Node, "Enter:Descend")
}

func (t *Tab) LoseFocus() {}
