package widgets

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// SelectionList is a bordered list with a movable highlight. Enter marks
// the highlighted item as selected.
type SelectionList struct {
	runtime.Node
	items     []string
	highlight int
	selection int
	scroll    int
}

// NewSelectionList creates an empty list.
func NewSelectionList(label string, trigger rune) *SelectionList {
	l := &SelectionList{selection: -1}
	l.Init(l, label)
	l.SetFocusable(true)
	l.SetTriggerRune(trigger)
	return l
}

// SetItems replaces the items and clears the selection.
func (l *SelectionList) SetItems(items []string) {
	l.items = append([]string(nil), items...)
	l.highlight, l.selection, l.scroll = 0, -1, 0
	l.MarkDirty()
}

// Items returns the list items.
func (l *SelectionList) Items() []string {
	return append([]string(nil), l.items...)
}

// Highlight returns the highlighted index.
func (l *SelectionList) Highlight() int {
	return l.highlight
}

// Selected returns the selected item, if any.
func (l *SelectionList) Selected() (string, bool) {
	if l.selection < 0 || l.selection >= len(l.items) {
		return "", false
	}
	return l.items[l.selection], true
}

func (l *SelectionList) Decompose(fields signal.Fields) {
	if fields.Has("items") {
		l.SetItems(fields.Strings("items"))
	}
}

func (l *SelectionList) Captures(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyUp || ev.Key == terminal.KeyDown
}

func (l *SelectionList) HandleInput(ev terminal.KeyEvent) runtime.Status {
	if len(l.items) == 0 {
		return runtime.Continue
	}
	switch ev.Key {
	case terminal.KeyDown:
		l.highlight = wrap(l.highlight, 1, len(l.items))
	case terminal.KeyUp:
		l.highlight = wrap(l.highlight, -1, len(l.items))
	case terminal.KeyEnter:
		l.selection = l.highlight
	default:
		return runtime.Continue
	}
	l.scroll = follow(l.scroll, l.highlight, l.Box().Height-2)
	l.MarkDirty()
	return runtime.Continue
}

func (l *SelectionList) Draw(c *runtime.Canvas) {
	c.Border(runtime.BorderOptions{})
	c.Sub(1, 0, c.Width()-2, 1).Text(l.Label(), runtime.TextOptions{
		Padding: 1,
		Align:   runtime.AlignCenter,
		Hint:    hint(&l.Node),
	})

	rows := c.Height() - 2
	for i := 0; i < rows && l.scroll+i < len(l.items); i++ {
		idx := l.scroll + i
		key := theme.Text
		if idx == l.highlight {
			key = theme.Highlight
		}
		row := c.Sub(1, i+1, c.Width()-2, 1)
		row.Text(l.items[idx], runtime.TextOptions{Margin: 3, Expand: runtime.ExpandRight, Key: key})
		if idx == l.selection {
			row.Text("*", runtime.TextOptions{Margin: 1, Key: key})
		}
	}
}

func (l *SelectionList) GainFocus() {
	announce(&l.Node, "Up/Down:Scroll, Enter:Select")
}

func (l *SelectionList) LoseFocus() {}
