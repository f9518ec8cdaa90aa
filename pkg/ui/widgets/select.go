package widgets

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// NoSelection is the first option of a SelectField unless a selection is
// required. Choosing it composes a nil option.
const NoSelection = "-- NO SELECTION --"

// SelectField picks one of a list of options. It composes {option} when
// the highlighted option changed while it had focus.
type SelectField struct {
	inputField
	options  []string
	sentinel bool

	highlight int
	initial   int
	scroll    int
	limit     int

	autoExpand bool
	expanded   bool
}

// NewSelectField creates a collapsed select field holding only the
// NoSelection option.
func NewSelectField(label string, trigger rune) *SelectField {
	f := &SelectField{sentinel: true, limit: -1}
	f.init(f, label, trigger)
	f.options = []string{NoSelection}
	return f
}

// RequireSelection removes the NoSelection option.
func (f *SelectField) RequireSelection() {
	if !f.sentinel {
		return
	}
	f.sentinel = false
	f.LoadOptions(f.options[1:])
}

// LoadOptions replaces the options and resets the highlight.
func (f *SelectField) LoadOptions(options []string) {
	f.options = f.options[:0:0]
	if f.sentinel {
		f.options = append(f.options, NoSelection)
	}
	f.options = append(f.options, options...)
	f.highlight, f.initial, f.scroll = 0, 0, 0
	if f.expanded {
		f.Expand()
	}
	f.MarkDirty()
}

// Options returns the options, including NoSelection when present.
func (f *SelectField) Options() []string {
	return append([]string(nil), f.options...)
}

// Highlight returns the index of the highlighted option.
func (f *SelectField) Highlight() int {
	return f.highlight
}

// Selected returns the highlighted option. It reports false for
// NoSelection and for an empty list.
func (f *SelectField) Selected() (string, bool) {
	if len(f.options) == 0 || (f.sentinel && f.highlight == 0) {
		return "", false
	}
	return f.options[f.highlight], true
}

// LimitOptions caps the number of rows shown when expanded. Negative means
// as many as fit.
func (f *SelectField) LimitOptions(n int) {
	f.limit = n
}

// AutoExpand expands the field on focus and collapses it on blur.
func (f *SelectField) AutoExpand() {
	f.autoExpand = true
}

// Expanded reports whether the option list is open.
func (f *SelectField) Expanded() bool {
	return f.expanded
}

// Floating draws the open list over later siblings.
func (f *SelectField) Floating() bool {
	return f.expanded
}

// Expand opens the option list downwards, as far as the parent allows.
func (f *SelectField) Expand() {
	rows := len(f.options)
	if p := f.Parent(); p != nil {
		pb := p.Base().Box()
		room := pb.Height - (f.Box().Y - pb.Y) - 3
		if f.limit < 0 {
			rows = min(rows, pb.Height)
		}
		rows = min(rows, room)
	}
	if f.limit >= 0 {
		rows = min(rows, f.limit)
	}
	f.expanded = true
	f.SetHeight(max(1, rows) + 2)
}

// Collapse closes the option list.
func (f *SelectField) Collapse() {
	f.expanded = false
	f.SetHeight(3)
	if p := f.Parent(); p != nil {
		p.Base().MarkDirty()
	}
}

func (f *SelectField) rows() int {
	return f.Geometry().Height - 2
}

func (f *SelectField) Compose() (bool, signal.Fields) {
	if len(f.options) == 0 {
		return false, signal.Fields{}
	}
	changed := f.highlight != f.initial
	if opt, ok := f.Selected(); ok {
		return changed, signal.F("option", opt)
	}
	return changed, signal.F("option", nil)
}

func (f *SelectField) Decompose(fields signal.Fields) {
	if fields.Has("options") {
		f.LoadOptions(fields.Strings("options"))
	}
}

func (f *SelectField) Captures(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyUp || ev.Key == terminal.KeyDown
}

func (f *SelectField) HandleInput(ev terminal.KeyEvent) runtime.Status {
	switch ev.Key {
	case terminal.KeyDown:
		f.highlight = wrap(f.highlight, 1, len(f.options))
	case terminal.KeyUp:
		f.highlight = wrap(f.highlight, -1, len(f.options))
	case terminal.KeyEnter:
		return runtime.End
	default:
		return runtime.Continue
	}
	f.scroll = follow(f.scroll, f.highlight, f.rows())
	f.MarkDirty()
	return runtime.Continue
}

func (f *SelectField) Draw(c *runtime.Canvas) {
	c.Border(runtime.BorderOptions{})
	rows := c.Height() - 2
	for i := 0; i < rows && f.scroll+i < len(f.options); i++ {
		idx := f.scroll + i
		opts := runtime.TextOptions{
			Row:     i + 1,
			Margin:  1,
			Padding: 1,
			Expand:  runtime.ExpandRight,
			Key:     theme.Text,
		}
		if idx == 0 {
			opts.Expand = runtime.ExpandAround
		}
		if idx == f.highlight {
			opts.Key = theme.Highlight
		}
		c.Text(f.options[idx], opts)
	}
}

func (f *SelectField) GainFocus() {
	f.initial = f.highlight
	if f.autoExpand {
		f.Expand()
	}
	f.scroll = f.highlight
	announce(&f.Node, "Up/Down:Scroll, Enter:Select")
}

func (f *SelectField) LoseFocus() {
	f.scroll = f.highlight
	if f.autoExpand {
		f.Collapse()
	}
}
