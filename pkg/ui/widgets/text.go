package widgets

import (
	"strings"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Text shows static lines in one style. It decomposes {text} as raw text
// and {rows} as a table, one line per row.
type Text struct {
	runtime.Node
	lines []string
}

// NewText creates a text widget drawn with the style for key. It is sized
// to its lines.
func NewText(label, key string) *Text {
	t := &Text{}
	t.Init(t, label)
	t.SetStyleKey(key)
	t.Fit(0, 0)
	return t
}

// AddLine appends one line.
func (t *Text) AddLine(line string) {
	t.lines = append(t.lines, line)
	t.MarkDirty()
}

// AddRaw appends raw, split on newlines.
func (t *Text) AddRaw(raw string) {
	t.lines = append(t.lines, strings.Split(raw, "\n")...)
	t.MarkDirty()
}

// SetLines replaces the content.
func (t *Text) SetLines(lines []string) {
	t.lines = append([]string(nil), lines...)
	t.MarkDirty()
}

// Lines returns the content.
func (t *Text) Lines() []string {
	return append([]string(nil), t.lines...)
}

// ContentSize is the widest line by the number of lines.
func (t *Text) ContentSize() runtime.Size {
	w := 0
	for _, line := range t.lines {
		w = max(w, width(line))
	}
	return runtime.Size{Width: w, Height: len(t.lines)}
}

func (t *Text) Decompose(fields signal.Fields) {
	if fields.Has("text") {
		t.lines = strings.Split(fields.Str("text"), "\n")
	}
	if v, ok := fields.Get("rows"); ok {
		rows, _ := v.([][]string)
		t.lines = t.lines[:0]
		for _, row := range rows {
			t.lines = append(t.lines, strings.Join(row, " | "))
		}
	}
}

func (t *Text) Draw(c *runtime.Canvas) {
	for i, line := range t.lines {
		c.Text(line, runtime.TextOptions{Row: i})
	}
}

func (t *Text) HandleInput(terminal.KeyEvent) runtime.Status {
	return runtime.Continue
}

func (t *Text) GainFocus() {}
func (t *Text) LoseFocus() {}
