package widgets

import (
	"math"
	"strconv"
	"strings"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// inputField is the bordered, three row box shared by the input widgets.
// Its label is drawn to the left of the middle row.
type inputField struct {
	runtime.Node
	label *Label
}

func (f *inputField) init(self runtime.Widget, label string, trigger rune) {
	f.Init(self, label)
	f.SetFocusable(true)
	f.SetTriggerRune(trigger)
	f.SetHeight(3)
	f.label = NewLabel(self)
	f.label.Embellish("", ": ")
	f.label.ToRow(1)
}

// LinkedLabel returns the label drawn beside the field.
func (f *inputField) LinkedLabel() *Label {
	return f.label
}

// drawInput draws the border and one line of input with a trailing cursor.
func (f *inputField) drawInput(c *runtime.Canvas, text string) {
	c.Border(runtime.BorderOptions{})
	end := c.Text(text+" ", runtime.TextOptions{Row: 1, Margin: 1, Fit: runtime.FitClipLeft})
	if end > 1 {
		c.Set(end-1, 1, ' ', c.Style(theme.Cursor))
	}
}

func (f *inputField) LoseFocus() {}

// TextField is a single line text input. It composes {text}.
type TextField struct {
	inputField
	text    []rune
	obscure bool
}

// NewTextField creates a text field with its label.
func NewTextField(label string, trigger rune) *TextField {
	f := &TextField{}
	f.init(f, label, trigger)
	return f
}

// Text returns the current input.
func (f *TextField) Text() string {
	return string(f.text)
}

// SetText replaces the input.
func (f *TextField) SetText(text string) {
	f.text = []rune(text)
	f.MarkDirty()
}

// Obscure draws the input as asterisks.
func (f *TextField) Obscure() {
	f.obscure = true
	f.MarkDirty()
}

// Reveal draws the input as typed.
func (f *TextField) Reveal() {
	f.obscure = false
	f.MarkDirty()
}

func (f *TextField) Compose() (bool, signal.Fields) {
	return true, signal.F("text", f.Text())
}

func (f *TextField) Decompose(fields signal.Fields) {
	if fields.Has("text") {
		f.text = []rune(fields.Str("text"))
	}
}

func (f *TextField) Captures(ev terminal.KeyEvent) bool {
	return ev.Printable() || isErase(ev)
}

func (f *TextField) HandleInput(ev terminal.KeyEvent) runtime.Status {
	switch {
	case isEnter(ev):
		return runtime.End
	case ev.Printable():
		f.text = append(f.text, ev.Rune)
		f.MarkDirty()
	case isErase(ev):
		if len(f.text) > 0 {
			f.text = f.text[:len(f.text)-1]
			f.MarkDirty()
		}
	}
	return runtime.Continue
}

func (f *TextField) Draw(c *runtime.Canvas) {
	text := f.Text()
	if f.obscure {
		text = strings.Repeat("*", len(f.text))
	}
	f.drawInput(c, text)
}

func (f *TextField) GainFocus() {
	announce(&f.Node, "Enter text input.")
}

// maxDigits keeps NumericField input within int range.
var maxDigits = len(strconv.Itoa(math.MaxInt)) - 1

// NumericField accepts digits only, at most maxDigits of them. It composes
// {number} once something has been typed.
type NumericField struct {
	inputField
	digits []rune
}

// NewNumericField creates a numeric field with its label.
func NewNumericField(label string, trigger rune) *NumericField {
	f := &NumericField{}
	f.init(f, label, trigger)
	return f
}

// Number returns the parsed input and whether there is one.
func (f *NumericField) Number() (int, bool) {
	if len(f.digits) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(string(f.digits))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (f *NumericField) Compose() (bool, signal.Fields) {
	n, ok := f.Number()
	if !ok {
		return false, signal.F("number", nil)
	}
	return true, signal.F("number", n)
}

func (f *NumericField) Decompose(fields signal.Fields) {
	if n, ok := fields.Int("number"); ok {
		f.digits = []rune(strconv.Itoa(n))
	}
}

func (f *NumericField) Captures(ev terminal.KeyEvent) bool {
	return f.acceptsDigit(ev) || isErase(ev)
}

func (f *NumericField) acceptsDigit(ev terminal.KeyEvent) bool {
	return ev.Printable() && ev.Rune >= '0' && ev.Rune <= '9'
}

func (f *NumericField) HandleInput(ev terminal.KeyEvent) runtime.Status {
	switch {
	case isEnter(ev):
		return runtime.End
	case f.acceptsDigit(ev):
		if len(f.digits) < maxDigits {
			f.digits = append(f.digits, ev.Rune)
			f.MarkDirty()
		}
	case isErase(ev):
		if len(f.digits) > 0 {
			f.digits = f.digits[:len(f.digits)-1]
			f.MarkDirty()
		}
	}
	return runtime.Continue
}

func (f *NumericField) Draw(c *runtime.Canvas) {
	f.drawInput(c, string(f.digits))
}

func (f *NumericField) GainFocus() {
	announce(&f.Node, "Enter numeric input.")
}
