package runtime

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/cursing/pkg/ui/backend"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Fit selects how text wider than the available space is shortened.
type Fit int

const (
	// FitClip drops the tail.
	FitClip Fit = iota
	// FitClipLeft drops the head, keeping the end visible. Input fields use
	// it so the cursor stays on screen.
	FitClipLeft
	// FitAutoScroll scrolls the text one column per tick.
	FitAutoScroll
)

// Expand selects whether the style background extends past the text.
type Expand int

const (
	ExpandNone Expand = iota
	// ExpandRight fills from the end of the text to the right edge.
	ExpandRight
	// ExpandAround fills the whole row.
	ExpandAround
)

// TextOptions controls Canvas.Text.
type TextOptions struct {
	Row     int
	Margin  int
	Padding int
	Align   Align
	Fit     Fit
	Expand  Expand

	// Hint underlines the first occurrence of the rune, ignoring case.
	Hint rune

	// Key is the style key; empty uses the widget's style key.
	Key string
}

// BorderOptions controls Canvas.Border.
type BorderOptions struct {
	Key   string
	Title string
}

const scrollGap = "   "

// Canvas draws into the part of the buffer covered by one widget. All
// coordinates are relative to the widget's box and writes outside it are
// dropped.
type Canvas struct {
	buf   *Buffer
	box   Box
	clip  Box
	theme *theme.Theme
	state theme.State
	key   string
	ticks int
}

// NewCanvas returns a canvas for box. Most code gets one from the Context.
func NewCanvas(buf *Buffer, box Box, th *theme.Theme, state theme.State, key string, ticks int) *Canvas {
	w, h := buf.Size()
	return &Canvas{
		buf:   buf,
		box:   box,
		clip:  box.Intersect(Box{Width: w, Height: h}),
		theme: th,
		state: state,
		key:   key,
		ticks: ticks,
	}
}

// Sub returns a canvas for the rectangle (x, y, w, h) inside c, clipped to
// c's visible area.
func (c *Canvas) Sub(x, y, w, h int) *Canvas {
	sub := *c
	sub.box = Box{X: c.box.X + x, Y: c.box.Y + y, Width: max(0, w), Height: max(0, h)}
	sub.clip = sub.box.Intersect(c.clip)
	return &sub
}

// ForState returns a copy of c that resolves styles in state. Labels use
// it to draw in the state of the widget they describe.
func (c *Canvas) ForState(state theme.State) *Canvas {
	sub := *c
	sub.state = state
	return &sub
}

// Box returns the widget's absolute box.
func (c *Canvas) Box() Box {
	return c.box
}

// Width returns the box width.
func (c *Canvas) Width() int {
	return c.box.Width
}

// Height returns the box height.
func (c *Canvas) Height() int {
	return c.box.Height
}

// Ticks returns the tick count of the frame being drawn.
func (c *Canvas) Ticks() int {
	return c.ticks
}

// State returns the theme state used for style lookups.
func (c *Canvas) State() theme.State {
	return c.state
}

// Style resolves key in the widget's current state. Empty key uses the
// widget's style key.
func (c *Canvas) Style(key string) backend.Style {
	if key == "" {
		key = c.key
	}
	return c.theme.Style(c.state, key)
}

// Set writes one rune at (x, y).
func (c *Canvas) Set(x, y int, r rune, s backend.Style) {
	ax, ay := c.box.X+x, c.box.Y+y
	if !c.clip.Contains(ax, ay) {
		return
	}
	c.buf.Set(ax, ay, r, s)
}

// Fill paints the whole box with ch in the style for key.
func (c *Canvas) Fill(ch rune, key string) {
	c.buf.Fill(c.clip, ch, c.Style(key))
}

// Border draws a single line frame around the box with an optional title
// in the top edge.
func (c *Canvas) Border(opts BorderOptions) {
	w, h := c.box.Width, c.box.Height
	if w < 2 || h < 2 {
		return
	}
	key := opts.Key
	if key == "" {
		key = theme.Border
	}
	s := c.Style(key)

	for x := 1; x < w-1; x++ {
		c.Set(x, 0, '─', s)
		c.Set(x, h-1, '─', s)
	}
	for y := 1; y < h-1; y++ {
		c.Set(0, y, '│', s)
		c.Set(w-1, y, '│', s)
	}
	c.Set(0, 0, '┌', s)
	c.Set(w-1, 0, '┐', s)
	c.Set(0, h-1, '└', s)
	c.Set(w-1, h-1, '┘', s)

	if opts.Title != "" && w > 4 {
		title := runewidth.Truncate(opts.Title, w-4, "")
		c.put(2, 0, title, s, 0)
	}
}

// Text draws one line of text on opts.Row and returns the column just past
// it, relative to the box.
func (c *Canvas) Text(text string, opts TextOptions) int {
	style := c.Style(opts.Key)
	avail := c.box.Width - 2*opts.Margin
	if avail <= 0 || opts.Row < 0 || opts.Row >= c.box.Height {
		return opts.Margin
	}

	if opts.Padding > 0 {
		pad := strings.Repeat(" ", opts.Padding)
		text = pad + text + pad
	}
	text = c.fit(text, avail, opts.Fit)
	width := runewidth.StringWidth(text)

	x := opts.Margin
	switch opts.Align {
	case AlignCenter:
		x += (avail - width) / 2
	case AlignEnd:
		x += avail - width
	}

	switch opts.Expand {
	case ExpandAround:
		c.blank(opts.Margin, opts.Row, avail, style)
	case ExpandRight:
		c.blank(x+width, opts.Row, opts.Margin+avail-x-width, style)
	}
	return c.put(x, opts.Row, text, style, opts.Hint)
}

func (c *Canvas) fit(text string, avail int, fit Fit) string {
	width := runewidth.StringWidth(text)
	if width <= avail {
		return text
	}
	switch fit {
	case FitClipLeft:
		return runewidth.TruncateLeft(text, width-avail, "")
	case FitAutoScroll:
		loop := []rune(text + scrollGap)
		shift := c.ticks % len(loop)
		rotated := string(loop[shift:]) + string(loop[:shift])
		return runewidth.Truncate(rotated, avail, "")
	default:
		return runewidth.Truncate(text, avail, "")
	}
}

func (c *Canvas) blank(x, y, n int, s backend.Style) {
	for i := 0; i < n; i++ {
		c.Set(x+i, y, ' ', s)
	}
}

func (c *Canvas) put(x, y int, text string, s backend.Style, hint rune) int {
	hinted := hint == 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		rs := s
		if !hinted && unicode.ToLower(r) == unicode.ToLower(hint) {
			rs = s.With(backend.AttrUnderline)
			hinted = true
		}
		c.Set(x, y, r, rs)
		if w == 2 {
			c.Set(x+1, y, 0, rs)
		}
		x += w
	}
	return x
}
