package runtime

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Context is owned by the root widget and shared by the whole tree. It
// carries the bus, the focus pointer, the theme and the redraw state.
type Context struct {
	root  Widget
	bus   *signal.Bus
	focus *FocusController
	theme *theme.Theme

	width, height int
	ticks         int

	full    bool
	batches []Widget
}

// NewContext makes root the root of a tree. A nil bus or theme is replaced
// with a fresh bus and the default theme.
func NewContext(root Widget, bus *signal.Bus, th *theme.Theme) *Context {
	if bus == nil {
		bus = signal.NewBus()
	}
	if th == nil {
		th = theme.Default()
	}
	ctx := &Context{
		root:  root,
		bus:   bus,
		theme: th,
		full:  true,
	}
	ctx.focus = newFocusController(ctx)
	if root != nil {
		if n := root.Base(); n.parent != nil {
			n.detach()
		}
		bindTree(root, ctx)
	}
	return ctx
}

// Root returns the root widget.
func (c *Context) Root() Widget {
	return c.root
}

// Bus returns the signal bus.
func (c *Context) Bus() *signal.Bus {
	return c.bus
}

// Focus returns the focus controller.
func (c *Context) Focus() *FocusController {
	return c.focus
}

// Theme returns the active theme.
func (c *Context) Theme() *theme.Theme {
	return c.theme
}

// SetTheme swaps the theme and schedules a full redraw.
func (c *Context) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}
	c.theme = th
	c.full = true
}

// Resize records the screen size the root resolves against.
func (c *Context) Resize(width, height int) {
	if width == c.width && height == c.height {
		return
	}
	c.width, c.height = max(0, width), max(0, height)
	c.full = true
}

// Screen returns the screen box.
func (c *Context) Screen() Box {
	return Box{Width: c.width, Height: c.height}
}

// Ticks returns the number of ticks seen so far.
func (c *Context) Ticks() int {
	return c.ticks
}

// Tick advances the tick counter and emits ui.tick.
func (c *Context) Tick() {
	c.ticks++
	c.bus.Emit(signal.UITick, signal.Fields{})
}

// NeedsRender reports whether anything was invalidated since the last
// Render.
func (c *Context) NeedsRender() bool {
	return c.full || len(c.batches) > 0
}

// Invalidate schedules a full redraw.
func (c *Context) Invalidate() {
	c.full = true
}

// invalidate records a redraw request. nil means the whole tree.
func (c *Context) invalidate(w Widget) {
	if w == nil {
		c.full = true
		return
	}
	for _, b := range c.batches {
		if b.Base() == w.Base() {
			return
		}
	}
	c.batches = append(c.batches, w)
}

// Render draws everything invalidated since the last call into buf.
func (c *Context) Render(buf *Buffer) {
	fill := c.theme.Style(theme.StateDefault, theme.Fill)
	var floats []Widget

	if c.full {
		w, h := buf.Size()
		buf.Fill(Box{Width: w, Height: h}, ' ', fill)
		if c.root != nil {
			c.draw(buf, c.root, &floats)
		}
	} else {
		for _, b := range c.batches {
			n := b.Base()
			if n.destroyed || n.ctx != c || !n.Visible() {
				continue
			}
			buf.Fill(n.Box(), ' ', fill)
			c.draw(buf, b, &floats)
		}
	}

	for i := 0; i < len(floats); i++ {
		c.drawSubtree(buf, floats[i], &floats)
	}

	c.full = false
	c.batches = nil
}

// draw renders w and its subtree, deferring floating widgets to the end.
func (c *Context) draw(buf *Buffer, w Widget, floats *[]Widget) {
	if f, ok := w.(Floating); ok && f.Floating() {
		if !w.Base().hidden {
			*floats = append(*floats, w)
		}
		return
	}
	c.drawSubtree(buf, w, floats)
}

func (c *Context) drawSubtree(buf *Buffer, w Widget, floats *[]Widget) {
	n := w.Base()
	if n.hidden || n.destroyed {
		return
	}
	w.Draw(NewCanvas(buf, n.Box(), c.theme, n.State(), n.styleKey, c.ticks))
	n.dirty = false
	for _, child := range n.children {
		c.draw(buf, child, floats)
	}
}
