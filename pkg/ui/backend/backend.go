// Package backend defines the character-grid contract the widget engine
// draws to and reads keys from. The tcell package drives a real terminal;
// the sim package drives an in-memory screen for tests.
package backend

import "github.com/odvcencio/cursing/pkg/ui/terminal"

// Backend is the terminal abstraction layer.
type Backend interface {
	RenderTarget

	// Init enters raw mode and the alternate screen.
	Init() error

	// Fini restores the terminal.
	Fini()

	// Show flushes pending cells to the terminal.
	Show()

	// Clear blanks the screen.
	Clear()

	HideCursor()
	SetCursorPos(x, y int)

	// PollEvent blocks until an event is available.
	// Returns nil once the backend is shutting down.
	PollEvent() terminal.Event

	// PostEvent injects an event into the input queue.
	PostEvent(ev terminal.Event) error

	// Sync forces a full redraw on next Show.
	Sync()
}

// RenderTarget is the subset of Backend widgets draw to.
type RenderTarget interface {
	Size() (width, height int)
	SetContent(x, y int, mainc rune, comb []rune, style Style)
}

// Clip restricts drawing on a RenderTarget to a rectangle. Coordinates stay
// absolute; cells outside the rectangle are dropped.
type Clip struct {
	target              RenderTarget
	x, y, width, height int
}

// NewClip wraps target so only cells inside (x, y, w, h) are written.
func NewClip(target RenderTarget, x, y, w, h int) *Clip {
	return &Clip{target: target, x: x, y: y, width: max(0, w), height: max(0, h)}
}

// Size returns the size of the wrapped target.
func (c *Clip) Size() (width, height int) {
	return c.target.Size()
}

// SetContent writes the cell when it lies inside the clip rectangle.
func (c *Clip) SetContent(x, y int, mainc rune, comb []rune, style Style) {
	if x < c.x || x >= c.x+c.width || y < c.y || y >= c.y+c.height {
		return
	}
	c.target.SetContent(x, y, mainc, comb, style)
}
