package runtime

import (
	"time"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Message represents an event flowing into the UI loop.
// Messages come from terminal input, timers, or background goroutines.
type Message interface {
	isMessage()
}

// KeyMsg represents a keyboard input event.
type KeyMsg struct {
	terminal.KeyEvent
}

func (KeyMsg) isMessage() {}

// ResizeMsg indicates the terminal size changed.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) isMessage() {}

// PasteMsg represents pasted text from bracketed paste mode.
type PasteMsg struct {
	Text string
}

func (PasteMsg) isMessage() {}

// TickMsg is sent on each tick for scrolling text.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// SignalMsg carries an event produced off the loop goroutine, for example
// by a transport bridge. It is dispatched on the bus when received.
type SignalMsg struct {
	Event *signal.Event
}

func (SignalMsg) isMessage() {}

// ThemeMsg replaces the active theme. A non-nil Err reports a failed reload
// and leaves the theme unchanged.
type ThemeMsg struct {
	Theme *theme.Theme
	Err   error
}

func (ThemeMsg) isMessage() {}
