package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/backend"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// ErrNoBackend is returned by Run when the App has no backend.
var ErrNoBackend = errors.New("backend is required")

// Config configures an App.
type Config struct {
	Backend       backend.Backend
	Root          Widget
	Bus           *signal.Bus
	Theme         *theme.Theme
	MessageBuffer int
	TickRate      time.Duration
	Logger        *slog.Logger
}

// App runs a widget tree against a terminal backend. Everything that
// touches the tree happens on the goroutine running Run; other goroutines
// talk to it through Post.
type App struct {
	backend  backend.Backend
	ctx      *Context
	buf      *Buffer
	messages chan Message
	tickRate time.Duration
	logger   *slog.Logger

	running bool
}

// NewApp creates a new App from config and binds the root to a Context.
func NewApp(cfg Config) *App {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &App{
		backend:  cfg.Backend,
		ctx:      NewContext(cfg.Root, cfg.Bus, cfg.Theme),
		buf:      NewBuffer(0, 0),
		messages: make(chan Message, bufferSize),
		tickRate: cfg.TickRate,
		logger:   logger,
	}
	a.ctx.bus.Register(signal.UIExit, a, func(*signal.Event) {
		a.logger.Info("exit requested")
		a.running = false
	})
	return a
}

// Context returns the tree's context.
func (a *App) Context() *Context {
	return a.ctx
}

// Buffer returns the off-screen buffer.
func (a *App) Buffer() *Buffer {
	return a.buf
}

// Running reports whether the loop is active.
func (a *App) Running() bool {
	return a.running
}

// Post sends a message to the event loop. It never blocks; the message is
// dropped when the queue is full.
func (a *App) Post(msg Message) {
	select {
	case a.messages <- msg:
	default:
		a.logger.Warn("message dropped", slog.String("type", fmt.Sprintf("%T", msg)))
	}
}

// PostEvent queues ev for dispatch on the loop goroutine. It matches the
// post callback of signal.NewBridge.
func (a *App) PostEvent(ev *signal.Event) {
	a.Post(SignalMsg{Event: ev})
}

// Run starts the event loop until ui.exit is dispatched or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.backend == nil {
		return ErrNoBackend
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.backend.Init(); err != nil {
		return fmt.Errorf("init backend: %w", err)
	}
	defer a.backend.Fini()

	a.backend.HideCursor()
	a.resize(a.backend.Size())
	a.Start()

	go a.pollEvents()

	var ticks <-chan time.Time
	if a.tickRate > 0 {
		ticker := time.NewTicker(a.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	a.Render()
	for a.running {
		select {
		case <-ctx.Done():
			a.running = false
		case msg := <-a.messages:
			if a.Update(msg) {
				a.Render()
			}
		case now := <-ticks:
			if a.Update(TickMsg{Time: now}) {
				a.Render()
			}
		}
	}

	return ctx.Err()
}

// Start activates the visible tree and focuses the first widget in
// traversal order. Run calls it; tests driving Update directly call it
// themselves.
func (a *App) Start() {
	a.running = true
	if root := a.ctx.root; root != nil {
		activateTree(root)
	}
	if a.ctx.focus.Focused() == nil {
		a.ctx.focus.Next()
	}
}

// Update applies one message and reports whether a render is needed.
func (a *App) Update(msg Message) bool {
	switch m := msg.(type) {
	case KeyMsg:
		a.handleKey(m.KeyEvent)
	case ResizeMsg:
		a.resize(m.Width, m.Height)
	case PasteMsg:
		a.paste(m.Text)
	case TickMsg:
		a.ctx.Tick()
	case SignalMsg:
		a.ctx.bus.Dispatch(m.Event)
	case ThemeMsg:
		if m.Err != nil {
			a.logger.Warn("theme reload failed", slog.String("error", m.Err.Error()))
			return false
		}
		a.ctx.SetTheme(m.Theme)
	}
	return a.ctx.NeedsRender()
}

// Render draws invalidated widgets and flushes the changed cells.
func (a *App) Render() {
	if !a.ctx.NeedsRender() {
		return
	}
	a.ctx.Render(a.buf)
	if a.backend == nil {
		return
	}
	a.buf.Flush(a.backend)
	a.backend.Show()
}

func (a *App) resize(width, height int) {
	a.ctx.Resize(width, height)
	a.buf.Resize(width, height)
	a.buf.MarkAllDirty()
}

// handleKey routes one key. The focused widget sees keys it captures
// first; then come Escape, Tab traversal and trigger keys; anything left
// goes to the focused widget.
func (a *App) handleKey(ev terminal.KeyEvent) {
	focus := a.ctx.focus
	w := focus.Focused()

	if w != nil && captures(w, ev) {
		a.deliver(w, ev)
		return
	}

	switch ev.Key {
	case terminal.KeyEscape:
		focus.Escape()
		return
	case terminal.KeyTab:
		focus.Next()
		return
	case terminal.KeyBackTab:
		focus.Prev()
		return
	}

	if focus.Lookup(ev) {
		return
	}
	if w != nil {
		a.deliver(w, ev)
	}
}

func captures(w Widget, ev terminal.KeyEvent) bool {
	c, ok := w.(Capturer)
	return ok && c.Captures(ev)
}

func (a *App) deliver(w Widget, ev terminal.KeyEvent) {
	if w.HandleInput(ev) == End {
		a.finish(w)
	}
}

// finish runs after w returns End: its adapter composes, then focus goes
// back to the widget it was pushed from, or to whatever the nearest
// delegate or focusable ancestor chooses. With neither, focus is cleared.
func (a *App) finish(w Widget) {
	n := w.Base()
	if n.adapter != nil {
		n.adapter.Flush()
	}

	focus := a.ctx.focus
	if f := focus.Focused(); f == nil || f.Base() != n {
		return
	}
	if focus.Depth() > 0 {
		focus.Escape()
		return
	}

	for p := n.parent; p != nil; p = p.Base().parent {
		if d, ok := p.(FocusDelegate); ok {
			if target := d.NextFocus(w); target != nil && focus.Focus(target) {
				return
			}
		}
		if focus.CanFocus(p) {
			focus.Focus(p)
			return
		}
	}
	focus.Clear()
}

func (a *App) paste(text string) {
	w := a.ctx.focus.Focused()
	if w == nil {
		return
	}
	for _, r := range text {
		ev := terminal.Rune(r)
		if !captures(w, ev) {
			continue
		}
		w.HandleInput(ev)
	}
}

func (a *App) pollEvents() {
	for {
		ev := a.backend.PollEvent()
		if ev == nil {
			return
		}

		switch e := ev.(type) {
		case terminal.KeyEvent:
			a.Post(KeyMsg{KeyEvent: e})
		case terminal.ResizeEvent:
			a.Post(ResizeMsg{Width: e.Width, Height: e.Height})
		case terminal.PasteEvent:
			a.Post(PasteMsg{Text: e.Text})
		}
	}
}
