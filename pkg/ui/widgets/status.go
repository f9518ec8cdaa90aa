package widgets

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// StatusMode is what the status line is showing while it holds focus.
type StatusMode int

const (
	// ModeStatus shows the latest usage line.
	ModeStatus StatusMode = iota
	// ModeFeedback shows a collaborator's result until Enter or Escape.
	ModeFeedback
	// ModePrompt asks for confirmation before emitting an event.
	ModePrompt
)

const (
	promptKeys   = "Enter:OK, Esc:Cancel"
	feedbackKeys = "Enter/Esc:Continue"
	keysSpacer   = 3
)

// StatusLine shows usage, feedback and confirmation prompts. Feedback and
// prompts take focus through the previous-focus stack, so Escape or Enter
// returns to whatever was focused before.
type StatusLine struct {
	runtime.Node
	mode     StatusMode
	status   string
	feedback string
	failed   bool
	prompt   string
	confirm  string
}

// NewStatusLine creates a status line subscribed to ui.feedback,
// ui.prompt-confirm, ui.update-status and ui.tick.
func NewStatusLine(label string) *StatusLine {
	s := &StatusLine{}
	s.Init(s, label)
	s.SetFocusable(true)
	s.SetTabStop(false)
	s.SetStyleKey(theme.Status)
	s.SetHeight(3)

	s.On(signal.UIFeedback, func(ev *signal.Event) {
		f := ev.Fields()
		s.Feedback(f.Str("message"), f.Bool("error"))
	})
	s.On(signal.UIPromptConfirm, func(ev *signal.Event) {
		f := ev.Fields()
		s.Prompt(f.Str("prompt"), f.Str("confirm"))
	})
	s.On(signal.UIUpdateStatus, func(ev *signal.Event) {
		s.SetStatus(ev.Fields().Str("status"))
	})
	s.On(signal.UITick, func(*signal.Event) {
		if s.scrolling() {
			s.MarkDirty()
		}
	})
	return s
}

// Mode returns the current mode.
func (s *StatusLine) Mode() StatusMode {
	return s.mode
}

// Status returns the usage line.
func (s *StatusLine) Status() string {
	return s.status
}

// SetStatus replaces the usage line.
func (s *StatusLine) SetStatus(status string) {
	s.status = status
	s.MarkDirty()
}

// Feedback shows message and takes focus.
func (s *StatusLine) Feedback(message string, failed bool) {
	s.feedback, s.failed = message, failed
	s.interrupt(ModeFeedback)
}

// Prompt asks the user to confirm; Enter emits confirm.
func (s *StatusLine) Prompt(prompt, confirm string) {
	s.prompt, s.confirm = prompt, confirm
	s.interrupt(ModePrompt)
}

func (s *StatusLine) interrupt(mode StatusMode) {
	s.mode = mode
	if ctx := s.Context(); ctx != nil {
		ctx.Focus().Push(s)
	}
	s.MarkDirty()
}

// content returns the text, key help and style key for the current state.
func (s *StatusLine) content() (text, keys, key string) {
	if !s.Focused() {
		return s.status, "", theme.Status
	}
	switch s.mode {
	case ModePrompt:
		return s.prompt, promptKeys, theme.Status
	case ModeFeedback:
		if s.failed {
			return "ERROR: " + s.feedback, feedbackKeys, theme.Error
		}
		return "SUCCESS: " + s.feedback, feedbackKeys, theme.Success
	}
	return s.status, "", theme.Status
}

func (s *StatusLine) textWidth(keys string) int {
	w := s.Box().Width - 2
	if keys != "" {
		w -= width(keys) + keysSpacer
	}
	return w
}

func (s *StatusLine) scrolling() bool {
	text, keys, _ := s.content()
	return s.Visible() && width(text) > s.textWidth(keys)
}

func (s *StatusLine) Draw(c *runtime.Canvas) {
	text, keys, key := s.content()
	c.Border(runtime.BorderOptions{Key: key})

	avail := c.Width() - 2
	if keys != "" {
		avail -= width(keys) + keysSpacer
		c.Text(keys, runtime.TextOptions{Row: 1, Margin: 1, Align: runtime.AlignEnd, Key: key})
	}
	c.Sub(1, 1, avail, 1).Text(text, runtime.TextOptions{Fit: runtime.FitAutoScroll, Key: key})
}

// Captures takes Escape while feedback or a prompt is shown, so it
// dismisses the status line even when nothing was focused before.
func (s *StatusLine) Captures(ev terminal.KeyEvent) bool {
	return ev.Key == terminal.KeyEscape && s.mode != ModeStatus
}

func (s *StatusLine) HandleInput(ev terminal.KeyEvent) runtime.Status {
	if ev.Key == terminal.KeyEscape && s.mode != ModeStatus {
		return runtime.End
	}
	if !isEnter(ev) {
		return runtime.Continue
	}
	switch s.mode {
	case ModePrompt:
		if s.confirm != "" {
			s.Emit(s.confirm, signal.Fields{})
		}
		return runtime.End
	case ModeFeedback:
		return runtime.End
	}
	return runtime.Continue
}

func (s *StatusLine) GainFocus() {}

func (s *StatusLine) LoseFocus() {
	s.mode = ModeStatus
}
