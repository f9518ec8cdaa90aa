// Package sim provides an in-memory backend for tests, built on tcell's
// simulation screen.
package sim

import (
	"strings"
	"sync"

	tcellv2 "github.com/gdamore/tcell/v2"

	"github.com/odvcencio/cursing/pkg/ui/backend"
	"github.com/odvcencio/cursing/pkg/ui/backend/tcell"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Backend is a testable backend using tcell's simulation screen.
type Backend struct {
	*tcell.Backend
	screen tcellv2.SimulationScreen
	mu     sync.Mutex
}

// New creates a simulation backend with the given dimensions. Call Init
// before drawing; App.Run does this.
func New(width, height int) *Backend {
	screen := tcellv2.NewSimulationScreen("UTF-8")
	screen.SetSize(width, height)

	return &Backend{
		Backend: tcell.NewWithScreen(screen),
		screen:  screen,
	}
}

// Init initializes the screen and restores the requested size, which the
// simulation screen resets on init.
func (s *Backend) Init() error {
	s.mu.Lock()
	w, h := s.screen.Size()
	s.mu.Unlock()
	if err := s.Backend.Init(); err != nil {
		return err
	}
	if w > 0 && h > 0 {
		s.screen.SetSize(w, h)
	}
	return nil
}

// Press injects key events.
func (s *Backend) Press(keys ...terminal.KeyEvent) {
	for _, k := range keys {
		s.PostEvent(k)
	}
}

// Type injects a string as a sequence of rune key events.
func (s *Backend) Type(str string) {
	for _, r := range str {
		s.PostEvent(terminal.Rune(r))
	}
}

// InjectResize resizes the screen and posts the matching event.
func (s *Backend) InjectResize(width, height int) {
	s.mu.Lock()
	s.screen.SetSize(width, height)
	s.mu.Unlock()
	s.PostEvent(terminal.ResizeEvent{Width: width, Height: height})
}

// Capture returns the screen content, one line per row.
func (s *Backend) Capture() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, h := s.screen.Size()
	lines := make([]string, 0, h)
	for y := 0; y < h; y++ {
		lines = append(lines, s.row(y, 0, w))
	}
	return strings.Join(lines, "\n")
}

// Line returns row y of the screen with trailing blanks trimmed.
func (s *Backend) Line(y int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, _ := s.screen.Size()
	return strings.TrimRight(s.row(y, 0, w), " ")
}

func (s *Backend) row(y, x0, x1 int) string {
	var line strings.Builder
	for x := x0; x < x1; x++ {
		mainc, comb, _, _ := s.screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		line.WriteRune(mainc)
		for _, c := range comb {
			line.WriteRune(c)
		}
	}
	return line.String()
}

// CaptureCell returns the content and style of a single cell.
func (s *Backend) CaptureCell(x, y int) (rune, backend.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, _, style, _ := s.screen.GetContent(x, y)
	return m, tcell.ConvertTcellStyle(style)
}

// FindText returns the column and row of the first occurrence of text,
// or -1, -1.
func (s *Backend) FindText(text string) (x, y int) {
	for row, line := range strings.Split(s.Capture(), "\n") {
		if idx := strings.Index(line, text); idx >= 0 {
			return len([]rune(line[:idx])), row
		}
	}
	return -1, -1
}

// ContainsText reports whether text appears anywhere on screen.
func (s *Backend) ContainsText(text string) bool {
	x, _ := s.FindText(text)
	return x >= 0
}

var _ backend.Backend = (*Backend)(nil)
