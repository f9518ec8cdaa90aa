// Package terminal provides the abstract input events read from a
// character-grid backend.
package terminal

import "unicode"

// Event represents a terminal input event.
type Event interface {
	eventMarker()
}

// KeyEvent represents a key press.
type KeyEvent struct {
	Key   Key
	Rune  rune
	Alt   bool
	Ctrl  bool
	Shift bool
}

func (KeyEvent) eventMarker() {}

// Rune builds the key event for a printable character.
func Rune(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

// Press builds the key event for a special key.
func Press(k Key) KeyEvent {
	return KeyEvent{Key: k}
}

// Printable reports whether the event carries a printable character typed
// without Ctrl or Alt.
func (e KeyEvent) Printable() bool {
	return e.Key == KeyRune && !e.Ctrl && !e.Alt && unicode.IsPrint(e.Rune)
}

// Matches reports whether e is the trigger key described by k. Runes match
// case-insensitively so that "c" also triggers on Shift+C.
func (e KeyEvent) Matches(k KeyEvent) bool {
	if e.Key != k.Key {
		return false
	}
	if e.Key != KeyRune {
		return true
	}
	return unicode.ToLower(e.Rune) == unicode.ToLower(k.Rune)
}

// String names the key for status lines and logs.
func (e KeyEvent) String() string {
	s := e.Key.String()
	if e.Key == KeyRune {
		s = string(e.Rune)
	}
	if e.Ctrl && e.Key == KeyRune {
		s = "Ctrl+" + s
	}
	if e.Alt {
		s = "Alt+" + s
	}
	return s
}

// ResizeEvent indicates terminal size changed.
type ResizeEvent struct {
	Width  int
	Height int
}

func (ResizeEvent) eventMarker() {}

// PasteEvent represents bracketed paste content.
type PasteEvent struct {
	Text string
}

func (PasteEvent) eventMarker() {}

// Key represents special keys.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // Regular character
	KeyEnter
	KeyBackspace
	KeyTab
	KeyBackTab
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyCtrlC
)

var keyNames = map[Key]string{
	KeyNone:      "None",
	KeyRune:      "Rune",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
	KeyBackTab:   "Shift+Tab",
	KeyEscape:    "Esc",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PgUp",
	KeyPageDown:  "PgDn",
	KeyDelete:    "Del",
	KeyF1:        "F1",
	KeyF2:        "F2",
	KeyF3:        "F3",
	KeyF4:        "F4",
	KeyF5:        "F5",
	KeyF6:        "F6",
	KeyF7:        "F7",
	KeyF8:        "F8",
	KeyF9:        "F9",
	KeyF10:       "F10",
	KeyF11:       "F11",
	KeyF12:       "F12",
	KeyCtrlC:     "Ctrl+C",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}
