// Package theme maps style keys to terminal styles for each widget state.
package theme

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/odvcencio/cursing/pkg/ui/backend"
)

var (
	// ErrUnknownStyle is returned when a theme file names an unknown style key.
	ErrUnknownStyle = errors.New("unknown style key")

	// ErrUnknownState is returned when a theme file names an unknown state.
	ErrUnknownState = errors.New("unknown widget state")

	// ErrBadColor is returned for colors that cannot be parsed.
	ErrBadColor = errors.New("invalid color")
)

// State selects which style set a widget draws with.
type State int

const (
	StateDefault State = iota
	StateFocused
	StateDisabled
)

var stateNames = [...]string{"default", "focused", "disabled"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// ParseState converts a state name to a State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, name)
}

// Style keys understood by the built-in widgets.
const (
	Text      = "text"
	Border    = "border"
	Cursor    = "cursor"
	Error     = "error"
	Fill      = "fill"
	Highlight = "highlight"
	Inactive  = "inactive"
	Label     = "label"
	Selection = "selection"
	Status    = "status"
	Success   = "success"
	Title     = "title"
)

// Keys returns every known style key in sorted order.
func Keys() []string {
	keys := []string{Text, Border, Cursor, Error, Fill, Highlight, Inactive, Label, Selection, Status, Success, Title}
	sort.Strings(keys)
	return keys
}

func knownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Theme holds one style set per widget state.
type Theme struct {
	sets [3]map[string]backend.Style
}

// New returns a theme with empty style sets.
func New() *Theme {
	t := &Theme{}
	for i := range t.sets {
		t.sets[i] = make(map[string]backend.Style)
	}
	return t
}

// Set assigns the style for key in state.
func (t *Theme) Set(state State, key string, style backend.Style) {
	if state < 0 || int(state) >= len(t.sets) {
		return
	}
	t.sets[state][key] = style
}

// Style resolves key for state. Missing entries fall back to the default
// set, then to the "text" style, then to the terminal default.
func (t *Theme) Style(state State, key string) backend.Style {
	if t == nil {
		return backend.DefaultStyle()
	}
	if state >= 0 && int(state) < len(t.sets) {
		if s, ok := t.sets[state][key]; ok {
			return s
		}
	}
	if s, ok := t.sets[StateDefault][key]; ok {
		return s
	}
	if key != Text {
		return t.Style(state, Text)
	}
	return backend.DefaultStyle()
}

// Clone returns an independent copy of t.
func (t *Theme) Clone() *Theme {
	out := New()
	for i, set := range t.sets {
		for k, v := range set {
			out.sets[i][k] = v
		}
	}
	return out
}

// Palette of the default theme.
var (
	Dark   = rgb(0.15, 0.15, 0.15)
	Medium = rgb(0.4, 0.4, 0.4)
	Light  = rgb(0.7, 0.7, 0.7)
	Red    = rgb(1.0, 0.15, 0.15)
	Rust   = rgb(1.0, 0.25, 0.0)
	Amber  = rgb(1.0, 0.6, 0.25)
	Yellow = rgb(1.0, 1.0, 0.4)
	Cyan   = rgb(0.25, 1.0, 0.5)
	Blue   = rgb(0.4, 0.6, 1.0)
	Violet = rgb(0.67, 0.33, 1.0)
)

func rgb(r, g, b float64) backend.Color {
	return fromColorful(colorful.Color{R: r, G: g, B: b})
}

func fromColorful(c colorful.Color) backend.Color {
	r, g, b := c.Clamped().RGB255()
	return backend.ColorRGB(r, g, b)
}

func pair(fg, bg backend.Color, attrs ...backend.AttrMask) backend.Style {
	s := backend.DefaultStyle().Foreground(fg).Background(bg)
	for _, a := range attrs {
		s = s.With(a)
	}
	return s
}

// Default returns the built-in dark theme.
func Default() *Theme {
	t := New()

	for key, s := range map[string]backend.Style{
		Border:    pair(Light, Dark),
		Cursor:    pair(Dark, Dark),
		Error:     pair(Red, Dark),
		Fill:      pair(Dark, Dark),
		Highlight: pair(Light, Dark),
		Inactive:  pair(Light, Dark),
		Label:     pair(Light, Dark),
		Selection: pair(Light, Dark),
		Status:    pair(Yellow, Dark),
		Success:   pair(Blue, Dark),
		Text:      pair(Light, Dark),
		Title:     pair(Blue, Dark),
	} {
		t.Set(StateDefault, key, s)
	}

	for key, s := range map[string]backend.Style{
		Border:    pair(Cyan, Dark),
		Cursor:    pair(Cyan, Dark, backend.AttrReverse),
		Error:     pair(Red, Dark),
		Fill:      pair(Dark, Dark),
		Highlight: pair(Cyan, Dark, backend.AttrBold, backend.AttrReverse),
		Inactive:  pair(Light, Dark),
		Label:     pair(Cyan, Dark),
		Selection: pair(Cyan, Dark, backend.AttrBold),
		Status:    pair(Amber, Dark),
		Success:   pair(Blue, Dark),
		Text:      pair(Cyan, Dark),
		Title:     pair(Blue, Dark),
	} {
		t.Set(StateFocused, key, s)
	}

	for _, key := range Keys() {
		fg := Medium
		if key == Cursor || key == Fill {
			fg = Dark
		}
		t.Set(StateDisabled, key, pair(fg, Dark))
	}

	return t
}

var namedColors = map[string]backend.Color{
	"default": backend.ColorDefault,
	"black":   backend.ColorBlack,
	"red":     backend.ColorRed,
	"green":   backend.ColorGreen,
	"yellow":  backend.ColorYellow,
	"blue":    backend.ColorBlue,
	"magenta": backend.ColorMagenta,
	"cyan":    backend.ColorCyan,
	"white":   backend.ColorWhite,
}

// ParseColor accepts "#rrggbb", a palette index ("0"-"255" or "color0"-
// "color255"), "default" or a basic color name.
func ParseColor(s string) (backend.Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return backend.ColorDefault, nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		return fromColorful(c), nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "color"))
	if err != nil || n < 0 || n > 255 {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return backend.Palette(uint8(n)), nil
}

var attrNames = map[string]backend.AttrMask{
	"bold":      backend.AttrBold,
	"blink":     backend.AttrBlink,
	"reverse":   backend.AttrReverse,
	"underline": backend.AttrUnderline,
	"dim":       backend.AttrDim,
	"italic":    backend.AttrItalic,
}

// ParseAttr converts an attribute name such as "bold" to its mask.
func ParseAttr(name string) (backend.AttrMask, error) {
	a, ok := attrNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown attribute %q", name)
	}
	return a, nil
}
