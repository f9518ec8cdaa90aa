package backend

import "fmt"

// Color represents a terminal color.
// Values 0-255 are palette colors, values with the RGB flag are true colors.
type Color int32

const (
	ColorDefault Color = -1
	ColorBlack   Color = 0
	ColorRed     Color = 1
	ColorGreen   Color = 2
	ColorYellow  Color = 3
	ColorBlue    Color = 4
	ColorMagenta Color = 5
	ColorCyan    Color = 6
	ColorWhite   Color = 7
)

const rgbFlag = 0x01000000

// ColorRGB creates a true color from RGB components.
func ColorRGB(r, g, b uint8) Color {
	return Color(int32(r)<<16 | int32(g)<<8 | int32(b) | rgbFlag)
}

// Palette returns the 256-color palette entry n.
func Palette(n uint8) Color {
	return Color(n)
}

// IsRGB reports whether c is a true color.
func (c Color) IsRGB() bool {
	return c != ColorDefault && c&rgbFlag != 0
}

// RGB returns the components of a true color, or zeros for palette colors.
func (c Color) RGB() (r, g, b uint8) {
	if !c.IsRGB() {
		return 0, 0, 0
	}
	return uint8((c >> 16) & 0xFF), uint8((c >> 8) & 0xFF), uint8(c & 0xFF)
}

// AttrMask represents text attributes.
type AttrMask uint32

const (
	AttrBold AttrMask = 1 << iota
	AttrBlink
	AttrReverse
	AttrUnderline
	AttrDim
	AttrItalic
)

// Style is a foreground, background and attribute triple.
// The zero value is not the terminal default; use DefaultStyle.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs AttrMask
}

// DefaultStyle returns the terminal's default colors with no attributes.
func DefaultStyle() Style {
	return Style{Fg: ColorDefault, Bg: ColorDefault}
}

// Foreground returns s with the foreground color replaced.
func (s Style) Foreground(c Color) Style {
	s.Fg = c
	return s
}

// Background returns s with the background color replaced.
func (s Style) Background(c Color) Style {
	s.Bg = c
	return s
}

// With returns s with the given attributes added.
func (s Style) With(attrs AttrMask) Style {
	s.Attrs |= attrs
	return s
}

// Without returns s with the given attributes cleared.
func (s Style) Without(attrs AttrMask) Style {
	s.Attrs &^= attrs
	return s
}

// Has reports whether every attribute in attrs is set.
func (s Style) Has(attrs AttrMask) bool {
	return s.Attrs&attrs == attrs
}

// String formats c as "default", a palette index, or "#rrggbb".
func (c Color) String() string {
	switch {
	case c == ColorDefault:
		return "default"
	case c.IsRGB():
		r, g, b := c.RGB()
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	default:
		return fmt.Sprintf("color%d", int32(c))
	}
}
