package backend

import "testing"

func TestColorRGB(t *testing.T) {
	c := ColorRGB(0x12, 0x34, 0x56)
	if !c.IsRGB() {
		t.Fatal("expected true color")
	}
	r, g, b := c.RGB()
	if r != 0x12 || g != 0x34 || b != 0x56 {
		t.Errorf("RGB() = %x %x %x", r, g, b)
	}
	if ColorRed.IsRGB() || ColorDefault.IsRGB() {
		t.Error("palette colors are not RGB")
	}
}

func TestColorString(t *testing.T) {
	tests := map[Color]string{
		ColorDefault:          "default",
		ColorCyan:             "color6",
		Palette(208):          "color208",
		ColorRGB(255, 136, 0): "#ff8800",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int32(c), got, want)
		}
	}
}

func TestStyleAttributes(t *testing.T) {
	s := DefaultStyle().Foreground(ColorCyan).With(AttrBold | AttrUnderline)
	if !s.Has(AttrBold) || !s.Has(AttrUnderline) {
		t.Fatalf("attributes not set: %b", s.Attrs)
	}
	s = s.Without(AttrBold)
	if s.Has(AttrBold) {
		t.Error("bold should be cleared")
	}
	if s.Fg != ColorCyan || s.Bg != ColorDefault {
		t.Errorf("colors changed: %+v", s)
	}
}

type recorder struct {
	cells map[[2]int]rune
}

func (r *recorder) Size() (int, int) { return 10, 5 }
func (r *recorder) SetContent(x, y int, mainc rune, _ []rune, _ Style) {
	r.cells[[2]int{x, y}] = mainc
}

func TestClip(t *testing.T) {
	rec := &recorder{cells: map[[2]int]rune{}}
	clip := NewClip(rec, 2, 1, 3, 2)

	clip.SetContent(2, 1, 'a', nil, DefaultStyle())
	clip.SetContent(4, 2, 'b', nil, DefaultStyle())
	clip.SetContent(5, 1, 'x', nil, DefaultStyle())
	clip.SetContent(2, 3, 'y', nil, DefaultStyle())

	if len(rec.cells) != 2 {
		t.Fatalf("expected 2 cells written, got %v", rec.cells)
	}
	if rec.cells[[2]int{2, 1}] != 'a' || rec.cells[[2]int{4, 2}] != 'b' {
		t.Errorf("unexpected cells %v", rec.cells)
	}
	if w, h := clip.Size(); w != 10 || h != 5 {
		t.Errorf("Size() = %d,%d", w, h)
	}
}
