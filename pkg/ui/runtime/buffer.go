package runtime

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/cursing/pkg/ui/backend"
)

// Cell is one character cell. A zero Rune marks the trailing half of a
// double-width character.
type Cell struct {
	Rune  rune
	Style backend.Style
}

// Buffer is the off-screen grid widgets draw into. Only cells that changed
// since the last flush are written to the backend.
type Buffer struct {
	cells  []Cell
	dirty  []bool
	width  int
	height int

	dirtyCount int
}

// NewBuffer creates a buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	w, h = max(0, w), max(0, h)
	b := &Buffer{
		cells:  make([]Cell, w*h),
		dirty:  make([]bool, w*h),
		width:  w,
		height: h,
	}
	blank := Cell{Rune: ' ', Style: backend.DefaultStyle()}
	for i := range b.cells {
		b.cells[i] = blank
	}
	b.MarkAllDirty()
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Resize changes the dimensions, keeping the overlapping content.
func (b *Buffer) Resize(w, h int) {
	if w == b.width && h == b.height {
		return
	}
	next := NewBuffer(w, h)
	for y := 0; y < min(h, b.height); y++ {
		copy(next.cells[y*next.width:y*next.width+min(w, b.width)], b.cells[y*b.width:])
	}
	*b = *next
}

// Get returns the cell at (x, y), or a blank cell out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' ', Style: backend.DefaultStyle()}
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune at (x, y). Out of bounds writes are dropped.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	idx := y*b.width + x
	cell := Cell{Rune: r, Style: s}
	if b.cells[idx] != cell {
		b.cells[idx] = cell
		b.markDirty(idx)
	}
}

// SetString writes s starting at (x, y) and returns the number of columns
// it occupies. Double-width runes take two cells.
func (b *Buffer) SetString(x, y int, s string, style backend.Style) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.Set(col, y, r, style)
		if w == 2 {
			b.Set(col+1, y, 0, style)
		}
		col += w
	}
	return col - x
}

// Fill sets every cell of box to ch.
func (b *Buffer) Fill(box Box, ch rune, s backend.Style) {
	clipped := box.Intersect(Box{Width: b.width, Height: b.height})
	for y := clipped.Y; y < clipped.Y+clipped.Height; y++ {
		for x := clipped.X; x < clipped.X+clipped.Width; x++ {
			b.Set(x, y, ch, s)
		}
	}
}

func (b *Buffer) markDirty(idx int) {
	if !b.dirty[idx] {
		b.dirty[idx] = true
		b.dirtyCount++
	}
}

// MarkAllDirty forces every cell to be flushed.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.dirtyCount = len(b.dirty)
}

// DirtyCount returns the number of cells awaiting flush.
func (b *Buffer) DirtyCount() int {
	return b.dirtyCount
}

// Flush writes dirty cells to target and clears the dirty flags.
func (b *Buffer) Flush(target backend.RenderTarget) int {
	n := b.dirtyCount
	if n == 0 {
		return 0
	}
	for idx, d := range b.dirty {
		if !d {
			continue
		}
		cell := b.cells[idx]
		if cell.Rune != 0 {
			target.SetContent(idx%b.width, idx/b.width, cell.Rune, nil, cell.Style)
		}
	}
	clear(b.dirty)
	b.dirtyCount = 0
	return n
}

// Line returns row y as text with trailing blanks trimmed.
func (b *Buffer) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < b.width; x++ {
		if r := b.cells[y*b.width+x].Rune; r != 0 {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// String returns the whole buffer as text, one line per row.
func (b *Buffer) String() string {
	lines := make([]string, b.height)
	for y := range lines {
		lines[y] = b.Line(y)
	}
	return strings.Join(lines, "\n")
}
