package runtime

import (
	"testing"

	"github.com/odvcencio/cursing/pkg/ui/backend"
)

type recordingTarget struct {
	w, h  int
	cells map[[2]int]rune
}

func newRecordingTarget(w, h int) *recordingTarget {
	return &recordingTarget{w: w, h: h, cells: make(map[[2]int]rune)}
}

func (r *recordingTarget) Size() (int, int) {
	return r.w, r.h
}

func (r *recordingTarget) SetContent(x, y int, mainc rune, _ []rune, _ backend.Style) {
	r.cells[[2]int{x, y}] = mainc
}

func TestBufferSetString(t *testing.T) {
	buf := NewBuffer(10, 2)
	n := buf.SetString(1, 0, "a日b", backend.DefaultStyle())
	if n != 4 {
		t.Fatalf("SetString width = %d, want 4", n)
	}
	if buf.Get(2, 0).Rune != '日' || buf.Get(3, 0).Rune != 0 {
		t.Fatal("double-width rune not stored as two cells")
	}
	if got := buf.Line(0); got != " a日b" {
		t.Fatalf("Line(0) = %q", got)
	}
	if buf.Line(5) != "" {
		t.Fatal("out of range line should be empty")
	}
}

func TestBufferOutOfBounds(t *testing.T) {
	buf := NewBuffer(2, 2)
	buf.Set(-1, 0, 'x', backend.DefaultStyle())
	buf.Set(2, 1, 'x', backend.DefaultStyle())
	if got := buf.String(); got != "\n" {
		t.Fatalf("String() = %q", got)
	}
	if buf.Get(5, 5).Rune != ' ' {
		t.Fatal("out of bounds Get should return a blank")
	}
}

func TestBufferFlushOnlyDirtyCells(t *testing.T) {
	buf := NewBuffer(3, 2)
	target := newRecordingTarget(3, 2)

	if n := buf.Flush(target); n != 6 {
		t.Fatalf("first Flush wrote %d cells, want 6", n)
	}

	buf.Set(0, 0, ' ', backend.DefaultStyle())
	if buf.DirtyCount() != 0 {
		t.Fatal("writing identical content marked the cell dirty")
	}

	buf.Set(1, 1, 'z', backend.DefaultStyle())
	target.cells = make(map[[2]int]rune)
	if n := buf.Flush(target); n != 1 {
		t.Fatalf("Flush wrote %d cells, want 1", n)
	}
	if target.cells[[2]int{1, 1}] != 'z' {
		t.Fatal("changed cell not flushed")
	}
	if n := buf.Flush(target); n != 0 {
		t.Fatalf("clean Flush wrote %d cells", n)
	}
}

func TestBufferResizeKeepsContent(t *testing.T) {
	buf := NewBuffer(4, 2)
	buf.SetString(0, 0, "abcd", backend.DefaultStyle())
	buf.SetString(0, 1, "efgh", backend.DefaultStyle())

	buf.Resize(2, 3)
	if w, h := buf.Size(); w != 2 || h != 3 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if got := buf.String(); got != "ab\nef\n" {
		t.Fatalf("String() = %q", got)
	}
	if buf.DirtyCount() != 6 {
		t.Fatalf("DirtyCount = %d after resize, want 6", buf.DirtyCount())
	}
}

func TestBufferFill(t *testing.T) {
	buf := NewBuffer(4, 3)
	buf.Fill(Box{X: 1, Y: 1, Width: 10, Height: 10}, '#', backend.DefaultStyle())
	if got := buf.String(); got != "\n ###\n ###" {
		t.Fatalf("String() = %q", got)
	}
}
