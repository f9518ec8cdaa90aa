package runtime

// Size is a pair of dimensions.
type Size struct {
	Width, Height int
}

// Box is a resolved, absolute rectangle on the screen.
type Box struct {
	X, Y, Width, Height int
}

// Contains reports whether the point lies inside the box.
func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Inset shrinks the box by m, never below zero size.
func (b Box) Inset(m Margin) Box {
	return Box{
		X:      b.X + m.Left,
		Y:      b.Y + m.Top,
		Width:  max(0, b.Width-m.Left-m.Right),
		Height: max(0, b.Height-m.Top-m.Bottom),
	}
}

// Intersect returns the overlap of two boxes.
func (b Box) Intersect(o Box) Box {
	x := max(b.X, o.X)
	y := max(b.Y, o.Y)
	x2 := min(b.X+b.Width, o.X+o.Width)
	y2 := min(b.Y+b.Height, o.Y+o.Height)
	if x2 <= x || y2 <= y {
		return Box{X: x, Y: y}
	}
	return Box{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Margin is spacing on each side of a box.
type Margin struct {
	Top, Right, Bottom, Left int
}

// Uniform returns a margin of n on every side.
func Uniform(n int) Margin {
	return Margin{Top: n, Right: n, Bottom: n, Left: n}
}

// Align positions a widget along one axis of its parent.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// SizeMode selects how one dimension is derived.
type SizeMode int

const (
	// SizeFixed uses the explicit value.
	SizeFixed SizeMode = iota
	// SizeFit uses the content size plus the explicit value as a delta.
	SizeFit
	// SizeScale uses the parent's inner size plus the explicit value as a delta.
	SizeScale
)

// Geometry describes where a widget sits relative to its parent. It is
// resolved on demand and never cached, so an ancestor resize is always
// reflected on the next draw.
type Geometry struct {
	// X and Y position the widget from its aligned base.
	X, Y int

	// OffsetX and OffsetY are added after positioning.
	OffsetX, OffsetY int

	Width, Height  int
	WidthMode      SizeMode
	HeightMode     SizeMode
	AlignX, AlignY Align

	// Margin is reserved inside the parent's box before alignment.
	Margin Margin
}

// Fill is the geometry of a widget that covers its parent.
func Fill() Geometry {
	return Geometry{WidthMode: SizeScale, HeightMode: SizeScale}
}

// Resolve computes the absolute box for g inside parent. content is the
// widget's natural size, used by SizeFit. Negative sizes clamp to zero.
func (g Geometry) Resolve(parent Box, content Size) Box {
	inner := parent.Inset(g.Margin)

	w := resolveDim(g.WidthMode, g.Width, content.Width, inner.Width)
	h := resolveDim(g.HeightMode, g.Height, content.Height, inner.Height)

	return Box{
		X:      alignStart(g.AlignX, inner.X, inner.Width, w) + g.X + g.OffsetX,
		Y:      alignStart(g.AlignY, inner.Y, inner.Height, h) + g.Y + g.OffsetY,
		Width:  w,
		Height: h,
	}
}

func resolveDim(mode SizeMode, value, content, parent int) int {
	var n int
	switch mode {
	case SizeFit:
		n = content + value
	case SizeScale:
		n = parent + value
	default:
		n = value
	}
	return max(0, n)
}

func alignStart(a Align, origin, avail, size int) int {
	switch a {
	case AlignCenter:
		return origin + (avail-size)/2
	case AlignEnd:
		return origin + avail - size
	default:
		return origin
	}
}
