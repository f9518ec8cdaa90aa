package runtime

import "github.com/odvcencio/cursing/pkg/ui/terminal"

// FocusController owns the single focus pointer of a Context. At most one
// widget is focused; it must be attached, visible (or a reachable header),
// focus-capable and enabled.
type FocusController struct {
	ctx     *Context
	focused Widget
	stack   []Widget
}

func newFocusController(ctx *Context) *FocusController {
	return &FocusController{ctx: ctx}
}

// Focused returns the focused widget, or nil.
func (f *FocusController) Focused() Widget {
	return f.focused
}

// CanFocus reports whether w may hold focus.
func (f *FocusController) CanFocus(w Widget) bool {
	if w == nil {
		return false
	}
	n := w.Base()
	if n.ctx != f.ctx || n.destroyed || !n.focusable || n.disabled {
		return false
	}
	return reachable(n)
}

// reachable: visible, or a hidden header whose parent is visible.
func reachable(n *Node) bool {
	if n.Visible() {
		return true
	}
	if !n.header || n.parent == nil {
		return false
	}
	return n.parent.Base().Visible()
}

// Focus moves focus to w, calling LoseFocus on the previous holder and
// GainFocus on w. A nil w clears focus. Returns false when w cannot hold
// focus; the current focus is then unchanged.
func (f *FocusController) Focus(w Widget) bool {
	if w == nil {
		f.Clear()
		return true
	}
	if !f.CanFocus(w) {
		return false
	}
	if f.focused != nil && f.focused.Base() == w.Base() {
		return true
	}

	if old := f.focused; old != nil {
		f.focused = nil
		old.LoseFocus()
		old.Base().MarkDirty()
	}
	f.focused = w
	w.GainFocus()
	activateTree(w)
	w.Base().MarkDirty()
	return true
}

// Clear removes focus from the focused widget.
func (f *FocusController) Clear() {
	old := f.focused
	if old == nil {
		return
	}
	f.focused = nil
	old.LoseFocus()
	old.Base().MarkDirty()
}

// Push focuses w and remembers the current holder so Escape can restore it.
func (f *FocusController) Push(w Widget) bool {
	prev := f.focused
	if prev != nil && prev.Base() == w.Base() {
		return true
	}
	if !f.Focus(w) {
		return false
	}
	if prev != nil {
		f.stack = append(f.stack, prev)
	}
	return true
}

// Depth returns the size of the previous-focus stack.
func (f *FocusController) Depth() int {
	return len(f.stack)
}

// Escape restores the most recent focusable entry of the previous-focus
// stack. With an empty stack focus bubbles to the nearest focus-scope
// ancestor of the focused widget. Returns whether focus moved.
func (f *FocusController) Escape() bool {
	for len(f.stack) > 0 {
		prev := f.stack[len(f.stack)-1]
		f.stack = f.stack[:len(f.stack)-1]
		if f.Focus(prev) {
			return true
		}
	}
	if f.focused == nil {
		return false
	}
	for p := f.focused.Base().parent; p != nil; p = p.Base().parent {
		if p.Base().scope && f.Focus(p) {
			return true
		}
	}
	return false
}

// Lookup focuses the widget whose trigger matches key. The search starts
// in the subtree closest to the current focus and widens one ancestor at a
// time, so nearby widgets win over distant ones with the same key. Like
// Next and Prev it discards the previous-focus stack.
func (f *FocusController) Lookup(key terminal.KeyEvent) bool {
	w := f.find(key)
	if w == nil {
		return false
	}
	return f.jump(w)
}

// jump focuses w with a fresh previous-focus stack. The stack is reset
// before focusing so pushes made by w's GainFocus survive.
func (f *FocusController) jump(w Widget) bool {
	stack := f.stack
	f.stack = nil
	if !f.Focus(w) {
		f.stack = stack
		return false
	}
	return true
}

// find returns the widget Lookup would focus.
func (f *FocusController) find(key terminal.KeyEvent) Widget {
	root := f.ctx.root
	if root == nil {
		return nil
	}
	if f.focused == nil {
		return f.search(root, key, nil)
	}

	var searched Widget
	for scope := f.focused; scope != nil; scope = scope.Base().parent {
		if w := f.search(scope, key, searched); w != nil {
			return w
		}
		searched = scope
	}
	return nil
}

// search walks w's subtree in pre-order, skipping the already searched
// subtree skip.
func (f *FocusController) search(w Widget, key terminal.KeyEvent, skip Widget) Widget {
	if skip != nil && w.Base() == skip.Base() {
		return nil
	}
	n := w.Base()
	if n.destroyed {
		return nil
	}
	if k, ok := n.Trigger(); ok && k.Matches(key) && f.CanFocus(w) {
		return w
	}
	if !n.Visible() {
		return nil
	}
	for _, child := range n.children {
		if found := f.search(child, key, skip); found != nil {
			return found
		}
	}
	return nil
}

// Order returns the traversal order: a pre-order walk of the tree listing
// every widget that can hold focus and is a tab stop. Hidden headers are
// listed but their subtrees are not.
func (f *FocusController) Order() []Widget {
	var out []Widget
	var walk func(w Widget)
	walk = func(w Widget) {
		n := w.Base()
		if n.destroyed {
			return
		}
		if n.tabStop && f.CanFocus(w) {
			out = append(out, w)
		}
		if !n.Visible() {
			return
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	if f.ctx.root != nil {
		walk(f.ctx.root)
	}
	return out
}

// Next moves focus to the following widget in traversal order, wrapping at
// the end. With nothing focused the first widget is chosen.
func (f *FocusController) Next() bool {
	return f.step(1)
}

// Prev moves focus to the preceding widget in traversal order, wrapping at
// the start.
func (f *FocusController) Prev() bool {
	return f.step(-1)
}

func (f *FocusController) step(dir int) bool {
	order := f.Order()
	if len(order) == 0 {
		return false
	}

	cur := -1
	if f.focused != nil {
		for i, w := range order {
			if w.Base() == f.focused.Base() {
				cur = i
				break
			}
		}
	}

	var next int
	switch {
	case cur < 0 && dir > 0:
		next = 0
	case cur < 0:
		next = len(order) - 1
	default:
		next = (cur + dir + len(order)) % len(order)
	}
	return f.jump(order[next])
}

// forget drops w from the focus pointer and the stack, used on destroy.
func (f *FocusController) forget(w Widget) {
	n := w.Base()
	kept := f.stack[:0]
	for _, s := range f.stack {
		if s.Base() != n {
			kept = append(kept, s)
		}
	}
	f.stack = kept
	if f.focused != nil && f.focused.Base() == n {
		f.focused = nil
		w.LoseFocus()
	}
}
