// Package runtime is the widget engine: a tree of widgets with lazily
// resolved geometry, a single focus pointer, dirty tracking and the event
// loop that ties input, the signal bus and drawing together.
package runtime

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/theme"
)

// Status is returned by HandleInput.
type Status int

const (
	// Continue keeps input flowing to the widget.
	Continue Status = iota
	// End finishes the edit: the widget's adapter composes and focus
	// returns to the caller.
	End
)

func (s Status) String() string {
	if s == End {
		return "END"
	}
	return "CONTINUE"
}

// Widget is implemented by every node of the tree. Concrete widgets embed
// Node, which supplies Base.
type Widget interface {
	Base() *Node

	// Draw renders the widget. It must not change widget state.
	Draw(c *Canvas)

	// HandleInput applies one key to the widget's local state.
	HandleInput(ev terminal.KeyEvent) Status

	GainFocus()
	LoseFocus()
}

// Measurer reports a widget's natural size for SizeFit geometry.
type Measurer interface {
	ContentSize() Size
}

// Capturer lets the focused widget claim keys before the engine
// interprets them as navigation or trigger keys.
type Capturer interface {
	Captures(ev terminal.KeyEvent) bool
}

// FocusDelegate is implemented by containers that decide where focus goes
// after a descendant finishes with End. Returning nil keeps the default.
type FocusDelegate interface {
	NextFocus(from Widget) Widget
}

// Locator is implemented by widgets whose box is not derived from their
// geometry, such as a label placed beside the field it names.
type Locator interface {
	Locate() Box
}

// Floating widgets are drawn again after the rest of the tree so they can
// overlap later siblings.
type Floating interface {
	Floating() bool
}

// Adapter connects a widget to the signal bus. See package translate.
type Adapter interface {
	// Activate runs once, the first time the widget is shown or focused.
	Activate()
	// Flush composes the widget's state after End.
	Flush()
	// Release drops every bus registration of the adapter.
	Release()
}

type subscription struct {
	name   string
	target any
	fn     signal.HandlerFunc
}

// Node holds the state shared by every widget. The zero value is not
// usable; call Init from the widget's constructor.
type Node struct {
	self     Widget
	label    string
	parent   Widget
	children []Widget
	ctx      *Context

	geom     Geometry
	styleKey string
	trigger  terminal.KeyEvent
	hasKey   bool

	hidden    bool
	dirty     bool
	focusable bool
	tabStop   bool
	disabled  bool
	destroyed bool
	batch     bool
	scope     bool
	header    bool
	activated bool

	adapter Adapter
	regs    signal.Registrations
	pending []subscription
}

// Init binds the node to the widget embedding it.
func (n *Node) Init(self Widget, label string) {
	n.self = self
	n.label = label
	n.styleKey = theme.Text
	n.tabStop = true
	n.dirty = true
}

// Base returns n. It lets widgets that embed Node satisfy Widget.
func (n *Node) Base() *Node {
	return n
}

// Label returns the widget's label.
func (n *Node) Label() string {
	return n.label
}

// SetLabel replaces the label.
func (n *Node) SetLabel(label string) {
	n.label = label
	n.MarkDirty()
}

// Parent returns the parent widget, or nil for the root and detached nodes.
func (n *Node) Parent() Widget {
	return n.parent
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []Widget {
	return append([]Widget(nil), n.children...)
}

// Context returns the root context, or nil until the node is attached under
// a rooted tree.
func (n *Node) Context() *Context {
	return n.ctx
}

// Attach appends child to parent's children and returns child. A visible
// child attached under an activated parent is activated at once.
func Attach[W Widget](parent Widget, child W) W {
	cn := child.Base()
	if cn.destroyed || parent == nil {
		return child
	}
	if cn.parent != nil {
		cn.detach()
	}
	pn := parent.Base()
	cn.parent = parent
	pn.children = append(pn.children, child)
	if pn.ctx != nil {
		bindTree(child, pn.ctx)
		if pn.activated && cn.Visible() {
			activateTree(child)
		}
	}
	cn.MarkDirty()
	return child
}

func bindTree(w Widget, ctx *Context) {
	n := w.Base()
	n.ctx = ctx
	for _, sub := range n.pending {
		n.regs.Add(ctx.bus.Register(sub.name, sub.target, sub.fn))
	}
	n.pending = nil
	for _, child := range n.children {
		bindTree(child, ctx)
	}
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	pn := n.parent.Base()
	for i, c := range pn.children {
		if c.Base() == n {
			pn.children = append(pn.children[:i:i], pn.children[i+1:]...)
			break
		}
	}
	n.parent = nil
	pn.MarkDirty()
}

// Destroy releases the widget and its subtree. Bus registrations are
// released before anything else happens.
func Destroy(w Widget) {
	n := w.Base()
	if n.destroyed {
		return
	}
	n.regs.ReleaseAll()
	n.pending = nil
	if n.adapter != nil {
		n.adapter.Release()
	}

	for _, child := range n.Children() {
		Destroy(child)
	}

	n.destroyed = true
	if n.ctx != nil {
		n.ctx.focus.forget(w)
	}
	n.detach()
}

// Alive reports whether the node has not been destroyed. Bus entries owned
// by the node lapse once it is false.
func (n *Node) Alive() bool {
	return !n.destroyed
}

// Geometry returns the geometry descriptor.
func (n *Node) Geometry() Geometry {
	return n.geom
}

// SetGeometry replaces the geometry descriptor.
func (n *Node) SetGeometry(g Geometry) {
	n.geom = g
	n.MarkDirty()
}

// Move sets the position relative to the aligned base.
func (n *Node) Move(x, y int) {
	n.geom.X, n.geom.Y = x, y
	n.MarkDirty()
}

// Offset sets the offset applied after positioning.
func (n *Node) Offset(dx, dy int) {
	n.geom.OffsetX, n.geom.OffsetY = dx, dy
	n.MarkDirty()
}

// Resize sets explicit dimensions.
func (n *Node) Resize(width, height int) {
	n.geom.Width, n.geom.Height = width, height
	n.geom.WidthMode, n.geom.HeightMode = SizeFixed, SizeFixed
	n.MarkDirty()
}

// SetWidth sets an explicit width, leaving the height alone.
func (n *Node) SetWidth(width int) {
	n.geom.Width, n.geom.WidthMode = width, SizeFixed
	n.MarkDirty()
}

// SetHeight sets an explicit height, leaving the width alone.
func (n *Node) SetHeight(height int) {
	n.geom.Height, n.geom.HeightMode = height, SizeFixed
	n.MarkDirty()
}

// Fit sizes the widget from its content plus the given deltas.
func (n *Node) Fit(dw, dh int) {
	n.geom.Width, n.geom.Height = dw, dh
	n.geom.WidthMode, n.geom.HeightMode = SizeFit, SizeFit
	n.MarkDirty()
}

// Scale sizes the widget from its parent plus the given deltas.
func (n *Node) Scale(dw, dh int) {
	n.geom.Width, n.geom.Height = dw, dh
	n.geom.WidthMode, n.geom.HeightMode = SizeScale, SizeScale
	n.MarkDirty()
}

// Align sets the horizontal and vertical alignment.
func (n *Node) Align(x, y Align) {
	n.geom.AlignX, n.geom.AlignY = x, y
	n.MarkDirty()
}

// SetMargin sets the margin reserved inside the parent's box.
func (n *Node) SetMargin(m Margin) {
	n.geom.Margin = m
	n.MarkDirty()
}

// Box resolves the widget's absolute box from its geometry and its
// parent's box. The root resolves against the screen.
func (n *Node) Box() Box {
	if l, ok := n.self.(Locator); ok {
		return l.Locate()
	}
	var parent Box
	switch {
	case n.parent != nil:
		parent = n.parent.Base().Box()
	case n.ctx != nil:
		parent = n.ctx.Screen()
	}
	var content Size
	if m, ok := n.self.(Measurer); ok {
		content = m.ContentSize()
	}
	return n.geom.Resolve(parent, content)
}

// StyleKey returns the default style key used to draw the widget.
func (n *Node) StyleKey() string {
	return n.styleKey
}

// SetStyleKey changes the default style key.
func (n *Node) SetStyleKey(key string) {
	n.styleKey = key
	n.MarkDirty()
}

// State returns the theme state the widget currently draws with.
func (n *Node) State() theme.State {
	switch {
	case n.disabled:
		return theme.StateDisabled
	case n.Focused():
		return theme.StateFocused
	default:
		return theme.StateDefault
	}
}

// Trigger returns the key that jumps focus to this widget.
func (n *Node) Trigger() (terminal.KeyEvent, bool) {
	return n.trigger, n.hasKey
}

// SetTrigger assigns a focus trigger key and makes the widget focusable.
func (n *Node) SetTrigger(key terminal.KeyEvent) {
	n.trigger, n.hasKey = key, true
	n.focusable = true
}

// SetTriggerRune is SetTrigger for a printable key; 0 clears the trigger.
func (n *Node) SetTriggerRune(r rune) {
	if r == 0 {
		n.hasKey = false
		return
	}
	n.SetTrigger(terminal.Rune(r))
}

// Visible reports whether the widget and all of its ancestors are shown.
func (n *Node) Visible() bool {
	for w := n; w != nil; {
		if w.hidden {
			return false
		}
		if w.parent == nil {
			return true
		}
		w = w.parent.Base()
	}
	return true
}

// Shown reports the widget's own visibility flag.
func (n *Node) Shown() bool {
	return !n.hidden
}

// Show makes the widget visible. The first time a subtree becomes visible
// its adapters are activated.
func (n *Node) Show() {
	if !n.hidden {
		return
	}
	n.hidden = false
	n.MarkDirty()
	if n.ctx != nil && n.Visible() {
		activateTree(n.self)
	}
}

// Hide removes the widget from drawing. It stays in the tree. Focus held
// inside the subtree is cleared.
func (n *Node) Hide() {
	if n.hidden {
		return
	}
	n.hidden = true
	if n.ctx != nil {
		if f := n.ctx.focus.Focused(); f != nil && (f.Base() == n || isDescendant(f, n.self)) {
			n.ctx.focus.Clear()
		}
	}
	n.markParentDirty()
}

// Focusable reports the focus-capable flag.
func (n *Node) Focusable() bool {
	return n.focusable
}

// SetFocusable sets whether the widget may hold focus.
func (n *Node) SetFocusable(v bool) {
	n.focusable = v
}

// TabStop reports whether Tab traversal visits the widget.
func (n *Node) TabStop() bool {
	return n.tabStop
}

// SetTabStop controls whether Tab traversal visits the widget. Widgets that
// only take focus through Push clear it.
func (n *Node) SetTabStop(v bool) {
	n.tabStop = v
}

// Disabled reports whether the widget is disabled.
func (n *Node) Disabled() bool {
	return n.disabled
}

// SetDisabled toggles the disabled state. Disabled widgets cannot hold focus.
func (n *Node) SetDisabled(v bool) {
	n.disabled = v
	if v && n.Focused() {
		n.ctx.focus.Clear()
	}
	n.MarkDirty()
}

// Focused reports whether the widget holds focus.
func (n *Node) Focused() bool {
	if n.ctx == nil {
		return false
	}
	f := n.ctx.focus.Focused()
	return f != nil && f.Base() == n
}

// SetScope marks the widget as a focus scope: Escape with an empty focus
// stack returns focus to the nearest scope ancestor.
func (n *Node) SetScope(v bool) {
	n.scope = v
}

// SetHeader keeps the widget reachable by trigger key and traversal while
// it is hidden, as long as its parent is visible. Tabs use this.
func (n *Node) SetHeader(v bool) {
	n.header = v
}

// SetBatch makes the widget a redraw boundary: dirty descendants redraw
// only this subtree instead of the whole screen.
func (n *Node) SetBatch(v bool) {
	n.batch = v
}

// Dirty reports whether the widget needs drawing.
func (n *Node) Dirty() bool {
	return n.dirty
}

// MarkDirty flags the widget for redraw and propagates to the nearest
// batching ancestor, or to the root, which redraws the whole tree.
func (n *Node) MarkDirty() {
	n.dirty = true
	for w := n; ; {
		if w.batch {
			if w.ctx != nil {
				w.ctx.invalidate(w.self)
			}
			return
		}
		if w.parent == nil {
			if w.ctx != nil {
				w.ctx.invalidate(nil)
			}
			return
		}
		w = w.parent.Base()
		w.dirty = true
	}
}

func (n *Node) markParentDirty() {
	if n.parent != nil {
		n.parent.Base().MarkDirty()
	} else {
		n.MarkDirty()
	}
}

// Adapter returns the bus adapter, or nil.
func (n *Node) Adapter() Adapter {
	return n.adapter
}

// SetAdapter installs the bus adapter. A widget has at most one.
func (n *Node) SetAdapter(a Adapter) {
	if n.adapter != nil && n.adapter != a {
		n.adapter.Release()
	}
	n.adapter = a
	if n.ctx != nil && n.activated && a != nil {
		a.Activate()
	}
}

// On registers fn for events called name for the lifetime of the widget.
// Before the widget is attached to a rooted tree the registration is held
// and applied on attach.
func (n *Node) On(name string, fn signal.HandlerFunc) {
	n.Subscribe(name, n, fn)
}

// Subscribe is On with an explicit bus target, for helpers such as
// translators that register on the widget's behalf. The registration is
// still released when the widget is destroyed.
func (n *Node) Subscribe(name string, target any, fn signal.HandlerFunc) {
	if n.destroyed {
		return
	}
	if n.ctx == nil {
		n.pending = append(n.pending, subscription{name: name, target: target, fn: fn})
		return
	}
	n.regs.Add(n.ctx.bus.Register(name, target, fn))
}

// Emit dispatches an event on the context bus. It is a no-op for detached
// widgets.
func (n *Node) Emit(name string, fields signal.Fields) bool {
	if n.ctx == nil || n.destroyed {
		return false
	}
	return n.ctx.bus.Emit(name, fields)
}

func activateTree(w Widget) {
	n := w.Base()
	if n.hidden || n.destroyed {
		return
	}
	if !n.activated {
		n.activated = true
		if n.adapter != nil {
			n.adapter.Activate()
		}
	}
	for _, child := range n.children {
		activateTree(child)
	}
}

func isDescendant(w, ancestor Widget) bool {
	for p := w.Base().parent; p != nil; p = p.Base().parent {
		if p.Base() == ancestor.Base() {
			return true
		}
	}
	return false
}
