package widgets

import (
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Container groups widgets. It draws nothing and never takes focus.
type Container struct {
	runtime.Node
}

// NewContainer creates a container covering its parent.
func NewContainer(label string) *Container {
	c := &Container{}
	c.Init(c, label)
	c.SetGeometry(runtime.Fill())
	return c
}

func (c *Container) Draw(*runtime.Canvas) {}

func (c *Container) HandleInput(terminal.KeyEvent) runtime.Status {
	return runtime.Continue
}

func (c *Container) GainFocus() {}
func (c *Container) LoseFocus() {}
