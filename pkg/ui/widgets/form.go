package widgets

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
)

// Form collects the fields its children compose and emits them together
// on submit. Child translators send form.field and form.submit events to
// the form instead of the bus:
//
//	translate.New(host).MapOutput(signal.FormField, translate.Rename{"text": "hostname"}, signal.Fields{}).To(form)
//	translate.New(connect).MapOutput(signal.FormSubmit, nil, signal.Fields{}).To(form)
//	translate.New(form).MapOutput(signal.DBConnect, nil, signal.Fields{})
type Form struct {
	runtime.Node
	initial signal.Fields
	values  signal.Fields
}

// NewForm creates a form whose payload starts as fields. Fields never set
// by a child are sent with their initial value.
func NewForm(label string, fields signal.Fields) *Form {
	f := &Form{initial: fields.Clone(), values: fields.Clone()}
	f.Init(f, label)
	f.SetGeometry(runtime.Fill())
	return f
}

// Values returns the collected payload.
func (f *Form) Values() signal.Fields {
	return f.values.Clone()
}

// Reset restores the initial payload.
func (f *Form) Reset() {
	f.values = f.initial.Clone()
}

// Dispatch implements signal.Sink. form.field merges into the payload and
// form.submit flushes the form's own translator. Other events are not
// handled.
func (f *Form) Dispatch(ev *signal.Event) bool {
	if ev == nil || !ev.Alive() || !f.Alive() {
		return false
	}
	switch ev.Name() {
	case signal.FormField:
		f.values.Merge(ev.Fields())
		return true
	case signal.FormSubmit:
		if a := f.Adapter(); a != nil {
			a.Flush()
		}
		return true
	}
	return false
}

func (f *Form) Compose() (bool, signal.Fields) {
	return true, f.values.Clone()
}

func (f *Form) Draw(*runtime.Canvas) {}

func (f *Form) HandleInput(terminal.KeyEvent) runtime.Status {
	return runtime.Continue
}

func (f *Form) GainFocus() {}
func (f *Form) LoseFocus() {}
