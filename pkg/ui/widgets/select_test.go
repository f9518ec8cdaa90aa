package widgets

import (
	"slices"
	"strings"
	"testing"

	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/terminal"
	"github.com/odvcencio/cursing/pkg/ui/translate"
)

func TestSelectFieldWraps(t *testing.T) {
	f := NewSelectField("Tables", 't')
	f.RequireSelection()
	f.LoadOptions([]string{"A", "B", "C"})

	for i, want := range []int{1, 2, 0} {
		f.HandleInput(terminal.Press(terminal.KeyDown))
		if f.Highlight() != want {
			t.Fatalf("after %d Down highlight = %d, want %d", i+1, f.Highlight(), want)
		}
	}

	f.HandleInput(terminal.Press(terminal.KeyUp))
	if f.Highlight() != 2 {
		t.Fatalf("after Up highlight = %d, want 2", f.Highlight())
	}
	f.HandleInput(terminal.Press(terminal.KeyDown))
	if f.Highlight() != 0 {
		t.Fatalf("after Down highlight = %d, want 0", f.Highlight())
	}
	if opt, ok := f.Selected(); !ok || opt != "A" {
		t.Fatalf("selected = %q, %v", opt, ok)
	}
}

func TestSelectFieldSentinel(t *testing.T) {
	f := NewSelectField("Databases", 's')
	f.LoadOptions([]string{"books", "cars"})

	if got := f.Options(); !slices.Equal(got, []string{NoSelection, "books", "cars"}) {
		t.Fatalf("options = %v", got)
	}
	if _, ok := f.Selected(); ok {
		t.Fatal("sentinel reported as a selection")
	}

	f.HandleInput(terminal.Press(terminal.KeyDown))
	f.GainFocus()
	if ok, _ := f.Compose(); ok {
		t.Fatal("composed without a change since focus")
	}

	f.HandleInput(terminal.Press(terminal.KeyUp))
	ok, fields := f.Compose()
	if !ok {
		t.Fatal("change not composed")
	}
	v, has := fields.Get("option")
	if !has || v != nil {
		t.Fatalf("option = %v, %v; want nil", v, has)
	}
}

func TestSelectFieldAutoExpand(t *testing.T) {
	app, root := newApp()
	f := runtime.Attach(root, NewSelectField("Tables", 't'))
	f.SetWidth(30)
	f.Move(0, 3)
	f.AutoExpand()
	f.LimitOptions(5)
	f.LoadOptions([]string{"A", "B", "C", "D", "E", "F", "G", "H"})
	app.Start()

	if !f.Expanded() || !f.Floating() {
		t.Fatal("focus did not expand the field")
	}
	if got := f.Box().Height; got != 7 {
		t.Fatalf("expanded height = %d, want 7", got)
	}
	assertLineContains(t, app, 4, NoSelection)
	assertLineContains(t, app, 5, " A ")
	assertLineContains(t, app, 8, " D ")

	for range 6 {
		press(app, terminal.Press(terminal.KeyDown))
	}
	assertLineContains(t, app, 8, " F ")
	if line := screen(app).Line(4); strings.Contains(line, NoSelection) {
		t.Fatalf("line 4 = %q, want the list scrolled", line)
	}

	f.Base().Context().Focus().Clear()
	if f.Expanded() || f.Box().Height != 3 {
		t.Fatal("blur did not collapse the field")
	}
}

func TestSelectFieldRoomLimitsRows(t *testing.T) {
	_, root := newApp()
	f := runtime.Attach(root, NewSelectField("Tables", 't'))
	f.Move(0, 18)
	f.LoadOptions([]string{"A", "B", "C", "D", "E"})

	f.Expand()
	if got := f.Box().Height; got != 5 {
		t.Fatalf("height = %d, want 5", got)
	}
	f.Collapse()
	if got := f.Box().Height; got != 3 {
		t.Fatalf("collapsed height = %d, want 3", got)
	}
}

func TestSelectFieldTranslation(t *testing.T) {
	app, root := newApp()
	bus := app.Context().Bus()
	requests := &recorder{}
	requests.on(bus, signal.DBListTables, signal.DBSetTable)

	f := runtime.Attach(root, NewSelectField("Tables", 't'))
	f.SetWidth(30)
	translate.New(f).
		MapInput(signal.UITableList, translate.Rename{"tables": "options"}).
		MapOutput(signal.DBSetTable, translate.Rename{"option": "table"}, signal.Fields{}).
		MapRequest(signal.DBListTables)
	app.Start()

	if len(requests.events) != 1 || requests.events[0].Name() != signal.DBListTables {
		t.Fatalf("requests = %v", requests.events)
	}

	app.Update(runtime.SignalMsg{Event: signal.New(signal.UITableList, signal.F("tables", []string{"books", "authors"}))})
	if got := f.Options(); !slices.Equal(got, []string{NoSelection, "books", "authors"}) {
		t.Fatalf("options = %v", got)
	}

	press(app, terminal.Press(terminal.KeyDown), terminal.Press(terminal.KeyDown))
	enter(app)

	ev := requests.last(t)
	if ev.Name() != signal.DBSetTable || ev.Fields().Str("table") != "authors" {
		t.Fatalf("event = %s", ev)
	}
}
