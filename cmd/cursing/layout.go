package main

import (
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/ui/runtime"
	"github.com/odvcencio/cursing/pkg/ui/theme"
	"github.com/odvcencio/cursing/pkg/ui/translate"
	"github.com/odvcencio/cursing/pkg/ui/widgets"
)

const (
	statusHeight = 3
	fieldWidth   = 30
	selectLimit  = 5

	exitPrompt = "Are you sure you want to exit? Long messages auto scroll like a news crawler."
)

// layout is the widget tree of the client. Trigger lookup prefers widgets
// near the focus, so field triggers stay clear of the tab triggers (h, s,
// d, t, q) to keep every tab one key away.
type layout struct {
	root   *widgets.Container
	tabs   *widgets.Container
	status *widgets.StatusLine

	home     *widgets.Tab
	server   *widgets.Tab
	database *widgets.Tab
	table    *widgets.Tab
	query    *widgets.Tab

	exit *widgets.Button

	serverForm *widgets.Form
	host       *widgets.TextField
	port       *widgets.NumericField
	user       *widgets.TextField
	password   *widgets.TextField
	connect    *widgets.Button
	disconnect *widgets.Button

	databases  *widgets.SelectField
	tableNames *widgets.SelectionList
	exportFile *widgets.TextField
	importFile *widgets.TextField

	tables    *widgets.SelectField
	content   *widgets.Button
	structure *widgets.Button
	rows      *widgets.Text

	raw    *widgets.TextField
	result *widgets.Text
}

func buildLayout(width, height int) *layout {
	l := &layout{}
	l.root = widgets.NewContainer("cursing")
	l.root.Resize(width, height)

	l.tabs = runtime.Attach(l.root, widgets.NewContainer("tabs"))
	l.tabs.Scale(0, -statusHeight)

	l.buildHome()
	l.buildServer()
	l.buildDatabase()
	l.buildTable()
	l.buildQuery()

	l.status = runtime.Attach(l.root, widgets.NewStatusLine("status"))
	l.status.Scale(0, 0)
	l.status.SetHeight(statusHeight)
	l.status.Align(runtime.AlignStart, runtime.AlignEnd)
	return l
}

func (l *layout) buildHome() {
	l.home = widgets.AddTab(l.tabs, widgets.NewTab("Home", 'h'))

	title := runtime.Attach(l.home, widgets.NewText("title", theme.Title))
	title.AddLine("cursing")
	title.Move(4, 4)

	help := runtime.Attach(l.home, widgets.NewText("help", theme.Text))
	help.AddRaw("Tab and Shift+Tab move between widgets.\n" +
		"Highlighted letters jump straight to a widget.\n" +
		"Enter opens a tab, Esc goes back.")
	help.Move(4, 6)

	l.exit = runtime.Attach(l.home, widgets.NewButton("Exit", 'x'))
	l.exit.Move(4, 10)
	translate.New(l.exit).MapOutput(signal.UIPromptConfirm, nil, signal.F(
		"prompt", exitPrompt,
		"confirm", signal.UIExit,
	))
}

func (l *layout) buildServer() {
	l.server = widgets.AddTab(l.tabs, widgets.NewTab("Server", 's'))

	l.serverForm = runtime.Attach(l.server, widgets.NewForm("connection", signal.F(
		"hostname", nil,
		"port", nil,
		"username", nil,
		"password", nil,
	)))
	translate.New(l.serverForm).MapOutput(signal.DBConnect, nil, signal.Fields{})

	l.host = runtime.Attach(l.serverForm, widgets.NewTextField("Host Name", 'o'))
	l.port = runtime.Attach(l.serverForm, widgets.NewNumericField("Port Number", 'n'))
	l.user = runtime.Attach(l.serverForm, widgets.NewTextField("User Name", 'u'))
	l.password = runtime.Attach(l.serverForm, widgets.NewTextField("Password", 'p'))
	l.password.Obscure()
	for i, f := range []runtime.Widget{l.host, l.port, l.user, l.password} {
		f.Base().SetWidth(fieldWidth)
		f.Base().Move(20, 4+i*3)
	}
	toForm := func(w runtime.Widget, from, to string) {
		translate.New(w).
			MapOutput(signal.FormField, translate.Rename{from: to}, signal.Fields{}).
			To(l.serverForm)
	}
	toForm(l.host, "text", "hostname")
	toForm(l.port, "number", "port")
	toForm(l.user, "text", "username")
	toForm(l.password, "text", "password")

	l.connect = runtime.Attach(l.serverForm, widgets.NewButton("Connect", 'c'))
	l.connect.Move(20, 16)
	translate.New(l.connect).MapOutput(signal.FormSubmit, nil, signal.Fields{}).To(l.serverForm)

	l.disconnect = runtime.Attach(l.server, widgets.NewButton("Disconnect", 'i'))
	l.disconnect.Move(34, 16)
	translate.New(l.disconnect).MapOutput(signal.DBDisconnect, nil, signal.Fields{})
}

func (l *layout) buildDatabase() {
	l.database = widgets.AddTab(l.tabs, widgets.NewTab("Database", 'd'))

	l.databases = runtime.Attach(l.database, widgets.NewSelectField("Databases", 'b'))
	l.databases.SetWidth(fieldWidth)
	l.databases.Move(16, 4)
	l.databases.AutoExpand()
	l.databases.LimitOptions(selectLimit)
	translate.New(l.databases).
		MapInput(signal.UIDatabaseList, translate.Rename{"databases": "options"}).
		MapOutput(signal.DBSetDatabase, translate.Rename{"option": "database"}, signal.Fields{}).
		MapRequest(signal.DBListDatabases)

	l.tableNames = runtime.Attach(l.database, widgets.NewSelectionList("Tables", 'l'))
	l.tableNames.Resize(24, 9)
	l.tableNames.Move(52, 3)
	translate.New(l.tableNames).MapInput(signal.UITableList, translate.Rename{"tables": "items"})

	l.exportFile = l.transferForm("export", "Export File", 'e', "Export", 'x', signal.DBExportDatabase, 12)
	l.importFile = l.transferForm("import", "Import File", 'i', "Import", 'm', signal.DBImportDatabase, 15)
}

// transferForm builds a file name field and a button that submit name
// with {filename} when pushed.
func (l *layout) transferForm(label, fieldLabel string, fieldKey rune, buttonLabel string, buttonKey rune, name string, y int) *widgets.TextField {
	form := runtime.Attach(l.database, widgets.NewForm(label, signal.F("filename", nil)))
	translate.New(form).MapOutput(name, nil, signal.Fields{})

	file := runtime.Attach(form, widgets.NewTextField(fieldLabel, fieldKey))
	file.SetWidth(fieldWidth - 6)
	file.Move(16, y)
	translate.New(file).
		MapOutput(signal.FormField, translate.Rename{"text": "filename"}, signal.Fields{}).
		To(form)

	button := runtime.Attach(form, widgets.NewButton(buttonLabel, buttonKey))
	button.Move(42, y)
	translate.New(button).MapOutput(signal.FormSubmit, nil, signal.Fields{}).To(form)
	return file
}

func (l *layout) buildTable() {
	l.table = widgets.AddTab(l.tabs, widgets.NewTab("Table", 't'))

	l.tables = runtime.Attach(l.table, widgets.NewSelectField("Tables", 'b'))
	l.tables.SetWidth(fieldWidth)
	l.tables.Move(16, 4)
	l.tables.AutoExpand()
	l.tables.LimitOptions(selectLimit)
	translate.New(l.tables).
		MapInput(signal.UITableList, translate.Rename{"tables": "options"}).
		MapOutput(signal.DBSetTable, translate.Rename{"option": "table"}, signal.Fields{}).
		MapRequest(signal.DBListTables)

	l.content = runtime.Attach(l.table, widgets.NewButton("Content", 'c'))
	l.content.Move(50, 4)
	translate.New(l.content).MapOutput(signal.DBTableContent, nil, signal.Fields{})

	l.structure = runtime.Attach(l.table, widgets.NewButton("Structure", 'r'))
	l.structure.Move(62, 4)
	translate.New(l.structure).MapOutput(signal.DBTableStructure, nil, signal.Fields{})

	l.rows = runtime.Attach(l.table, widgets.NewText("rows", theme.Text))
	l.rows.Move(3, 7)
	translate.New(l.rows).
		MapInput(signal.UITableContent, translate.Rename{"table_content": "rows"}).
		MapInput(signal.UITableStructure, translate.Rename{"table_structure": "rows"})
}

func (l *layout) buildQuery() {
	l.query = widgets.AddTab(l.tabs, widgets.NewTab("Query", 'q'))

	l.raw = runtime.Attach(l.query, widgets.NewTextField("Statement", 'm'))
	l.raw.SetWidth(60)
	l.raw.Move(12, 4)
	translate.New(l.raw).MapOutput(signal.DBRawQuery, translate.Rename{"text": "raw"}, signal.Fields{})

	l.result = runtime.Attach(l.query, widgets.NewText("result", theme.Text))
	l.result.Move(3, 7)
	translate.New(l.result).MapInput(signal.UIRawQueryResult, translate.Rename{"result": "text"})
}
