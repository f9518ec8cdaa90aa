// Package mockdb is an in-process database manager that answers the db.*
// events from fixtures. It stands in for a real server during demos and
// tests.
package mockdb

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/cursing/pkg/signal"
)

const tracerName = "github.com/odvcencio/cursing/pkg/mockdb"

// Manager answers db.* events on a bus with ui.* events.
type Manager struct {
	bus      *signal.Bus
	fixtures *Fixtures
	logger   *slog.Logger
	regs     signal.Registrations
	closed   bool
	span     trace.Span

	connected bool
	hostname  string
	port      int
	username  string
	database  string
	table     string
}

// New registers a manager on b. Nil fixtures select DefaultFixtures.
func New(b *signal.Bus, fixtures *Fixtures, logger *slog.Logger) *Manager {
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{bus: b, fixtures: fixtures, logger: logger}

	m.handle(signal.DBConnect, m.connect)
	m.handle(signal.DBDisconnect, m.disconnect)
	m.handle(signal.DBListDatabases, m.listDatabases)
	m.handle(signal.DBListTables, m.listTables)
	m.handle(signal.DBSetDatabase, m.setDatabase)
	m.handle(signal.DBSetTable, m.setTable)
	m.handle(signal.DBTableContent, m.tableContent)
	m.handle(signal.DBTableStructure, m.tableStructure)
	m.handle(signal.DBRawQuery, m.rawQuery)
	m.handle(signal.DBImportDatabase, m.importDatabase)
	m.handle(signal.DBExportDatabase, m.exportDatabase)
	return m
}

func (m *Manager) handle(name string, fn func(signal.Fields)) {
	m.regs.Add(m.bus.Register(name, m, func(ev *signal.Event) {
		_, span := otel.Tracer(tracerName).Start(ev.Context(), "mockdb."+name)
		defer span.End()
		prev := m.span
		m.span = span
		defer func() { m.span = prev }()

		m.logger.Debug("handle", slog.String("event", ev.String()))
		fn(ev.Fields())
	}))
}

// Alive reports whether the manager still serves events.
func (m *Manager) Alive() bool {
	return !m.closed
}

// Close releases every registration.
func (m *Manager) Close() {
	m.closed = true
	m.regs.ReleaseAll()
}

// Connected reports whether a connect succeeded and no disconnect followed.
func (m *Manager) Connected() bool {
	return m.connected
}

// Database returns the current database, or "".
func (m *Manager) Database() string {
	return m.database
}

// Table returns the current table, or "".
func (m *Manager) Table() string {
	return m.table
}

func (m *Manager) emit(name string, fields signal.Fields) {
	m.bus.Emit(name, fields)
}

func (m *Manager) feedback(message string, failed bool) {
	if failed && m.span != nil {
		m.span.SetStatus(codes.Error, message)
	}
	m.emit(signal.UIFeedback, signal.F("message", message, "error", failed))
}

// requireConnection reports the missing connection and returns false.
func (m *Manager) requireConnection() bool {
	if !m.connected {
		m.feedback("Not connected to a server", true)
		return false
	}
	return true
}

func (m *Manager) currentDatabase() (*Database, bool) {
	if !m.requireConnection() {
		return nil, false
	}
	if m.database == "" {
		m.feedback("No database selected", true)
		return nil, false
	}
	db, ok := m.fixtures.Database(m.database)
	if !ok {
		m.feedback(fmt.Sprintf("%q database not found on server", m.database), true)
		return nil, false
	}
	return db, true
}

func (m *Manager) currentTable() (*Table, bool) {
	db, ok := m.currentDatabase()
	if !ok {
		return nil, false
	}
	if m.table == "" {
		m.feedback("No table selected", true)
		return nil, false
	}
	t, ok := db.Table(m.table)
	if !ok {
		m.feedback(fmt.Sprintf("%q table not found in %q database", m.table, m.database), true)
		return nil, false
	}
	return t, true
}

func (m *Manager) connect(f signal.Fields) {
	hostname := f.Str("hostname")
	if hostname == "" {
		m.feedback("Hostname must be specified", true)
		return
	}
	port, ok := f.Int("port")
	if !ok || port == 0 {
		m.feedback("Port number must be specified", true)
		return
	}

	m.hostname, m.port, m.username = hostname, port, f.Str("username")
	m.connected = true
	m.logger.Info("connected", slog.String("hostname", hostname), slog.Int("port", port))
	m.feedback("Connection with server established", false)
	m.emit(signal.UIDatabaseList, signal.F("databases", m.fixtures.DatabaseNames()))
}

func (m *Manager) disconnect(signal.Fields) {
	if !m.requireConnection() {
		return
	}
	m.connected = false
	m.database, m.table = "", ""
	m.feedback("Connection with server terminated", false)
}

func (m *Manager) listDatabases(signal.Fields) {
	if !m.requireConnection() {
		return
	}
	m.emit(signal.UIDatabaseList, signal.F("databases", m.fixtures.DatabaseNames()))
}

func (m *Manager) listTables(signal.Fields) {
	db, ok := m.currentDatabase()
	if !ok {
		return
	}
	m.emit(signal.UITableList, signal.F("tables", db.TableNames()))
}

func (m *Manager) setDatabase(f signal.Fields) {
	name, _ := f.Get("database")
	if name == nil {
		m.database, m.table = "", ""
		m.feedback("Database unset", false)
		m.emit(signal.UISetDatabase, signal.F("database", nil))
		return
	}
	if !m.requireConnection() {
		return
	}
	database := f.Str("database")
	db, ok := m.fixtures.Database(database)
	if !ok {
		m.feedback(fmt.Sprintf("%q database not found on server", database), true)
		return
	}

	m.database, m.table = database, ""
	m.feedback(fmt.Sprintf("%q set as current database", database), false)
	m.emit(signal.UISetDatabase, signal.F("database", database))
	m.emit(signal.UITableList, signal.F("tables", db.TableNames()))
}

func (m *Manager) setTable(f signal.Fields) {
	name, _ := f.Get("table")
	if name == nil {
		m.table = ""
		m.feedback("Table unset", false)
		m.emit(signal.UISetTable, signal.F("table", nil))
		return
	}
	db, ok := m.currentDatabase()
	if !ok {
		return
	}
	table := f.Str("table")
	if _, ok := db.Table(table); !ok {
		m.feedback(fmt.Sprintf("%q table not found in %q database", table, m.database), true)
		return
	}

	m.table = table
	m.feedback(fmt.Sprintf("%q set as current table", table), false)
	m.emit(signal.UISetTable, signal.F("table", table))
}

func (m *Manager) tableContent(signal.Fields) {
	t, ok := m.currentTable()
	if !ok {
		return
	}
	m.emit(signal.UITableContent, signal.F("table_content", t.Content()))
}

func (m *Manager) tableStructure(signal.Fields) {
	t, ok := m.currentTable()
	if !ok {
		return
	}
	m.emit(signal.UITableStructure, signal.F("table_structure", t.Structure()))
}

func (m *Manager) rawQuery(f signal.Fields) {
	if !m.requireConnection() {
		return
	}
	if f.Str("raw") == "" {
		m.feedback("Query must be specified", true)
		return
	}
	m.emit(signal.UIRawQueryResult, signal.F("result", m.fixtures.RawQueryResult))
}

func (m *Manager) importDatabase(f signal.Fields) {
	m.transfer(f, "imported from")
}

func (m *Manager) exportDatabase(f signal.Fields) {
	m.transfer(f, "exported to")
}

// transfer validates an import or export request. The mock has nothing to
// move, so success is reported without touching the filesystem.
func (m *Manager) transfer(f signal.Fields, verb string) {
	if _, ok := m.currentDatabase(); !ok {
		return
	}
	filename, pathname := f.Str("filename"), f.Str("pathname")
	if filename == "" {
		m.feedback("Filename must be specified", true)
		return
	}
	if pathname == "" {
		pathname = "."
	}
	m.feedback(fmt.Sprintf("%q %s %q", m.database, verb, pathname+"/"+filename), false)
}
