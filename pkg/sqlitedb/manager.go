// Package sqlitedb is a database manager backed by SQLite files. It answers
// the same db.* events as the mock manager. The server named on connect is
// a directory; every *.db, *.sqlite or *.sqlite3 file in it is a database.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/odvcencio/cursing/pkg/signal"
)

var extensions = []string{".db", ".sqlite", ".sqlite3"}

const tracerName = "github.com/odvcencio/cursing/pkg/sqlitedb"

// Config tunes a Manager.
type Config struct {
	// RowLimit caps the rows returned by table-content and raw queries.
	RowLimit int

	// Timeout bounds every statement.
	Timeout time.Duration

	// ReadOnly opens databases with mode=ro.
	ReadOnly bool
}

// DefaultConfig returns a read-write configuration with a 500 row limit.
func DefaultConfig() Config {
	return Config{RowLimit: 500, Timeout: 5 * time.Second}
}

// Manager answers db.* events on a bus with ui.* events. Handlers run
// synchronously on the dispatching goroutine, so statements block it for
// at most Config.Timeout.
type Manager struct {
	bus    *signal.Bus
	cfg    Config
	logger *slog.Logger
	regs   signal.Registrations
	closed bool

	// ctx belongs to the handler running now and carries its span.
	ctx context.Context

	dir      string
	db       *sql.DB
	database string
	table    string
}

// New registers a manager on b.
func New(b *signal.Bus, cfg Config, logger *slog.Logger) *Manager {
	def := DefaultConfig()
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = def.RowLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{bus: b, cfg: cfg, logger: logger}

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
		ctx, span := otel.Tracer(tracerName).Start(ev.Context(), "sqlitedb."+name, trace.WithAttributes(
			attribute.String("sqlitedb.database", m.database),
		))
		defer span.End()
		prev := m.ctx
		m.ctx = ctx
		defer func() { m.ctx = prev }()

		m.logger.Debug("handle", slog.String("event", ev.Name()))
		fn(ev.Fields())
	}))
}

// Alive reports whether the manager still serves events.
func (m *Manager) Alive() bool {
	return !m.closed
}

// Close releases every registration and the open database.
func (m *Manager) Close() error {
	m.closed = true
	m.regs.ReleaseAll()
	return m.closeDB()
}

// Connected reports whether a server directory is selected.
func (m *Manager) Connected() bool {
	return m.dir != ""
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
	m.emit(signal.UIFeedback, signal.F("message", message, "error", failed))
}

func (m *Manager) fail(action string, err error) {
	m.logger.Warn(action, slog.String("database", m.database), slog.String("error", err.Error()))
	span := trace.SpanFromContext(m.requestContext())
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	if isReadOnly(err) {
		m.feedback(fmt.Sprintf("%q database is read-only", m.database), true)
		return
	}
	m.feedback(fmt.Sprintf("Could not %s: %v", action, err), true)
}

func isReadOnly(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_READONLY
	}
	return false
}

func (m *Manager) requestContext() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func (m *Manager) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.requestContext(), m.cfg.Timeout)
}

func (m *Manager) requireConnection() bool {
	if m.dir == "" {
		m.feedback("Not connected to a server", true)
		return false
	}
	return true
}

func (m *Manager) requireDatabase() bool {
	if !m.requireConnection() {
		return false
	}
	if m.db == nil {
		m.feedback("No database selected", true)
		return false
	}
	return true
}

func (m *Manager) requireTable() bool {
	if !m.requireDatabase() {
		return false
	}
	if m.table == "" {
		m.feedback("No table selected", true)
		return false
	}
	return true
}

func (m *Manager) connect(f signal.Fields) {
	hostname := f.Str("hostname")
	if hostname == "" {
		m.feedback("Hostname must be specified", true)
		return
	}
	dir, err := filepath.Abs(hostname)
	if err == nil {
		var info os.FileInfo
		if info, err = os.Stat(dir); err == nil && !info.IsDir() {
			err = fmt.Errorf("%s is not a directory", dir)
		}
	}
	if err != nil {
		m.fail("connect to server", err)
		return
	}

	m.reset()
	m.dir = dir
	m.logger.Info("connected", slog.String("dir", dir))
	m.feedback("Connection with server established", false)
	m.listDatabases(signal.Fields{})
}

// reset closes the open database and forgets the selection.
func (m *Manager) reset() {
	if err := m.closeDB(); err != nil {
		m.logger.Warn("close database", slog.String("error", err.Error()))
	}
	m.database, m.table = "", ""
}

func (m *Manager) closeDB() error {
	if m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	return db.Close()
}

func (m *Manager) disconnect(signal.Fields) {
	if !m.requireConnection() {
		return
	}
	m.reset()
	m.dir = ""
	m.feedback("Connection with server terminated", false)
}

// databases lists the database files of the server directory by name.
func (m *Manager) databases() (map[string]string, []string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, nil, err
	}
	files := make(map[string]string)
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, want := range extensions {
			if strings.EqualFold(ext, want) {
				name := strings.TrimSuffix(e.Name(), ext)
				if _, dup := files[name]; !dup {
					files[name] = filepath.Join(m.dir, e.Name())
					names = append(names, name)
				}
				break
			}
		}
	}
	return files, names, nil
}

func (m *Manager) listDatabases(signal.Fields) {
	if !m.requireConnection() {
		return
	}
	_, names, err := m.databases()
	if err != nil {
		m.fail("list databases", err)
		return
	}
	m.emit(signal.UIDatabaseList, signal.F("databases", names))
}

func (m *Manager) tables() ([]string, error) {
	ctx, cancel := m.withTimeout()
	defer cancel()
	rows, err := m.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (m *Manager) listTables(signal.Fields) {
	if !m.requireDatabase() {
		return
	}
	names, err := m.tables()
	if err != nil {
		m.fail("list tables", err)
		return
	}
	m.emit(signal.UITableList, signal.F("tables", names))
}

func (m *Manager) open(path string) (*sql.DB, error) {
	dsn := path
	if m.cfg.ReadOnly {
		dsn = "file:" + path + "?mode=ro"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection keeps PRAGMAs and the read-only mode in effect.
	db.SetMaxOpenConns(1)

	ctx, cancel := m.withTimeout()
	defer cancel()
	for _, pragma := range []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", m.cfg.Timeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (m *Manager) setDatabase(f signal.Fields) {
	if v, _ := f.Get("database"); v == nil {
		m.reset()
		m.feedback("Database unset", false)
		m.emit(signal.UISetDatabase, signal.F("database", nil))
		return
	}
	if !m.requireConnection() {
		return
	}
	database := f.Str("database")
	files, _, err := m.databases()
	if err != nil {
		m.fail("list databases", err)
		return
	}
	path, ok := files[database]
	if !ok {
		m.feedback(fmt.Sprintf("%q database not found on server", database), true)
		return
	}

	db, err := m.open(path)
	if err != nil {
		m.fail("open database", err)
		return
	}
	m.reset()
	m.db, m.database = db, database

	m.feedback(fmt.Sprintf("%q set as current database", database), false)
	m.emit(signal.UISetDatabase, signal.F("database", database))
	m.listTables(signal.Fields{})
}

func (m *Manager) setTable(f signal.Fields) {
	if v, _ := f.Get("table"); v == nil {
		m.table = ""
		m.feedback("Table unset", false)
		m.emit(signal.UISetTable, signal.F("table", nil))
		return
	}
	if !m.requireDatabase() {
		return
	}
	table := f.Str("table")
	names, err := m.tables()
	if err != nil {
		m.fail("list tables", err)
		return
	}
	found := false
	for _, name := range names {
		if name == table {
			found = true
			break
		}
	}
	if !found {
		m.feedback(fmt.Sprintf("%q table not found in %q database", table, m.database), true)
		return
	}

	m.table = table
	m.feedback(fmt.Sprintf("%q set as current table", table), false)
	m.emit(signal.UISetTable, signal.F("table", table))
}

func (m *Manager) tableContent(signal.Fields) {
	if !m.requireTable() {
		return
	}
	ctx, cancel := m.withTimeout()
	defer cancel()
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(m.table), m.cfg.RowLimit)
	content, err := queryTable(ctx, m.db, query)
	if err != nil {
		m.fail("read table", err)
		return
	}
	m.emit(signal.UITableContent, signal.F("table_content", content))
}

func (m *Manager) tableStructure(signal.Fields) {
	if !m.requireTable() {
		return
	}
	ctx, cancel := m.withTimeout()
	defer cancel()
	rows, err := m.db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(m.table)+")")
	if err != nil {
		m.fail("describe table", err)
		return
	}
	defer rows.Close()

	out := [][]string{{"column", "type", "null", "key", "default"}}
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull bool
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			m.fail("describe table", err)
			return
		}
		null, key, def := "YES", "", "NULL"
		if notNull {
			null = "NO"
		}
		if pk > 0 {
			key = "PRI"
		}
		if dflt.Valid {
			def = dflt.String
		}
		out = append(out, []string{name, typ, null, key, def})
	}
	if err := rows.Err(); err != nil {
		m.fail("describe table", err)
		return
	}
	m.emit(signal.UITableStructure, signal.F("table_structure", out))
}

func (m *Manager) rawQuery(f signal.Fields) {
	if !m.requireConnection() {
		return
	}
	raw := strings.TrimSpace(f.Str("raw"))
	if raw == "" {
		m.feedback("Query must be specified", true)
		return
	}
	if !m.requireDatabase() {
		return
	}

	ctx, cancel := m.withTimeout()
	defer cancel()

	if returnsRows(raw) {
		table, err := queryTable(ctx, m.db, raw)
		if err != nil {
			m.fail("run query", err)
			return
		}
		m.emit(signal.UIRawQueryResult, signal.F("result", formatTable(table, m.cfg.RowLimit)))
		return
	}

	res, err := m.db.ExecContext(ctx, raw)
	if err != nil {
		m.fail("run query", err)
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	m.emit(signal.UIRawQueryResult, signal.F("result", fmt.Sprintf("Query OK, %d %s affected", affected, plural(int(affected), "row"))))
}

func (m *Manager) importDatabase(f signal.Fields) {
	path, ok := m.transferPath(f)
	if !ok {
		return
	}
	script, err := os.ReadFile(path)
	if err != nil {
		m.fail("import database", err)
		return
	}

	ctx, cancel := m.withTimeout()
	defer cancel()
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		m.fail("import database", err)
		return
	}
	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		_ = tx.Rollback()
		m.fail("import database", err)
		return
	}
	if err := tx.Commit(); err != nil {
		m.fail("import database", err)
		return
	}

	m.logger.Info("imported", slog.String("database", m.database), slog.String("path", path))
	m.feedback(fmt.Sprintf("%q imported from %q", m.database, path), false)
	m.listTables(signal.Fields{})
}

func (m *Manager) exportDatabase(f signal.Fields) {
	path, ok := m.transferPath(f)
	if !ok {
		return
	}
	ctx, cancel := m.withTimeout()
	defer cancel()
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		m.fail("export database", err)
		return
	}
	m.logger.Info("exported", slog.String("database", m.database), slog.String("path", path))
	m.feedback(fmt.Sprintf("%q exported to %q", m.database, path), false)
}

// transferPath validates an import or export request and returns the file
// it names. Extra boolean options are accepted and logged.
func (m *Manager) transferPath(f signal.Fields) (string, bool) {
	if !m.requireDatabase() {
		return "", false
	}
	filename, pathname := f.Str("filename"), f.Str("pathname")
	if filename == "" {
		m.feedback("Filename must be specified", true)
		return "", false
	}
	if pathname == "" {
		pathname = "."
	}
	f.Each(func(name string, value any) {
		if b, ok := value.(bool); ok {
			m.logger.Debug("transfer option", slog.String("option", name), slog.Bool("value", b))
		}
	})
	return filepath.Join(pathname, filename), true
}
