package signal

// Events consumed by database collaborators.
const (
	DBConnect        = "db.connect"
	DBDisconnect     = "db.disconnect"
	DBListDatabases  = "db.list-databases"
	DBListTables     = "db.list-tables"
	DBSetDatabase    = "db.set-database"
	DBSetTable       = "db.set-table"
	DBTableContent   = "db.table-content"
	DBTableStructure = "db.table-structure"
	DBRawQuery       = "db.raw-query"
	DBImportDatabase = "db.import-database"
	DBExportDatabase = "db.export-database"
)

// Events produced by collaborators for the interface.
const (
	UIFeedback       = "ui.feedback"
	UIDatabaseList   = "ui.database-list"
	UITableList      = "ui.table-list"
	UITableContent   = "ui.table-content"
	UITableStructure = "ui.table-structure"
	UIRawQueryResult = "ui.raw-query-result"
	UISetDatabase    = "ui.set-database"
	UISetTable       = "ui.set-table"
)

// Events internal to the interface.
const (
	UIPromptConfirm = "ui.prompt-confirm"
	UIUpdateStatus  = "ui.update-status"
	UIExit          = "ui.exit"
	UITick          = "ui.tick"
	FormField       = "form.field"
	FormSubmit      = "form.submit"
)

// DefaultCatalog declares the payload of every event the application uses.
func DefaultCatalog() *Catalog {
	c := NewCatalog()

	c.Declare(DBConnect,
		Spec{Name: "hostname", Kind: KindString},
		Spec{Name: "port", Kind: KindInt},
		Spec{Name: "username", Kind: KindString},
		Spec{Name: "password", Kind: KindString},
	)
	c.Declare(DBDisconnect)
	c.Declare(DBListDatabases)
	c.Declare(DBListTables)
	c.Declare(DBSetDatabase, Spec{Name: "database", Kind: KindString})
	c.Declare(DBSetTable, Spec{Name: "table", Kind: KindString})
	c.Declare(DBTableContent)
	c.Declare(DBTableStructure)
	c.Declare(DBRawQuery, Spec{Name: "raw", Kind: KindString})
	c.DeclareOpen(DBImportDatabase, KindBool,
		Spec{Name: "pathname", Kind: KindString},
		Spec{Name: "filename", Kind: KindString},
	)
	c.DeclareOpen(DBExportDatabase, KindBool,
		Spec{Name: "pathname", Kind: KindString},
		Spec{Name: "filename", Kind: KindString},
	)

	c.Declare(UIFeedback,
		Spec{Name: "message", Kind: KindString},
		Spec{Name: "error", Kind: KindBool},
	)
	c.Declare(UIDatabaseList, Spec{Name: "databases", Kind: KindStrings})
	c.Declare(UITableList, Spec{Name: "tables", Kind: KindStrings})
	c.Declare(UITableContent, Spec{Name: "table_content", Kind: KindTable})
	c.Declare(UITableStructure, Spec{Name: "table_structure", Kind: KindTable})
	c.Declare(UIRawQueryResult, Spec{Name: "result", Kind: KindString})
	c.Declare(UISetDatabase, Spec{Name: "database", Kind: KindString})
	c.Declare(UISetTable, Spec{Name: "table", Kind: KindString})

	c.Declare(UIPromptConfirm,
		Spec{Name: "prompt", Kind: KindString},
		Spec{Name: "confirm", Kind: KindString},
	)
	c.Declare(UIUpdateStatus, Spec{Name: "status", Kind: KindString})
	c.Declare(UIExit)
	c.Declare(UITick)
	c.DeclareOpen(FormField, KindAny)
	c.Declare(FormSubmit)

	return c
}
