package mockdb

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrFixture is wrapped by every fixture validation failure.
var ErrFixture = errors.New("invalid fixture")

//go:embed fixtures.yaml
var defaultFixtures []byte

// Column is one column of a mock table.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Table is a mock table with its rows, stored as text.
type Table struct {
	Name    string     `yaml:"name"`
	Columns []Column   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
}

// Database is a named set of tables.
type Database struct {
	Name   string  `yaml:"name"`
	Tables []Table `yaml:"tables"`
}

// Fixtures is the content served by the mock manager.
type Fixtures struct {
	Databases      []Database `yaml:"databases"`
	RawQueryResult string     `yaml:"raw_query_result"`
}

// DefaultFixtures returns the built-in Book Store and Car Dealership
// databases.
func DefaultFixtures() *Fixtures {
	f, err := ParseFixtures(defaultFixtures)
	if err != nil {
		panic(fmt.Sprintf("mockdb: built-in fixtures: %v", err))
	}
	return f
}

// LoadFixtures reads fixtures from a YAML file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes and validates YAML fixtures.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	seen := make(map[string]bool, len(f.Databases))
	for _, db := range f.Databases {
		if db.Name == "" {
			return fmt.Errorf("%w: database without a name", ErrFixture)
		}
		if seen[db.Name] {
			return fmt.Errorf("%w: duplicate database %q", ErrFixture, db.Name)
		}
		seen[db.Name] = true

		tables := make(map[string]bool, len(db.Tables))
		for _, t := range db.Tables {
			if t.Name == "" {
				return fmt.Errorf("%w: table without a name in %q", ErrFixture, db.Name)
			}
			if tables[t.Name] {
				return fmt.Errorf("%w: duplicate table %q in %q", ErrFixture, t.Name, db.Name)
			}
			tables[t.Name] = true
			for i, row := range t.Rows {
				if len(row) != len(t.Columns) {
					return fmt.Errorf("%w: %s.%s row %d has %d cells, want %d",
						ErrFixture, db.Name, t.Name, i, len(row), len(t.Columns))
				}
			}
		}
	}
	return nil
}

// DatabaseNames returns the database names in fixture order.
func (f *Fixtures) DatabaseNames() []string {
	out := make([]string, 0, len(f.Databases))
	for _, db := range f.Databases {
		out = append(out, db.Name)
	}
	return out
}

// Database looks up a database by name.
func (f *Fixtures) Database(name string) (*Database, bool) {
	for i := range f.Databases {
		if f.Databases[i].Name == name {
			return &f.Databases[i], true
		}
	}
	return nil, false
}

// TableNames returns the table names in fixture order.
func (d *Database) TableNames() []string {
	out := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		out = append(out, t.Name)
	}
	return out
}

// Table looks up a table by name.
func (d *Database) Table(name string) (*Table, bool) {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// Content returns the column names followed by the rows.
func (t *Table) Content() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	out = append(out, header)
	for _, row := range t.Rows {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

// Structure returns one [name, type] row per column.
func (t *Table) Structure() [][]string {
	out := make([][]string, 0, len(t.Columns)+1)
	out = append(out, []string{"column", "type"})
	for _, c := range t.Columns {
		out = append(out, []string{c.Name, c.Type})
	}
	return out
}
