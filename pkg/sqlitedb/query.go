package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/tabwriter"
)

// rowKeywords start statements that produce a result set.
var rowKeywords = []string{"SELECT", "WITH", "PRAGMA", "EXPLAIN", "VALUES"}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimLeft(fields[0], "("))
	for _, kw := range rowKeywords {
		if first == kw {
			return true
		}
	}
	return false
}

// quoteIdent quotes a table or column name for interpolation.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// queryTable runs query and returns the column names followed by every row
// rendered as text. NULL becomes "NULL".
func queryTable(ctx context.Context, db *sql.DB, query string) ([][]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := [][]string{columns}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cell(v)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// formatTable renders a query result as aligned text in the style of a
// command line client. At most limit rows are shown.
func formatTable(table [][]string, limit int) string {
	if len(table) == 0 || len(table[0]) == 0 {
		return "Empty set"
	}
	header, rows := table[0], table[1:]
	total := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	rule := make([]string, len(header))
	for i, h := range header {
		rule[i] = strings.Repeat("-", max(len(h), 3))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	fmt.Fprintf(&b, "%d %s in set", total, plural(total, "row"))
	if len(rows) < total {
		fmt.Fprintf(&b, " (showing %d)", len(rows))
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
