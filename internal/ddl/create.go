// internal/ddl/create.go

// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// to render column lists and CREATE INDEX statements from that model.
//
// The model stays generic: backend packages supply a TableDialect with their
// quoting and type-mapping hooks and wrap the rendered column list in their
// own CREATE clause (IF NOT EXISTS guards, UNLOGGED, OBJECT_ID checks).
// ColumnDef.Default is treated as raw SQL; the caller is responsible for
// safety and dialect correctness.
package ddl

import (
	"fmt"
	"strings"
)

// TableDialect carries the per-backend hooks used to render column
// definitions for a CREATE TABLE statement.
type TableDialect struct {
	// QuoteIdent quotes a single identifier. Required.
	QuoteIdent func(string) string
	// MapType maps a generic column type onto the dialect's type. Required.
	MapType func(string) string
	// PKColumnType, when non-empty, replaces the mapped type of a
	// primary-key column entirely (SQLite's rowid alias).
	PKColumnType string
	// InlinePK renders PRIMARY KEY on the column definition itself instead
	// of a trailing PRIMARY KEY (...) clause.
	InlinePK bool
}

// BuildColumnDefsSQL validates t and renders its column-definition list
// through the dialect hooks, joined by ",\n  " for embedding in a CREATE
// TABLE body. Primary-key columns are rendered per the dialect: replaced by
// PKColumnType, marked inline, or collected into a trailing
// PRIMARY KEY (...) clause.
func BuildColumnDefsSQL(t TableDef, d TableDialect) (string, error) {
	if d.QuoteIdent == nil || d.MapType == nil {
		return "", fmt.Errorf("ddl: dialect must set QuoteIdent and MapType")
	}
	if strings.TrimSpace(t.FQN) == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", t.FQN)
		}

		var sb strings.Builder
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteByte(' ')

		switch {
		case c.PrimaryKey && d.PKColumnType != "":
			sb.WriteString(d.PKColumnType)
		case c.PrimaryKey && d.InlinePK:
			sb.WriteString(d.MapType(c.SQLType))
			sb.WriteString(" PRIMARY KEY")
		default:
			sb.WriteString(d.MapType(c.SQLType))
			if !c.Nullable && !c.PrimaryKey {
				sb.WriteString(" NOT NULL")
			}
			if def := strings.TrimSpace(c.Default); def != "" {
				sb.WriteString(" DEFAULT ")
				sb.WriteString(def)
			}
			if c.PrimaryKey {
				pks = append(pks, d.QuoteIdent(name))
			}
		}
		cols = append(cols, sb.String())
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return strings.Join(cols, ",\n  "), nil
}
