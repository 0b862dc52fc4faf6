package ddl

import (
	"strings"

	gddl "ispetl/internal/ddl"
)

// QuoteIdent double-quotes a SQLite identifier.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// AttachSQL attaches a database file under schema. SQLite has no CREATE
// SCHEMA; an attached database plays that role.
func AttachSQL(schema string) string {
	return "ATTACH DATABASE ? AS " + QuoteIdent(schema)
}

// DropTableSQL drops schema.table when present.
func DropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + gddl.QualifiedName(schema, table, QuoteIdent)
}

// BuildCreateTableSQL renders CREATE TABLE for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}
