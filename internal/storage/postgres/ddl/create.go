package ddl

import (
	"strings"

	gddl "ispetl/internal/ddl"
)

// QuoteIdent double-quotes a Postgres identifier, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// CreateSchemaSQL is idempotent.
func CreateSchemaSQL(schema string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + QuoteIdent(schema)
}

// DropTableSQL drops schema.table when present.
func DropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + gddl.QualifiedName(schema, table, QuoteIdent)
}

// BuildCreateTableSQL renders CREATE TABLE for t with Postgres quoting.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}
