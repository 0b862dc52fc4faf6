package ddl

import (
	"strings"

	gddl "ispetl/internal/ddl"
)

// QuoteIdent backtick-quotes a MySQL identifier.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// CreateSchemaSQL creates the database unless it exists, in utf8mb4 so the
// Portuguese text round-trips.
func CreateSchemaSQL(schema string) string {
	return "CREATE DATABASE IF NOT EXISTS " + QuoteIdent(schema) + " CHARACTER SET utf8mb4"
}

// DropTableSQL drops schema.table when present.
func DropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + gddl.QualifiedName(schema, table, QuoteIdent)
}

// BuildCreateTableSQL renders CREATE TABLE for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}
