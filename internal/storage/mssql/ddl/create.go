package ddl

import (
	"strings"

	gddl "ispetl/internal/ddl"
)

// QuoteIdent quotes a SQL Server identifier with brackets.
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func literal(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// CreateSchemaSQL creates schema unless it exists. T-SQL has no CREATE
// SCHEMA IF NOT EXISTS, and CREATE SCHEMA must be alone in its batch, hence
// the EXEC.
func CreateSchemaSQL(schema string) string {
	return "IF SCHEMA_ID(" + literal(schema) + ") IS NULL EXEC(" + literal("CREATE SCHEMA "+QuoteIdent(schema)) + ")"
}

// DropTableSQL drops schema.table when present (SQL Server 2016+).
func DropTableSQL(schema, table string) string {
	return "DROP TABLE IF EXISTS " + gddl.QualifiedName(schema, table, QuoteIdent)
}

// BuildCreateTableSQL renders CREATE TABLE for t with bracket quoting.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.BuildCreateTableSQL(t, QuoteIdent)
}
