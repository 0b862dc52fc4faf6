// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// the CREATE TABLE statement shared by every supported dialect. Backends plug
// in their identifier quoting and type mapping.
package ddl

import (
	"fmt"
	"strings"
)

// Quoter quotes one identifier segment for a dialect.
type Quoter func(string) string

// QualifiedName renders schema.name with q. An empty schema yields just the
// quoted name.
func QualifiedName(schema, name string, q Quoter) string {
	if strings.TrimSpace(schema) == "" {
		return q(name)
	}
	return q(schema) + "." + q(name)
}

// BuildCreateTableSQL renders
//
//	CREATE TABLE <schema>.<name> (
//	  <col> <TYPE> [NOT NULL],
//	  ...
//	)
//
// with identifiers quoted by q.
func BuildCreateTableSQL(t TableDef, q Quoter) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if q == nil {
		return "", fmt.Errorf("ddl: nil quoter")
	}

	cols := make([]string, 0, len(t.Columns))
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", t.Name)
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			return "", fmt.Errorf("ddl: duplicate column %s in table %s", name, t.Name)
		}
		seen[strings.ToLower(name)] = struct{}{}

		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		def := q(name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n)",
		QualifiedName(t.Schema, t.Name, q),
		strings.Join(cols, ",\n  "),
	), nil
}
