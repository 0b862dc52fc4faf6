package ddl

import (
	"fmt"

	"ispetl/internal/table"
)

// ColumnDef describes a single column. Name is unquoted; quoting happens at
// render time.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef names a table inside a schema and lists its columns in order.
type TableDef struct {
	Schema  string
	Name    string
	Columns []ColumnDef
}

// TypeMapper maps a record-table column kind to a backend SQL type.
type TypeMapper func(table.Kind) string

// FromTable derives a TableDef from record-table columns. Every column is
// nullable, like a table created by a dataframe writer.
func FromTable(schema, name string, cols []table.Column, mapType TypeMapper) (TableDef, error) {
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper")
	}
	def := TableDef{Schema: schema, Name: name, Columns: make([]ColumnDef, len(cols))}
	for i, c := range cols {
		def.Columns[i] = ColumnDef{Name: c.Name, SQLType: mapType(c.Kind), Nullable: true}
	}
	return def, nil
}
