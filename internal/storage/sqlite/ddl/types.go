// Package ddl contains SQLite-specific helpers for generating DDL.
//
// SQLite is dynamically typed, so kinds map to affinities. Dates and times
// are stored as ISO-8601 text.
package ddl

import "ispetl/internal/table"

// MapType maps a record-table column kind to a SQLite column type.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "INTEGER"
	case table.KindDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}
