// Package ddl contains MySQL-specific helpers for generating DDL. In MySQL a
// schema is a database.
package ddl

import "ispetl/internal/table"

// MapType maps a record-table column kind to a MySQL type.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindDecimal:
		return "DOUBLE"
	case table.KindDate:
		return "DATE"
	case table.KindTime:
		return "TIME"
	case table.KindTimestamp:
		return "DATETIME"
	default:
		return "TEXT"
	}
}
