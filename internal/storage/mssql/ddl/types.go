// Package ddl contains SQL Server-specific helpers for generating DDL.
package ddl

import "ispetl/internal/table"

// MapType maps a record-table column kind to a SQL Server type. Text uses
// NVARCHAR(MAX) so accented values survive regardless of the collation.
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindDecimal:
		return "FLOAT"
	case table.KindDate:
		return "DATE"
	case table.KindTime:
		return "TIME"
	case table.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}
