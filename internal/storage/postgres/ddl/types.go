// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "ispetl/internal/table"

// MapType maps a record-table column kind to a Postgres type.
//
//	text      -> TEXT
//	integer   -> BIGINT
//	decimal   -> DOUBLE PRECISION
//	date      -> DATE
//	time      -> TIME
//	timestamp -> TIMESTAMP
func MapType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "BIGINT"
	case table.KindDecimal:
		return "DOUBLE PRECISION"
	case table.KindDate:
		return "DATE"
	case table.KindTime:
		return "TIME"
	case table.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
