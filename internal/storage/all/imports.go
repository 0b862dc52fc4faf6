// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories with the storage package. After the import the following
// storage kinds are available:
//
//   - "postgres" (ispetl/internal/storage/postgres)
//   - "mssql"    (ispetl/internal/storage/mssql)
//   - "mysql"    (ispetl/internal/storage/mysql)
//   - "sqlite"   (ispetl/internal/storage/sqlite)
//
// Typical usage, in cmd/ispetl:
//
//	import _ "ispetl/internal/storage/all"
//
//	res := storage.Load(ctx, storage.Config{Kind: kind, DSN: dsn}, dest, tbl)
//
// A binary that needs only a subset can import the backends it wants instead.
package all

import (
	_ "ispetl/internal/storage/mssql"
	_ "ispetl/internal/storage/mysql"
	_ "ispetl/internal/storage/postgres"
	_ "ispetl/internal/storage/sqlite"
)
