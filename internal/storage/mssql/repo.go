// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. The table replace (DROP, CREATE, bulk copy) runs
// in a single transaction.
package mssql

import (
	"context"
	"database/sql"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	gddl "ispetl/internal/ddl"
	"ispetl/internal/logger"
	"ispetl/internal/storage"
	msddl "ispetl/internal/storage/mssql/ddl"
	"ispetl/internal/table"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN       string
	BatchSize int
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5000
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// EnsureSchema creates schema unless it exists and commits.
func (r *Repository) EnsureSchema(ctx context.Context, schema string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, msddl.CreateSchemaSQL(schema))
		return err
	})
}

// ReplaceTable drops, recreates and bulk-loads schema.name in one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, schema, name string, t *table.Table) (int64, error) {
	def, err := gddl.FromTable(schema, name, t.Columns, msddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := msddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, err
	}
	target := gddl.QualifiedName(schema, name, msddl.QuoteIdent)

	var n int64
	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, msddl.DropTableSQL(schema, name)); err != nil {
			return fmt.Errorf("drop: %w", err)
		}
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		logger.From(ctx).Debug().Str("sql", create).Msg("table created")

		var err error
		n, err = storage.CopyTable(ctx, t, r.cfg.BatchSize, copyValue,
			func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
				return copyBatch(ctx, tx, target, columns, rows)
			})
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// copyBatch bulk-inserts rows into target through a CopyIn statement on tx.
func copyBatch(ctx context.Context, tx *sql.Tx, target string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(target, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// copyValue maps a cell to the value bulk copy expects. DATE, TIME and
// DATETIME2 columns all accept time.Time.
func copyValue(v table.Value) any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case table.KindInteger:
		return v.Int
	case table.KindDecimal:
		return v.Float
	case table.KindDate, table.KindTime, table.KindTimestamp:
		return v.Time
	default:
		return v.Str
	}
}
