package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	gddl "ispetl/internal/ddl"
	"ispetl/internal/logger"
	"ispetl/internal/storage"
	liteddl "ispetl/internal/storage/sqlite/ddl"
	"ispetl/internal/table"
)

// Repository is a SQLite-backed implementation of storage.Repository.
//
// SQLite has no schemas. A schema is an attached database file named
// <schema>.db next to the main database (or an in-memory database when the
// main one is in memory). The pool is pinned to one connection because
// attachments are per connection.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5000
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// attached returns name -> file for every database on the connection.
func (r *Repository) attached(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, fmt.Errorf("sqlite: database_list: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var (
			seq        int
			name, file string
		)
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, fmt.Errorf("sqlite: database_list: %w", err)
		}
		out[name] = file
	}
	return out, rows.Err()
}

// schemaFile picks the file an attached schema lives in: next to the main
// database file, or in memory when the main database is.
func schemaFile(mainFile, schema string) string {
	if mainFile == "" {
		return ":memory:"
	}
	return filepath.Join(filepath.Dir(mainFile), schema+".db")
}

// EnsureSchema attaches schema unless it is already attached. "main" and
// "temp" always exist.
func (r *Repository) EnsureSchema(ctx context.Context, schema string) error {
	dbs, err := r.attached(ctx)
	if err != nil {
		return err
	}
	if _, ok := dbs[schema]; ok {
		return nil
	}
	if strings.EqualFold(schema, "temp") {
		return nil
	}
	file := schemaFile(dbs["main"], schema)
	if _, err := r.db.ExecContext(ctx, liteddl.AttachSQL(schema), file); err != nil {
		return fmt.Errorf("sqlite: attach %s: %w", file, err)
	}
	logger.From(ctx).Debug().Str("schema", schema).Str("file", file).Msg("schema attached")
	return nil
}

// ReplaceTable drops, recreates and fills schema.name in one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, schema, name string, t *table.Table) (int64, error) {
	def, err := gddl.FromTable(schema, name, t.Columns, liteddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := liteddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, liteddl.DropTableSQL(schema, name)); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: drop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: create: %w", err)
	}

	target := gddl.QualifiedName(schema, name, liteddl.QuoteIdent)
	n, err := storage.CopyTable(ctx, t, r.cfg.BatchSize, copyValue,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return insertRows(ctx, tx, target, columns, rows)
		})
	if err != nil {
		rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return n, nil
}

// insertRows inserts rows through one prepared statement on tx. SQLite has
// no bulk-load API; a transaction keeps row-at-a-time inserts fast.
func insertRows(ctx context.Context, tx *sql.Tx, target string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: insert: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = liteddl.QuoteIdent(c)
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		target,
		strings.Join(quoted, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// copyValue stores temporal kinds as ISO-8601 text, the form SQLite's date
// functions understand.
func copyValue(v table.Value) any {
	if v.Null {
		return nil
	}
	switch v.Kind {
	case table.KindInteger:
		return v.Int
	case table.KindDecimal:
		return v.Float
	case table.KindDate:
		return v.Time.Format("2006-01-02")
	case table.KindTime:
		return v.Time.Format("15:04:05")
	case table.KindTimestamp:
		return v.Time.Format("2006-01-02 15:04:05")
	default:
		return v.Str
	}
}
