// Package mysql implements a MySQL-backed storage.Repository using
// go-sql-driver/mysql. A schema maps to a MySQL database.
//
// MySQL commits DDL implicitly, so DROP and CREATE cannot share a
// transaction with the data. ReplaceTable drops and recreates the table, then
// inserts every batch inside one transaction: a failed load leaves an empty
// table rather than a partial one.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	drv "github.com/go-sql-driver/mysql"

	gddl "ispetl/internal/ddl"
	"ispetl/internal/logger"
	"ispetl/internal/storage"
	myddl "ispetl/internal/storage/mysql/ddl"
	"ispetl/internal/table"
)

// maxPlaceholders is the server's limit on bind parameters per statement.
const maxPlaceholders = 65535

// Config holds MySQL repository configuration.
type Config struct {
	DSN       string
	BatchSize int
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository validates the DSN, opens a pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dc, err := drv.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	// DATE/DATETIME columns are scanned back as time.Time.
	dc.ParseTime = true
	db, err := sql.Open("mysql", dc.FormatDSN())
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

// EnsureSchema creates the database unless it exists.
func (r *Repository) EnsureSchema(ctx context.Context, schema string) error {
	_, err := r.db.ExecContext(ctx, myddl.CreateSchemaSQL(schema))
	return err
}

// ReplaceTable drops and recreates schema.name, then inserts the rows in one
// transaction.
func (r *Repository) ReplaceTable(ctx context.Context, schema, name string, t *table.Table) (int64, error) {
	def, err := gddl.FromTable(schema, name, t.Columns, myddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := myddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, err
	}

	if _, err := r.db.ExecContext(ctx, myddl.DropTableSQL(schema, name)); err != nil {
		return 0, fmt.Errorf("drop: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}
	logger.From(ctx).Debug().Str("sql", create).Msg("table created")

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	target := gddl.QualifiedName(schema, name, myddl.QuoteIdent)
	n, err := storage.CopyTable(ctx, t, batchRows(r.cfg.BatchSize, len(t.Columns)), copyValue,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return insertBatch(ctx, tx, target, columns, rows)
		})
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// batchRows caps the batch so one INSERT stays under maxPlaceholders.
func batchRows(batchSize, ncols int) int {
	if ncols == 0 {
		return batchSize
	}
	if limit := maxPlaceholders / ncols; batchSize > limit {
		return limit
	}
	return batchSize
}

// insertSQL renders INSERT INTO target (cols) VALUES (?,..),(?,..) for n rows.
func insertSQL(target string, columns []string, n int) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(target)
	b.WriteString(" (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(") VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tuple)
	}
	return b.String()
}

func insertBatch(ctx context.Context, tx *sql.Tx, target string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d: %d values for %d columns", i, len(row), len(columns))
		}
		args = append(args, row...)
	}
	res, err := tx.ExecContext(ctx, insertSQL(target, columns, len(rows)), args...)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return res.RowsAffected()
}

// copyValue maps a cell to a driver value. TIME is sent as text since the
// driver encodes time.Time as a full datetime.
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
		return v.Time
	default:
		return v.Str
	}
}
