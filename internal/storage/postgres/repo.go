// Package postgres implements a Postgres repository using pgx v5. The table
// replace runs DROP, CREATE and COPY inside one transaction, so readers see
// either the previous snapshot or the new one.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "ispetl/internal/ddl"
	"ispetl/internal/logger"
	"ispetl/internal/storage"
	pgddl "ispetl/internal/storage/postgres/ddl"
	"ispetl/internal/table"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN       string // connection string for pgxpool
	BatchSize int    // rows per COPY batch
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a pool, pings it, and returns a Close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", pgErr(err))
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5000
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, closeFn, nil
}

// EnsureSchema creates schema in its own committed transaction.
func (r *Repository) EnsureSchema(ctx context.Context, schema string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, pgddl.CreateSchemaSQL(schema)); err != nil {
			return pgErr(err)
		}
		return nil
	})
}

// ReplaceTable drops, recreates and fills schema.name in one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, schema, name string, t *table.Table) (int64, error) {
	def, err := gddl.FromTable(schema, name, t.Columns, pgddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := pgddl.BuildCreateTableSQL(def)
	if err != nil {
		return 0, err
	}

	var n int64
	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, pgddl.DropTableSQL(schema, name)); err != nil {
			return fmt.Errorf("drop: %w", pgErr(err))
		}
		if _, err := tx.Exec(ctx, create); err != nil {
			return fmt.Errorf("create: %w", pgErr(err))
		}
		logger.From(ctx).Debug().Str("sql", create).Msg("table created")

		ident := pgx.Identifier{schema, name}
		n, err = storage.CopyTable(ctx, t, r.cfg.BatchSize, copyValue,
			func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
				c, err := tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
				return c, pgErr(err)
			})
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// copyValue converts a cell to the pgtype value COPY expects for the
// column's SQL type.
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
		return pgtype.Date{Time: v.Time, Valid: true}
	case table.KindTime:
		h, m, s := v.Time.Clock()
		us := (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second +
			time.Duration(v.Time.Nanosecond())).Microseconds()
		return pgtype.Time{Microseconds: us, Valid: true}
	case table.KindTimestamp:
		return pgtype.Timestamp{Time: v.Time, Valid: true}
	default:
		return v.Str
	}
}

// pgErr surfaces the server's detail and SQLSTATE when present.
func pgErr(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Detail != "" {
		return fmt.Errorf("%s: %s (%s): %w", pe.Message, pe.Detail, pe.SQLState(), err)
	}
	return err
}
