package storage

import (
	"context"
	"fmt"
	"time"

	"ispetl/internal/logger"
	"ispetl/internal/table"
)

// CopyFn inserts rows (aligned to columns) and returns how many it wrote.
// Backends implement it with their bulk primitive (COPY, bulk copy, or a
// prepared INSERT inside the surrounding transaction).
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// ValueFn converts a cell to the driver value a backend expects.
type ValueFn func(table.Value) any

// LoadBatches drains rows from in, groups them into batches of batchSize,
// and calls copyFn per non-empty batch. It returns the running total and the
// first error. Each flush logs a progress line at debug level.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	log := logger.From(ctx)
	var (
		total   int64
		batches int
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return fmt.Errorf("copy batch %d: %w", batches+1, err)
		}
		batches++
		log.Debug().
			Int("batch", batches).
			Int64("inserted", n).
			Int64("total", total).
			Dur("elapsed", time.Since(start)).
			Msg("batch copied")
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// CopyTable streams t's rows through conv into LoadBatches.
func CopyTable(ctx context.Context, t *table.Table, batchSize int, conv ValueFn, copyFn CopyFn) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, batchSize)
	go func() {
		defer close(in)
		for _, row := range t.Rows {
			vals := make([]any, len(row))
			for i, v := range row {
				vals[i] = conv(v)
			}
			select {
			case in <- vals:
			case <-ctx.Done():
				return
			}
		}
	}()

	return LoadBatches(ctx, t.Names(), in, batchSize, copyFn)
}
