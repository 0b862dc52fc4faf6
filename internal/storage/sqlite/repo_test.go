package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ispetl/internal/storage"
	"ispetl/internal/table"
)

/*
Package-level test helpers
*/

func newRepo(tb testing.TB, dsn string) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn, BatchSize: 2})
	if err != nil {
		tb.Fatalf("NewRepository(%q): %v", dsn, err)
	}
	tb.Cleanup(closeFn)
	return r
}

func sample(tb testing.TB, titles ...string) *table.Table {
	tb.Helper()
	t := table.New(
		table.Column{Name: "titulo", Kind: table.KindText},
		table.Column{Name: "vitimas", Kind: table.KindInteger},
		table.Column{Name: "data_com", Kind: table.KindDate},
		table.Column{Name: "hora_com", Kind: table.KindTime},
		table.Column{Name: "data_atualizacao", Kind: table.KindTimestamp},
	)
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range titles {
		err := t.AppendRow([]table.Value{
			table.Text(title),
			table.Integer(int64(i + 1)),
			table.Date(day),
			table.TimeOfDay(time.Date(0, 1, 1, 23, 59, i, 0, time.UTC)),
			table.Timestamp(stamp),
		}, table.Origin{Source: "gv.csv", Line: i + 2})
		if err != nil {
			tb.Fatalf("AppendRow: %v", err)
		}
	}
	return t
}

func countRows(tb testing.TB, r *Repository, qualified string) int {
	tb.Helper()
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM " + qualified).Scan(&n); err != nil {
		tb.Fatalf("count %s: %v", qualified, err)
	}
	return n
}

/*
Unit tests
*/

func TestCopyValue(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 5, 7, 8, 9, 0, time.UTC)
	tests := []struct {
		name string
		in   table.Value
		want any
	}{
		{name: "null", in: table.Null(table.KindInteger), want: nil},
		{name: "text", in: table.Text("Não informado"), want: "Não informado"},
		{name: "integer", in: table.Integer(1), want: int64(1)},
		{name: "decimal", in: table.Decimal(0.5), want: 0.5},
		{name: "date", in: table.Date(ts), want: "2024-03-05"},
		{name: "time", in: table.TimeOfDay(ts), want: "07:08:09"},
		{name: "timestamp", in: table.Timestamp(ts), want: "2024-03-05 07:08:09"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, copyValue(tt.in))
		})
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, _, err := NewRepository(context.Background(), Config{DSN: "  "})
	assert.Error(t, err)
}

func TestEnsureSchema_InMemoryIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newRepo(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, r.EnsureSchema(ctx, "grupos_vulneraveis"))
	require.NoError(t, r.EnsureSchema(ctx, "grupos_vulneraveis"))
	require.NoError(t, r.EnsureSchema(ctx, "main"))

	dbs, err := r.attached(ctx)
	require.NoError(t, err)
	assert.Contains(t, dbs, "grupos_vulneraveis")
	assert.Contains(t, dbs, "main")
}

func TestReplaceTable_ReplacesSnapshot(t *testing.T) {
	t.Parallel()

	r := newRepo(t, ":memory:")
	ctx := context.Background()
	require.NoError(t, r.EnsureSchema(ctx, "gv"))

	n, err := r.ReplaceTable(ctx, "gv", "todos", sample(t, "a", "b", "c", "d", "e"))
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = r.ReplaceTable(ctx, "gv", "todos", sample(t, "x", "y"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 2, countRows(t, r, `"gv"."todos"`))

	var (
		title, day, clock string
		victims           int64
	)
	require.NoError(t, r.db.QueryRow(
		`SELECT titulo, vitimas, data_com, hora_com FROM "gv"."todos" ORDER BY vitimas LIMIT 1`,
	).Scan(&title, &victims, &day, &clock))
	assert.Equal(t, "x", title)
	assert.EqualValues(t, 1, victims)
	assert.Equal(t, "2024-02-29", day)
	assert.Equal(t, "23:59:00", clock)
}

func TestReplaceTable_RollsBackOnError(t *testing.T) {
	t.Parallel()

	r := newRepo(t, ":memory:")
	ctx := context.Background()

	_, err := r.ReplaceTable(ctx, "main", "todos", sample(t, "keep"))
	require.NoError(t, err)

	// A short row fails the insert after DROP and CREATE already ran.
	bad := sample(t, "x", "y")
	bad.Rows[1] = bad.Rows[1][:2]
	_, err = r.ReplaceTable(ctx, "main", "todos", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row length 2")

	assert.Equal(t, 1, countRows(t, r, `"main"."todos"`))
}

func TestLoad_FileBackedIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dsn := filepath.Join(dir, "ispetl.db")
	cfg := storage.Config{Kind: "sqlite", DSN: dsn, BatchSize: 2}
	dest := storage.Destination{Schema: "grupos_vulneraveis", Table: "todos"}
	tb := sample(t, "a", "b", "c")

	first := storage.Load(context.Background(), cfg, dest, tb)
	require.NoError(t, first.Err)
	assert.Equal(t, storage.SuccessMessage, first.Message())

	second := storage.Load(context.Background(), cfg, dest, tb)
	require.NoError(t, second.Err)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.FileExists(t, filepath.Join(dir, "grupos_vulneraveis.db"))

	r := newRepo(t, dsn)
	require.NoError(t, r.EnsureSchema(context.Background(), "grupos_vulneraveis"))
	assert.Equal(t, 3, countRows(t, r, `"grupos_vulneraveis"."todos"`))
}

func TestLoad_UnreachableStoreReportsFailure(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "missing", "dir", "ispetl.db")
	var res storage.Result
	assert.NotPanics(t, func() {
		res = storage.Load(context.Background(),
			storage.Config{Kind: "sqlite", DSN: dsn},
			storage.Destination{Schema: "gv", Table: "todos"},
			sample(t, "a"))
	})

	require.Error(t, res.Err)
	assert.Contains(t, res.Message(), storage.FailurePrefix)
	assert.Contains(t, res.Message(), "sqlite")
}
