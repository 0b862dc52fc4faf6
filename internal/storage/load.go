package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ispetl/internal/logger"
	"ispetl/internal/table"
)

// Outcome messages printed at the end of every load.
const (
	SuccessMessage = ">> Ingestão de dados concluída com sucesso <<"
	FailurePrefix  = "Erro ao fazer a ingestão de dados no banco de dados: "
)

// Destination identifies the target table.
type Destination struct {
	Schema string
	Table  string
}

func (d Destination) String() string { return d.Schema + "." + d.Table }

// Result is the outcome of Load. Err is nil on success.
type Result struct {
	Destination Destination
	Rows        int64
	Fingerprint string
	Elapsed     time.Duration
	Err         error
}

// OK reports whether the load succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message renders the human-readable outcome line.
func (r Result) Message() string {
	if r.Err != nil {
		return FailurePrefix + r.Err.Error()
	}
	return SuccessMessage
}

// ErrPanic marks a backend panic converted to an error.
var ErrPanic = errors.New("storage backend panicked")

// Load writes t to dest in two phases: the schema is ensured and committed
// on its own, then the table is replaced wholesale. Failures are reported in
// Result.Err and logged; Load itself never panics. The repository is closed
// on every path.
func Load(ctx context.Context, cfg Config, dest Destination, t *table.Table) (res Result) {
	start := time.Now()
	ctx = logger.With(ctx, map[string]any{"storage": cfg.Kind})
	log := logger.From(ctx)
	res.Destination = dest

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("%w: %v", ErrPanic, p)
		}
		res.Elapsed = time.Since(start)
		if res.Err != nil {
			log.Error().Err(res.Err).Str("destination", dest.String()).Msg(res.Message())
			return
		}
		log.Info().
			Str("destination", dest.String()).
			Int64("rows", res.Rows).
			Str("fingerprint", res.Fingerprint).
			Dur("elapsed", res.Elapsed).
			Msg(res.Message())
	}()

	repo, err := New(ctx, cfg)
	if err != nil {
		res.Err = fmt.Errorf("connect %s: %w", cfg.Kind, err)
		return res
	}
	defer func() {
		repo.Close()
		log.Info().Msg("connection closed")
	}()

	if err := repo.EnsureSchema(ctx, dest.Schema); err != nil {
		res.Err = fmt.Errorf("ensure schema %s: %w", dest.Schema, err)
		return res
	}
	log.Info().Str("schema", dest.Schema).Msg("schema ready")

	n, err := repo.ReplaceTable(ctx, dest.Schema, dest.Table, t)
	if err != nil {
		res.Err = fmt.Errorf("replace table %s: %w", dest, err)
		return res
	}
	res.Rows = n
	log.Info().Str("table", dest.String()).Int64("rows", n).Msg("table written")

	res.Fingerprint = Fingerprint(t)
	return res
}
