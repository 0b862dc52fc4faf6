package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ispetl/internal/config"
	"ispetl/internal/datasource/file"
	"ispetl/internal/extract"
	"ispetl/internal/logger"
	"ispetl/internal/metrics"
	"ispetl/internal/storage"
	"ispetl/internal/table"
	"ispetl/internal/transformer/builtin"
)

// previewRows is how many normalized rows are logged at debug level.
const previewRows = 5

// runner executes extract, normalize and load for one pipeline.
type runner struct {
	p         config.Pipeline
	extractor *extract.Extractor
	normalize builtin.Options
	store     storage.Config
	dest      storage.Destination
	timeout   time.Duration
}

func newRunner(p config.Pipeline, creds config.Credentials) (*runner, error) {
	ex, err := extract.New(p)
	if err != nil {
		return nil, err
	}
	opts, err := builtin.OptionsFrom(p.Normalize)
	if err != nil {
		return nil, err
	}
	timeout, err := p.Runtime.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return &runner{
		p:         p,
		extractor: ex,
		normalize: opts,
		store: storage.Config{
			Kind:      p.Storage.Kind,
			DSN:       config.ResolveDSN(p.Storage, creds),
			BatchSize: p.Storage.DB.BatchSize,
		},
		dest:    storage.Destination{Schema: p.Storage.DB.Schema, Table: p.Storage.DB.Table},
		timeout: timeout,
	}, nil
}

// run performs one full pipeline run. Metrics are flushed before it returns.
func (r *runner) run(ctx context.Context) error {
	ctx = logger.WithRun(ctx, logger.NewRunID(), r.p.Job)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	log := logger.From(ctx)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush")
		}
	}()

	log.Info().
		Int("sources", len(r.p.Sources)).
		Str("storage", r.store.Kind).
		Str("destination", r.dest.String()).
		Msg("run started")
	start := time.Now()

	t, err := r.extract(ctx)
	if err != nil {
		log.Error().Err(err).Msg("extract failed")
		return err
	}

	if err := r.transform(ctx, t); err != nil {
		log.Error().Err(err).Msg("normalize failed")
		return err
	}
	preview(log, t, previewRows)

	res := r.load(ctx, t)
	if res.Err != nil {
		return res.Err
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("run finished")
	return nil
}

// runLogged adapts run for the scheduler and the watcher, which only log.
func (r *runner) runLogged(ctx context.Context) {
	_ = r.run(ctx)
}

func (r *runner) extract(ctx context.Context) (*table.Table, error) {
	start := time.Now()
	t, err := r.extractor.Extract(ctx)
	metrics.RecordStep(r.p.Job, "extract", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	metrics.RecordRows(r.p.Job, metrics.RowsExtracted, int64(t.Len()))
	return t, nil
}

func (r *runner) transform(ctx context.Context, t *table.Table) error {
	start := time.Now()
	err := builtin.Normalizer(r.normalize).Apply(ctx, t)
	metrics.RecordStep(r.p.Job, "normalize", err, time.Since(start))
	return err
}

func (r *runner) load(ctx context.Context, t *table.Table) storage.Result {
	res := storage.Load(ctx, r.store, r.dest, t)
	metrics.RecordStep(r.p.Job, "load", res.Err, res.Elapsed)
	if res.OK() {
		metrics.RecordRows(r.p.Job, metrics.RowsLoaded, res.Rows)
		metrics.RecordSuccess(r.p.Job, time.Now())
	}
	return res
}

// watchPaths lists the file extracts, the only sources that can be watched.
func (r *runner) watchPaths() []string {
	var out []string
	for _, s := range r.extractor.Sources() {
		if l, ok := s.(*file.Local); ok {
			out = append(out, l.Path())
		}
	}
	return out
}

// preview logs a column/kind summary and the first n rows at debug level.
func preview(log *zerolog.Logger, t *table.Table, n int) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}

	cols := zerolog.Dict()
	for i, c := range t.Columns {
		cols.Str(c.Name, fmt.Sprintf("%s (%d null)", c.Kind, t.NullCount(i)))
	}
	log.Debug().Int("rows", t.Len()).Int("columns", len(t.Columns)).Dict("kinds", cols).Msg("table summary")

	if n > t.Len() {
		n = t.Len()
	}
	for r := 0; r < n; r++ {
		d := zerolog.Dict()
		for i, c := range t.Columns {
			d.Str(c.Name, t.Rows[r][i].String())
		}
		log.Debug().Int("row", r).Str("origin", t.Origin(r).String()).Dict("values", d).Msg("preview")
	}
}
