// Package extract reads the two extracts and merges them into one record
// table: every row of the first source, then every row of the second, each
// in file order. Both sources are downloaded and parsed concurrently.
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"ispetl/internal/config"
	"ispetl/internal/datasource"
	"ispetl/internal/logger"
	"ispetl/internal/parser"
	pcsv "ispetl/internal/parser/csv"
	"ispetl/internal/table"
)

// ErrHeaderMismatch is returned when the extracts do not share a column set.
var ErrHeaderMismatch = errors.New("extracts have different columns")

// Extractor merges a fixed list of sources.
type Extractor struct {
	sources []datasource.Source
	parser  parser.Parser
	na      table.NASet
}

// New wires sources and the CSV parser from the pipeline config.
func New(p config.Pipeline) (*Extractor, error) {
	srcs := make([]datasource.Source, 0, len(p.Sources))
	for i, s := range p.Sources {
		ds, err := datasource.New(s)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		srcs = append(srcs, ds)
	}
	pr, err := pcsv.NewParser(pcsv.OptionsFrom(p.Parser.Options))
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return NewWith(srcs, pr, table.NewNASet(p.Parser.Options.StringSlice("na_values"))), nil
}

// NewWith builds an Extractor from explicit parts. A nil na uses the default
// missing-value tokens.
func NewWith(sources []datasource.Source, pr parser.Parser, na table.NASet) *Extractor {
	if na == nil {
		na = table.NewNASet(nil)
	}
	return &Extractor{sources: sources, parser: pr, na: na}
}

// Sources returns the configured sources in concatenation order.
func (e *Extractor) Sources() []datasource.Source { return e.sources }

// Extract reads every source and returns the merged table. Column kinds are
// inferred once over the merged text, so a column that is integral in one
// extract and fractional in the other becomes decimal.
func (e *Extractor) Extract(ctx context.Context) (*table.Table, error) {
	if len(e.sources) == 0 {
		return nil, errors.New("extract: no sources configured")
	}
	start := time.Now()
	log := logger.From(ctx)

	raws := make([]*parser.Raw, len(e.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range e.sources {
		g.Go(func() error {
			raw, err := e.read(gctx, src)
			if err != nil {
				return err
			}
			raws[i] = raw
			log.Info().Str("source", src.Name()).Int("rows", len(raw.Rows)).Msg("extract read")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	header := raws[0].Header
	var rows [][]string
	var origins []table.Origin
	for _, raw := range raws {
		aligned, err := align(header, raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, aligned...)
		for _, ln := range raw.Lines {
			origins = append(origins, table.Origin{Source: raw.Source, Line: ln})
		}
	}

	t := table.FromText(header, rows, origins, e.na)
	log.Info().
		Int("rows", t.Len()).
		Int("columns", len(t.Columns)).
		Dur("elapsed", time.Since(start)).
		Msg("extracts merged")
	return t, nil
}

func (e *Extractor) read(ctx context.Context, src datasource.Source) (*parser.Raw, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", src.Name(), err)
	}
	defer rc.Close()

	raw, err := e.parser.Parse(contextReader{ctx: ctx, r: rc}, src.Name())
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return raw, nil
}

// align reorders raw's rows to header. The column sets must be equal.
func align(header []string, raw *parser.Raw) ([][]string, error) {
	if slices.Equal(header, raw.Header) {
		return raw.Rows, nil
	}
	if len(header) != len(raw.Header) {
		return nil, fmt.Errorf("%s: %w: %d columns, want %d", raw.Source, ErrHeaderMismatch, len(raw.Header), len(header))
	}
	pos := make(map[string]int, len(raw.Header))
	for i, h := range raw.Header {
		pos[h] = i
	}
	idx := make([]int, len(header))
	for i, h := range header {
		j, ok := pos[h]
		if !ok {
			return nil, fmt.Errorf("%s: %w: missing %q", raw.Source, ErrHeaderMismatch, h)
		}
		idx[i] = j
	}
	out := make([][]string, len(raw.Rows))
	for r, row := range raw.Rows {
		re := make([]string, len(idx))
		for i, j := range idx {
			re[i] = row[j]
		}
		out[r] = re
	}
	return out, nil
}

// contextReader stops a long parse once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
