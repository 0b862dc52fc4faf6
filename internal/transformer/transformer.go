// Package transformer runs ordered, column-level steps over a record table.
// Steps mutate the table in place. The first failing step stops the chain,
// so a table either passes every step or is never handed on.
package transformer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ispetl/internal/logger"
	"ispetl/internal/table"
)

// Step is one named transformation. Apply returns a short human-readable
// note describing what it did (e.g. "column 'ano_fato' added").
type Step interface {
	Name() string
	Apply(t *table.Table) (string, error)
}

// Chain is an ordered list of steps.
type Chain []Step

// Apply runs every step in order and logs one line per step.
func (c Chain) Apply(ctx context.Context, t *table.Table) error {
	log := logger.From(ctx)
	for _, s := range c {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		note, err := s.Apply(t)
		if err != nil {
			return fmt.Errorf("step %s: %w", s.Name(), err)
		}
		log.Info().Str("step", s.Name()).Dur("elapsed", time.Since(start)).Msg(note)
	}
	return nil
}

// Names lists the step names in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Name()
	}
	return out
}

// ErrMissingValue marks a required cell that holds no value.
var ErrMissingValue = errors.New("missing value")

// ParseError reports a cell that a step could not interpret. It is fatal for
// the run.
type ParseError struct {
	Column string
	Row    int
	Origin table.Origin
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrMissingValue) {
		return fmt.Sprintf("%s: column %q row %d: %v", e.Origin, e.Column, e.Row, e.Err)
	}
	return fmt.Sprintf("%s: column %q row %d: cannot parse %q: %v", e.Origin, e.Column, e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
