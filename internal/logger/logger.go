// Package logger wires zerolog for the pipeline. A process-wide logger is
// configured once with Init; per-run loggers travel in the context and carry
// run_id and job so every milestone line of one run can be correlated.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures Init.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", ...). Empty means info.
	Level string
	// Console renders human-friendly lines instead of JSON.
	Console bool
	// File, when set, receives a copy of every line (appended).
	File string
	// Out overrides the primary writer (stderr). Used by tests.
	Out io.Writer
}

var (
	mu     sync.RWMutex
	global = zerolog.New(os.Stderr).With().Timestamp().Logger()
	closer io.Closer
)

// Init configures the global logger. It may be called more than once; the
// previous log file, if any, is closed.
func Init(opts Options) error {
	lvl := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return fmt.Errorf("log level %q: %w", opts.Level, err)
		}
		lvl = l
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{out}
	var f *os.File
	if opts.File != "" {
		var err error
		f, err = os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
	if f != nil {
		closer = f
	}
	global = l
	log.Logger = l
	mu.Unlock()
	return nil
}

// L returns the global logger.
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := global
	return &l
}

// NewRunID returns a fresh identifier for one pipeline run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRun returns a context whose logger carries run_id and job.
func WithRun(ctx context.Context, runID, job string) context.Context {
	l := L().With().Str("run_id", runID).Str("job", job).Logger()
	return l.WithContext(ctx)
}

// With returns a context whose logger is the context logger plus fields.
func With(ctx context.Context, fields map[string]any) context.Context {
	l := From(ctx).With().Fields(fields).Logger()
	return l.WithContext(ctx)
}

// From returns the logger stored in ctx, falling back to the global logger.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return L()
}
