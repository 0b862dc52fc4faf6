package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"ispetl/internal/logger"
)

// defaultDebounce coalesces the burst of events a single copy produces.
const defaultDebounce = 2 * time.Second

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct{ l *zerolog.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

// runScheduled runs job on every tick of spec until ctx is done. A tick that
// fires while the previous run is still going is skipped.
func runScheduled(ctx context.Context, spec string, job func(context.Context)) error {
	log := logger.From(ctx)
	cl := cronLogger{l: log}

	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	c.Start()
	for _, e := range c.Entries() {
		log.Info().Str("schedule", spec).Time("next", e.Next).Msg("scheduler started")
	}

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
	return ctx.Err()
}

// runWatch runs job once, then again whenever one of paths is written,
// created or renamed into place. Events within debounce of each other
// trigger one run, and runs never overlap.
func runWatch(ctx context.Context, paths []string, debounce time.Duration, job func(context.Context)) error {
	log := logger.From(ctx)
	if len(paths) == 0 {
		return fmt.Errorf("watch: no file sources to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	// Watch the directories: editors and downloaders replace files by rename,
	// which drops a watch placed on the file itself.
	targets := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		targets[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}

	trigger := make(chan struct{}, 1)
	fire := func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-trigger:
				job(ctx)
			}
		}
	}()
	fire()

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		wg.Wait()
	}()

	log.Info().Strs("paths", paths).Dur("debounce", debounce).Msg("watching extracts")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, hit := targets[filepath.Clean(ev.Name)]; !hit {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("extract changed")
			mu.Lock()
			if timer == nil {
				timer = time.AfterFunc(debounce, fire)
			} else {
				timer.Reset(debounce)
			}
			mu.Unlock()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}
