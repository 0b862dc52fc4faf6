// Command ispetl loads the ISP-RJ "grupos vulneráveis" extracts into the
// warehouse: it reads both CSV extracts, normalizes the merged table and
// replaces the destination table wholesale.
//
// Usage:
//
//	ispetl -config configs/pipeline.json [-env-file .env] [-schedule "0 6 * * *"] [-watch]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ispetl/internal/config"
	"ispetl/internal/logger"
	"ispetl/internal/metrics"
	"ispetl/internal/metrics/datadog"
	"ispetl/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "ispetl/internal/storage/all"
)

// options are the parsed command-line flags.
type options struct {
	cfgPath        string
	envFile        string
	metricsBackend string
	pushGatewayURL string
	statsdAddr     string
	logLevel       string
	logFile        string
	logJSON        bool
	validate       bool
	verbose        bool
	schedule       string
	watch          bool
	timeout        time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("ispetl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.cfgPath, "config", "configs/pipeline.json", "pipeline config path (JSON, or YAML by extension)")
	fs.StringVar(&o.envFile, "env-file", ".env", "dotenv file with ISPETL_DB_* credentials (optional)")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: pushgateway, datadog or none (env METRICS_BACKEND)")
	fs.StringVar(&o.pushGatewayURL, "pushgateway-url", "", "Pushgateway base URL (env PUSHGATEWAY_URL)")
	fs.StringVar(&o.statsdAddr, "statsd-addr", "", "DogStatsD address (env DD_DOGSTATSD_URL)")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&o.logFile, "log-file", "", "append log lines to this file as well")
	fs.BoolVar(&o.logJSON, "log-json", false, "emit JSON log lines instead of console output")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.verbose, "v", false, "verbose logs (same as -log-level debug)")
	fs.StringVar(&o.schedule, "schedule", "", "cron expression; keep running and load on every tick")
	fs.BoolVar(&o.watch, "watch", false, "re-run when a file extract changes")
	fs.DurationVar(&o.timeout, "timeout", 0, "bound each run (e.g. 15m); overrides runtime.timeout")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.verbose {
		o.logLevel = "debug"
	}
	return o, nil
}

// run is main without os.Exit, returning the process exit code.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := logger.Init(logger.Options{Level: o.logLevel, Console: !o.logJSON, File: o.logFile, Out: stderr}); err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return 2
	}
	log := logger.L()

	p, err := config.Load(o.cfgPath)
	if err != nil {
		log.Error().Err(err).Str("config", o.cfgPath).Msg("load config")
		return 1
	}
	applyFlagOverrides(&p, o)

	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		ev := log.Warn()
		if iss.Severity == config.SeverityError {
			ev = log.Error()
		}
		ev.Str("path", iss.Path).Msg(iss.Message)
	}
	if config.HasErrors(issues) {
		log.Error().Str("config", o.cfgPath).Msg("configuration is invalid")
		return 1
	}
	if o.validate {
		log.Info().Str("config", o.cfgPath).Msg("configuration is valid")
		return 0
	}

	creds, err := config.LoadCredentials(o.envFile)
	if err != nil {
		log.Error().Err(err).Msg("load credentials")
		return 1
	}

	closeMetrics := setupMetrics(o, p.Job)
	defer closeMetrics()

	r, err := newRunner(p, creds)
	if err != nil {
		log.Error().Err(err).Msg("build pipeline")
		return 1
	}

	switch {
	case p.Runtime.Schedule != "":
		err = runScheduled(ctx, p.Runtime.Schedule, r.runLogged)
	case p.Runtime.Watch:
		err = runWatch(ctx, r.watchPaths(), defaultDebounce, r.runLogged)
	default:
		err = r.run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return 1
	}
	return 0
}

// applyFlagOverrides lets flags win over the runtime section of the file.
func applyFlagOverrides(p *config.Pipeline, o options) {
	if o.schedule != "" {
		p.Runtime.Schedule = o.schedule
	}
	if o.watch {
		p.Runtime.Watch = true
	}
	if o.timeout > 0 {
		p.Runtime.Timeout = o.timeout.String()
	}
}

// setupMetrics installs the selected backend: flag, then env, then none. The
// returned func flushes and releases it.
func setupMetrics(o options, job string) func() {
	log := logger.L()

	name := o.metricsBackend
	if name == "" {
		name = os.Getenv("METRICS_BACKEND")
	}

	switch name {
	case "pushgateway":
		gwURL := firstNonEmpty(o.pushGatewayURL, os.Getenv("PUSHGATEWAY_URL"), "http://localhost:9091")
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Warn().Err(err).Msg("metrics: pushgateway backend unavailable; using nop")
			return func() {}
		}
		log.Info().Str("url", gwURL).Str("job", job).Msg("metrics: pushgateway")
		metrics.SetBackend(b)
		return func() {
			if err := metrics.Flush(); err != nil {
				log.Warn().Err(err).Msg("metrics: flush")
			}
		}

	case "datadog":
		addr := firstNonEmpty(o.statsdAddr, os.Getenv("DD_DOGSTATSD_URL"), "127.0.0.1:8125")
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, GlobalTags: []string{"service:ispetl", "job:" + job}})
		if err != nil {
			log.Warn().Err(err).Msg("metrics: datadog backend unavailable; using nop")
			return func() {}
		}
		log.Info().Str("addr", addr).Msg("metrics: datadog")
		metrics.SetBackend(b)
		return func() {
			if err := b.Close(); err != nil {
				log.Warn().Err(err).Msg("metrics: close")
			}
		}

	case "", "none":
		log.Debug().Msg("metrics: disabled")
		return func() {}

	default:
		log.Warn().Str("backend", name).Msg("metrics: unknown backend; metrics disabled")
		return func() {}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
