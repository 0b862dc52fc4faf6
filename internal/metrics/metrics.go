// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the ispetl pipeline.
//
//   - Backend is a narrow interface: counters, timings and gauges.
//   - The global backend defaults to a no-op implementation, so metrics are
//     always safe to call even when no real backend is configured.
//   - Concrete systems (Prometheus Pushgateway, Datadog) live in subpackages,
//     mirroring the storage registry.
package metrics

import (
	"sync"
	"time"
)

// Metric names.
const (
	StepTotal       = "ispetl_step_total"
	StepDuration    = "ispetl_step_duration_seconds"
	RowsTotal       = "ispetl_rows_total"
	LastSuccessTime = "ispetl_last_success_timestamp_seconds"
)

// Row kinds reported through RecordRows.
const (
	RowsExtracted = "extracted"
	RowsLoaded    = "loaded"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge sets a gauge to value.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) SetGauge(string, float64, Labels)         {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of a pipeline step and records its
// duration, labelled with success or failure.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRows adds delta rows of the given kind (RowsExtracted, RowsLoaded).
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordSuccess stamps the time of the last successful load.
func RecordSuccess(job string, at time.Time) {
	current().SetGauge(LastSuccessTime, float64(at.Unix()), Labels{"job": job})
}
