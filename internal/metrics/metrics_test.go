package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	gauges     []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) SetGauge(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gauges = append(f.gauges, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps the global backend for the duration of a test. Tests using
// it are not parallel.
func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := current()
	t.Cleanup(func() {
		mu.Lock()
		backend = orig
		mu.Unlock()
	})
	fb := &fakeBackend{}
	SetBackend(fb)
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("gv", "extract", nil, 2*time.Second)
	RecordStep("gv", "load", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, call{StepTotal, 1, Labels{"job": "gv", "step": "extract", "status": "success"}}, fb.counters[0])
	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, StepDuration, fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 0.001)
	assert.InDelta(t, 1.5, fb.histograms[1].value, 0.001)
}

func TestRecordRows(t *testing.T) {
	fb := install(t)

	RecordRows("gv", RowsExtracted, 3)
	RecordRows("gv", RowsExtracted, 0) // ignored
	RecordRows("gv", RowsLoaded, 5)

	require.Len(t, fb.counters, 2)
	assert.Equal(t, call{RowsTotal, 3, Labels{"job": "gv", "kind": RowsExtracted}}, fb.counters[0])
	assert.Equal(t, call{RowsTotal, 5, Labels{"job": "gv", "kind": RowsLoaded}}, fb.counters[1])
}

func TestRecordSuccess(t *testing.T) {
	fb := install(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	RecordSuccess("gv", at)

	require.Len(t, fb.gauges, 1)
	assert.Equal(t, LastSuccessTime, fb.gauges[0].name)
	assert.Equal(t, float64(at.Unix()), fb.gauges[0].value)
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := install(t)

	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushCount)

	// SetBackend(nil) should not nil out the backend.
	SetBackend(nil)
	assert.Same(t, fb, current())
}

func TestNopBackend(t *testing.T) {
	var b Backend = nopBackend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	b.SetGauge("x", 1, nil)
	assert.NoError(t, b.Flush())
}
