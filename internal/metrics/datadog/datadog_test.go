package datadog

import (
	"testing"

	"github.com/DataDog/datadog-go/v5/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ispetl/internal/metrics"
)

// recorder captures statsd calls; embedding the no-op client covers the rest
// of statsd.ClientInterface.
type recorder struct {
	statsd.NoOpClient
	counts  map[string]int64
	gauges  map[string]float64
	hists   map[string]float64
	lastTag []string
	flushed int
	closed  bool
}

func newRecorder() *recorder {
	return &recorder{counts: map[string]int64{}, gauges: map[string]float64{}, hists: map[string]float64{}}
}

func (r *recorder) Count(name string, value int64, tags []string, _ float64) error {
	r.counts[name] += value
	r.lastTag = tags
	return nil
}

func (r *recorder) Gauge(name string, value float64, tags []string, _ float64) error {
	r.gauges[name] = value
	r.lastTag = tags
	return nil
}

func (r *recorder) Histogram(name string, value float64, tags []string, _ float64) error {
	r.hists[name] += value
	r.lastTag = tags
	return nil
}

func (r *recorder) Flush() error {
	r.flushed++
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend(Config{})
	assert.Error(t, err)

	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "isp.", GlobalTags: []string{"env:test"}})
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.NoError(t, b.Flush())
	assert.NoError(t, b.Close())
}

func TestBackend_Forwards(t *testing.T) {
	t.Parallel()

	rec := newRecorder()
	b := &Backend{client: rec}

	b.IncCounter(metrics.RowsTotal, 7, metrics.Labels{"kind": "loaded", "job": "gv"})
	assert.EqualValues(t, 7, rec.counts[metrics.RowsTotal])
	assert.Equal(t, []string{"job:gv", "kind:loaded"}, rec.lastTag)

	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "load"})
	assert.Equal(t, 0.25, rec.hists[metrics.StepDuration])

	b.SetGauge(metrics.LastSuccessTime, 1700000000, nil)
	assert.Equal(t, float64(1700000000), rec.gauges[metrics.LastSuccessTime])
	assert.Nil(t, rec.lastTag)

	require.NoError(t, b.Flush())
	require.NoError(t, b.Flush())
	assert.Equal(t, 2, rec.flushed)
	assert.False(t, rec.closed)

	require.NoError(t, b.Close())
	assert.True(t, rec.closed)
}

func TestBackend_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	b.SetGauge("x", 1, nil)
	assert.NoError(t, b.Flush())
	assert.NoError(t, b.Close())
}
