package httpds

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noWait records backoff durations without sleeping.
func noWait(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{InsecureSkipVerify: true, MaxRetries: -1})

	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 0, c.maxRetries)
	assert.Equal(t, 250*time.Millisecond, c.initialBackoff)
	assert.Equal(t, 10*time.Second, c.maxBackoff)

	tr, ok := c.httpClient.Transport.(*http.Transport)
	require.True(t, ok, "transport type %T", c.httpClient.Transport)
	require.NotNil(t, tr.TLSClientConfig)
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
}

func TestGet_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "data_fato;idade\n")
	}))
	defer srv.Close()

	var waits []time.Duration
	c := NewClient(Config{MaxRetries: 3, InitialBackoff: 10 * time.Millisecond})
	c.wait = noWait(&waits)

	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, waits)
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := NewClient(Config{MaxRetries: 2})
	c.wait = noWait(&waits)

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempt(s)")
	assert.Contains(t, err.Error(), "retryable status 429")
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
	assert.Len(t, waits, 2)
}

func TestGet_NonRetryableStatusReturnsResponse(t *testing.T) {
	t.Parallel()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{MaxRetries: 5})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestGet_HeaderAndEmptyURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	c := NewClient(Config{Header: http.Header{"User-Agent": {"ispetl"}}})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ispetl", string(b))

	_, err = c.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestGet_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(Config{}).Get(ctx, "http://127.0.0.1:1/")
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestBackoffDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: -1, want: 100 * time.Millisecond},
		{attempt: 0, want: 100 * time.Millisecond},
		{attempt: 1, want: 200 * time.Millisecond},
		{attempt: 3, want: 800 * time.Millisecond},
		{attempt: 4, want: time.Second},
		{attempt: 62, want: time.Second},
	}
	for _, tt := range tests {
		if got := backoffDuration(100*time.Millisecond, tt.attempt, time.Second); got != tt.want {
			t.Fatalf("backoffDuration(attempt=%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestWaitContext(t *testing.T) {
	t.Parallel()

	assert.NoError(t, waitContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, waitContext(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, waitContext(ctx, 0), context.Canceled)
}
