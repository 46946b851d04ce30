package bench

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okFetch(status uint16) FetchFunc {
	return func(ctx context.Context, u *url.URL) (*http.Exchange, error) {
		return &http.Exchange{
			URL:      u,
			Response: &http.Response{Version: "HTTP/1.1", StatusCode: status, Reason: "OK"},
			Size:     100,
			Duration: time.Millisecond,
		}, nil
	}
}

func TestRunner_Run(t *testing.T) {
	config := &Config{Requests: 50, Concurrency: 5}
	runner := NewRunner(config, okFetch(200))

	summary, err := runner.Run(context.Background(), "http://example.com/")
	require.NoError(t, err)

	assert.Equal(t, int64(50), summary.TotalRequests)
	assert.Equal(t, int64(50), summary.SuccessCount)
	assert.Equal(t, int64(0), summary.ErrorCount)
	assert.Equal(t, int64(5000), summary.BytesReceived)
	assert.Equal(t, []StatusCount{{Status: 200, Count: 50}}, summary.StatusCounts)
}

func TestRunner_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	fetch := func(ctx context.Context, u *url.URL) (*http.Exchange, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return okFetch(200)(ctx, u)
	}

	runner := NewRunner(&Config{Requests: 30, Concurrency: 3}, fetch)
	_, err := runner.Run(context.Background(), "http://example.com/")
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunner_RecordsErrorsByKind(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, u *url.URL) (*http.Exchange, error) {
		if calls.Add(1)%2 == 0 {
			return nil, errs.Transport(errs.ConnectFailed, u.Address(), errors.New("refused"))
		}
		return okFetch(503)(ctx, u)
	}

	runner := NewRunner(&Config{Requests: 10, Concurrency: 1}, fetch)
	summary, err := runner.Run(context.Background(), "http://example.com/")
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalRequests)
	assert.Equal(t, int64(5), summary.ErrorCount)
	assert.InDelta(t, 0.5, summary.ErrorRate, 0.001)
	assert.Equal(t, []ErrorCount{{Kind: "connect failed", Count: 5}}, summary.ErrorCounts)
	assert.Equal(t, []StatusCount{{Status: 503, Count: 5}}, summary.StatusCounts)
}

func TestRunner_InvalidURL(t *testing.T) {
	var calls atomic.Int32
	fetch := func(ctx context.Context, u *url.URL) (*http.Exchange, error) {
		calls.Add(1)
		return nil, nil
	}

	runner := NewRunner(DefaultConfig(), fetch)
	_, err := runner.Run(context.Background(), "https://example.com/")
	assert.True(t, errors.Is(err, errs.UnsupportedScheme))
	assert.Equal(t, int32(0), calls.Load())
}

func TestRunner_InvalidConfig(t *testing.T) {
	runner := NewRunner(&Config{Requests: 0, Concurrency: 1}, okFetch(200))
	_, err := runner.Run(context.Background(), "http://example.com/")
	assert.Error(t, err)
}

func TestRunner_DurationStopsEarly(t *testing.T) {
	fetch := func(ctx context.Context, u *url.URL) (*http.Exchange, error) {
		time.Sleep(2 * time.Millisecond)
		return okFetch(200)(ctx, u)
	}

	runner := NewRunner(&Config{Requests: 1_000_000, Concurrency: 1, Duration: 50 * time.Millisecond}, fetch)
	summary, err := runner.Run(context.Background(), "http://example.com/")
	require.NoError(t, err)
	assert.Less(t, summary.TotalRequests, int64(1_000_000))
	assert.Greater(t, summary.TotalRequests, int64(0))
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(DefaultConfig(), okFetch(200))
	_, err := runner.Run(ctx, "http://example.com/")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_Progress(t *testing.T) {
	var last int64
	runner := NewRunner(&Config{Requests: 7, Concurrency: 2}, okFetch(200), WithProgress(func(done int64) {
		last = done
	}))

	_, err := runner.Run(context.Background(), "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, int64(7), last)
}

func TestReporter_Summary(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(WithWriter(&buf), WithNoColor(true))

	m := NewMetrics()
	m.Start()
	m.RecordResponse(200, 10, 3*time.Millisecond)
	m.RecordResponse(404, 10, 4*time.Millisecond)
	m.RecordError(errs.Transport(errs.ReceiveFailed, "x:80", nil), time.Millisecond)
	m.Stop()
	summary := m.GetSummary()

	th := Thresholds{ErrorRate: 0.01}
	reporter.Header("dev", "http://example.com/", &Config{Requests: 3, Concurrency: 1, Rate: 5})
	reporter.Summary(summary, th.Evaluate(summary))

	out := buf.String()
	assert.Contains(t, out, "hitget bench dev")
	assert.Contains(t, out, "Target: http://example.com/")
	assert.Contains(t, out, "5.0 req/s")
	assert.Contains(t, out, "Requests:   3")
	assert.Contains(t, out, "404  1")
	assert.Contains(t, out, "receive failed  1")
	assert.Contains(t, out, "✗ errors")
}

func TestReporter_JSON(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewReporter(WithWriter(&buf), WithNoColor(true))

	m := NewMetrics()
	m.Start()
	m.RecordResponse(200, 10, time.Millisecond)
	m.Stop()

	require.NoError(t, reporter.JSON(m.GetSummary(), nil))
	assert.Contains(t, buf.String(), `"TotalRequests": 1`)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250µs", formatDuration(250*time.Microsecond))
	assert.Equal(t, "12.5ms", formatDuration(12500*time.Microsecond))
	assert.Equal(t, "1.50s", formatDuration(1500*time.Millisecond))
}
