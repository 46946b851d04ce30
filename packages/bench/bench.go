// Package bench repeats a GET against one URL and reports latency
// percentiles, status distribution and failure kinds.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/url"
)

// FetchFunc performs one GET. (*http.Client).Fetch satisfies it.
type FetchFunc func(ctx context.Context, u *url.URL) (*http.Exchange, error)

// Runner executes a benchmark
type Runner struct {
	config    *Config
	fetch     FetchFunc
	scheduler *Scheduler
	metrics   *Metrics
	progress  func(done int64)
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithProgress registers a callback invoked after every completed GET
func WithProgress(fn func(done int64)) RunnerOption {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a new benchmark runner
func NewRunner(config *Config, fetch FetchFunc, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:    config,
		fetch:     fetch,
		scheduler: NewScheduler(config),
		metrics:   NewMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sends the configured number of GETs to rawURL. The URL is parsed once
// up front, so a bad URL fails before anything is sent. Cancelling ctx or
// reaching the configured duration stops scheduling new requests; the
// summary covers what completed.
func (r *Runner) Run(ctx context.Context, rawURL string) (*Summary, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	if r.config.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Duration)
		defer cancel()
	}

	var (
		wg   sync.WaitGroup
		done int64
		mu   sync.Mutex
	)

	r.metrics.Start()
	for i := 0; i < r.config.Requests; i++ {
		if err := r.scheduler.Wait(ctx); err != nil {
			break
		}
		if err := r.scheduler.Acquire(ctx); err != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer r.scheduler.Release()

			start := time.Now()
			ex, err := r.fetch(ctx, u)
			if err != nil {
				// cut off by cancellation or the run duration
				if ctx.Err() != nil {
					return
				}
				r.metrics.RecordError(err, time.Since(start))
			} else {
				r.metrics.RecordResponse(ex.Response.StatusCode, ex.Size, ex.Duration)
			}

			if r.progress != nil {
				mu.Lock()
				done++
				r.progress(done)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	r.metrics.Stop()

	summary := r.metrics.GetSummary()
	if summary.TotalRequests == 0 {
		if ctx.Err() != nil {
			return summary, fmt.Errorf("no requests completed: %w", ctx.Err())
		}
		return summary, errors.New("no requests completed")
	}
	return summary, nil
}

// Metrics exposes the collector, mainly for reporting
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}
