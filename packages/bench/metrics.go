package bench

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
)

const (
	// histogram range in microseconds: 1us to 60s
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects and aggregates benchmark metrics
type Metrics struct {
	mu sync.Mutex

	totalRequests   atomic.Int64
	successRequests atomic.Int64
	errorRequests   atomic.Int64
	bytesReceived   atomic.Int64

	// Latency histogram (in microseconds for precision)
	histogram *hdrhistogram.Histogram

	statusCounts map[uint16]int64
	errorCounts  map[string]int64

	startTime time.Time
	endTime   time.Time
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		histogram:    hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statusCounts: make(map[uint16]int64),
		errorCounts:  make(map[string]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.startTime = time.Now()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.endTime = time.Now()
}

// RecordResponse records a completed GET
func (m *Metrics) RecordResponse(status uint16, size int, duration time.Duration) {
	m.totalRequests.Add(1)
	m.successRequests.Add(1)
	m.bytesReceived.Add(int64(size))

	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.histogram.RecordValue(clampLatency(duration))
	m.statusCounts[status]++
}

// RecordError records a failed GET. Failures are grouped by error kind.
func (m *Metrics) RecordError(err error, duration time.Duration) {
	m.totalRequests.Add(1)
	m.errorRequests.Add(1)

	key := "other"
	if kind, ok := errs.KindOf(err); ok {
		key = kind.String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_ = m.histogram.RecordValue(clampLatency(duration))
	m.errorCounts[key]++
}

func clampLatency(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minLatencyUs {
		return minLatencyUs
	}
	if us > maxLatencyUs {
		return maxLatencyUs
	}
	return us
}

// Summary is the final metrics summary
type Summary struct {
	Duration      time.Duration
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	BytesReceived int64

	RPS         float64
	SuccessRate float64
	ErrorRate   float64

	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration

	StatusCounts []StatusCount
	ErrorCounts  []ErrorCount
}

type StatusCount struct {
	Status uint16
	Count  int64
}

type ErrorCount struct {
	Kind  string
	Count int64
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	total := m.totalRequests.Load()
	success := m.successRequests.Load()
	failures := m.errorRequests.Load()

	s := &Summary{
		Duration:      duration,
		TotalRequests: total,
		SuccessCount:  success,
		ErrorCount:    failures,
		BytesReceived: m.bytesReceived.Load(),
		P50:           usToDuration(m.histogram.ValueAtQuantile(50)),
		P95:           usToDuration(m.histogram.ValueAtQuantile(95)),
		P99:           usToDuration(m.histogram.ValueAtQuantile(99)),
		Min:           usToDuration(m.histogram.Min()),
		Max:           usToDuration(m.histogram.Max()),
		Mean:          time.Duration(m.histogram.Mean() * float64(time.Microsecond)),
		StdDev:        time.Duration(m.histogram.StdDev() * float64(time.Microsecond)),
	}

	if duration.Seconds() > 0 {
		s.RPS = float64(total) / duration.Seconds()
	}
	if total > 0 {
		s.SuccessRate = float64(success) / float64(total)
		s.ErrorRate = float64(failures) / float64(total)
	}

	for status, count := range m.statusCounts {
		s.StatusCounts = append(s.StatusCounts, StatusCount{Status: status, Count: count})
	}
	sort.Slice(s.StatusCounts, func(i, j int) bool {
		return s.StatusCounts[i].Status < s.StatusCounts[j].Status
	})

	for kind, count := range m.errorCounts {
		s.ErrorCounts = append(s.ErrorCounts, ErrorCount{Kind: kind, Count: count})
	}
	sort.Slice(s.ErrorCounts, func(i, j int) bool {
		if s.ErrorCounts[i].Count != s.ErrorCounts[j].Count {
			return s.ErrorCounts[i].Count > s.ErrorCounts[j].Count
		}
		return s.ErrorCounts[i].Kind < s.ErrorCounts[j].Kind
	})

	return s
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
