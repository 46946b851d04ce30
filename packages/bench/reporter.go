package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// Reporter handles output for benchmark runs
type Reporter struct {
	writer  io.Writer
	noColor bool

	green *color.Color
	red   *color.Color
	cyan  *color.Color
	bold  *color.Color
	dim   *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.noColor {
		color.NoColor = true
	}
	r.green = color.New(color.FgGreen)
	r.red = color.New(color.FgRed)
	r.cyan = color.New(color.FgCyan)
	r.bold = color.New(color.Bold)
	r.dim = color.New(color.Faint)

	return r
}

// Header prints the run header
func (r *Reporter) Header(version, target string, config *Config) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "hitget bench %s\n", version)
	r.cyan.Fprintf(r.writer, "Target: %s\n", target)

	line := fmt.Sprintf("%d requests, concurrency %d", config.Requests, config.Concurrency)
	if config.Rate > 0 {
		line += fmt.Sprintf(", %.1f req/s", config.Rate)
	}
	if config.Duration > 0 {
		line += ", max " + config.Duration.String()
	}
	r.dim.Fprintln(r.writer, line)
	fmt.Fprintln(r.writer)
}

// Summary prints the final summary and threshold results
func (r *Reporter) Summary(s *Summary, thresholds []ThresholdResult) {
	r.bold.Fprintln(r.writer, "Summary")
	fmt.Fprintf(r.writer, "  Duration:   %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(r.writer, "  Requests:   %d (%.1f req/s)\n", s.TotalRequests, s.RPS)
	fmt.Fprintf(r.writer, "  Succeeded:  %s\n", r.green.Sprintf("%d", s.SuccessCount))
	if s.ErrorCount > 0 {
		fmt.Fprintf(r.writer, "  Failed:     %s (%.2f%%)\n", r.red.Sprintf("%d", s.ErrorCount), s.ErrorRate*100)
	} else {
		fmt.Fprintf(r.writer, "  Failed:     0\n")
	}
	fmt.Fprintf(r.writer, "  Received:   %d bytes\n", s.BytesReceived)
	fmt.Fprintln(r.writer)

	r.bold.Fprintln(r.writer, "Latency")
	fmt.Fprintf(r.writer, "  min %s  mean %s  p50 %s  p95 %s  p99 %s  max %s\n",
		formatDuration(s.Min), formatDuration(s.Mean), formatDuration(s.P50),
		formatDuration(s.P95), formatDuration(s.P99), formatDuration(s.Max))
	fmt.Fprintln(r.writer)

	if len(s.StatusCounts) > 0 {
		r.bold.Fprintln(r.writer, "Status codes")
		for _, sc := range s.StatusCounts {
			c := r.green
			if sc.Status >= 400 {
				c = r.red
			}
			fmt.Fprintf(r.writer, "  %s  %d\n", c.Sprintf("%d", sc.Status), sc.Count)
		}
		fmt.Fprintln(r.writer)
	}

	if len(s.ErrorCounts) > 0 {
		r.bold.Fprintln(r.writer, "Errors")
		for _, ec := range s.ErrorCounts {
			fmt.Fprintf(r.writer, "  %s  %d\n", r.red.Sprint(ec.Kind), ec.Count)
		}
		fmt.Fprintln(r.writer)
	}

	if len(thresholds) > 0 {
		r.bold.Fprintln(r.writer, "Thresholds")
		for _, t := range thresholds {
			mark := r.green.Sprint("✓")
			if !t.Passed {
				mark = r.red.Sprint("✗")
			}
			fmt.Fprintf(r.writer, "  %s %s %s (actual %s)\n", mark, t.Name, t.Expected, t.Actual)
		}
		fmt.Fprintln(r.writer)
	}
}

// JSON writes the summary and threshold results as JSON
func (r *Reporter) JSON(s *Summary, thresholds []ThresholdResult) error {
	out := struct {
		Summary    *Summary          `json:"summary"`
		Thresholds []ThresholdResult `json:"thresholds,omitempty"`
	}{s, thresholds}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
