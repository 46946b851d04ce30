package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/assertions"
	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/history"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

// formatValue formats a value for display, truncating or summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(code uint16) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgRed)
	case code >= 300:
		return color.New(color.FgYellow)
	case code >= 200:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// FormatExchange prints one completed GET followed by any check results.
// Headers and the raw request are only shown in verbose mode.
func (f *ConsoleFormatter) FormatExchange(ex *http.Exchange, checks []*assertions.Result) {
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	resp := ex.Response
	fmt.Fprintf(f.writer, "%s %s\n", bold("GET"), ex.URL.String())

	if f.verbose {
		for _, line := range strings.Split(strings.TrimRight(string(ex.Request), "\n"), "\n") {
			fmt.Fprintf(f.writer, "%s\n", dim("> "+line))
		}
	}

	fmt.Fprintf(f.writer, "%s %s\n",
		statusColor(resp.StatusCode).Sprint(resp.Version+" "+resp.Status()),
		cyan(fmt.Sprintf("(%dms, %d bytes)", ex.DurationMs(), ex.Size)))

	if f.verbose {
		for _, h := range resp.Headers {
			fmt.Fprintf(f.writer, "%s %s\n", dim("< "+h.Name+":"), h.Value)
		}
	}

	if resp.Body != "" {
		fmt.Fprintf(f.writer, "\n%s", resp.Body)
		if !strings.HasSuffix(resp.Body, "\n") {
			fmt.Fprintln(f.writer)
		}
	}

	if len(checks) > 0 {
		fmt.Fprintln(f.writer)
		f.FormatChecks(checks)
	}
}

// FormatChecks prints check results and a pass/fail tally
func (f *ConsoleFormatter) FormatChecks(checks []*assertions.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	var passed, failed int
	for _, c := range checks {
		if c.Passed {
			passed++
			fmt.Fprintf(f.writer, "  %s %s %s %s\n", green("✓"), c.Subject, c.Operator, formatValue(c.Expected, 60))
			continue
		}

		failed++
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), c.Subject, c.Operator)
		fmt.Fprintf(f.writer, "      Expected: %s\n", formatValue(c.Expected, 100))
		fmt.Fprintf(f.writer, "      Actual:   %s\n", formatValue(c.Actual, 100))
		if c.Message != "" {
			fmt.Fprintf(f.writer, "      %s\n", c.Message)
		}
	}

	fmt.Fprintf(f.writer, "\nChecks: ")
	if passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(checks))
}

// FormatQuery prints the value selected by a body query. JSON strings are
// printed unquoted.
func (f *ConsoleFormatter) FormatQuery(path, value string) {
	if r := gjson.Parse(value); r.Type == gjson.String {
		value = r.String()
	}
	fmt.Fprintln(f.writer, value)
}

// FormatURL prints the components of a parsed URL
func (f *ConsoleFormatter) FormatURL(u *url.URL) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	field := func(name, value string) {
		if value == "" {
			value = dim("(none)")
		}
		fmt.Fprintf(f.writer, "%s %s\n", bold(fmt.Sprintf("%-11s", name)), value)
	}

	field("scheme", u.Scheme)
	field("host", u.Host)
	field("port", u.Port)
	field("path", u.Path)
	field("searchpart", u.Searchpart)
}

// FormatResponse prints a parsed response: status line, headers in wire
// order, a blank line and the body.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(f.writer, statusColor(resp.StatusCode).Sprint(resp.Version+" "+resp.Status()))
	for _, h := range resp.Headers {
		fmt.Fprintf(f.writer, "%s %s\n", cyan(h.Name+":"), h.Value)
	}
	fmt.Fprintln(f.writer)
	fmt.Fprint(f.writer, resp.Body)
	if resp.Body != "" && !strings.HasSuffix(resp.Body, "\n") {
		fmt.Fprintln(f.writer)
	}
}

// FormatHistory prints one line per recorded fetch, newest first
func (f *ConsoleFormatter) FormatHistory(entries []*history.Entry) {
	red := color.New(color.FgRed).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if len(entries) == 0 {
		fmt.Fprintln(f.writer, dim("No history recorded"))
		return
	}

	for _, e := range entries {
		status := statusColor(uint16(e.StatusCode)).Sprintf("%d", e.StatusCode)
		if e.Failed() {
			status = red(e.ErrorKind)
		}
		fmt.Fprintf(f.writer, "%s  %s  %s  %s  %s\n",
			dim(shortID(e.ID)),
			e.FetchedAt.Local().Format(time.DateTime),
			status,
			cyan(fmt.Sprintf("%dms", e.Duration.Milliseconds())),
			e.URL)
	}
}

// FormatEntry prints a single recorded fetch in full
func (f *ConsoleFormatter) FormatEntry(e *history.Entry) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("ID:     "), e.ID)
	fmt.Fprintf(f.writer, "%s %s\n", bold("URL:    "), e.URL)
	fmt.Fprintf(f.writer, "%s %s\n", bold("Fetched:"), e.FetchedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(f.writer, "%s %dms\n", bold("Took:   "), e.Duration.Milliseconds())

	if e.Failed() {
		fmt.Fprintf(f.writer, "%s %s\n", bold("Error:  "), red(fmt.Sprintf("[%s] %s", e.ErrorKind, e.Error)))
		return
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, statusColor(uint16(e.StatusCode)).Sprintf("%d %s", e.StatusCode, e.Reason))
	if e.Headers != "" {
		for _, line := range strings.Split(e.Headers, "\n") {
			name, value, _ := strings.Cut(line, ": ")
			fmt.Fprintf(f.writer, "%s %s\n", cyan(name+":"), value)
		}
	}
	fmt.Fprintln(f.writer)
	fmt.Fprint(f.writer, e.Body)
	if e.Body != "" && !strings.HasSuffix(e.Body, "\n") {
		fmt.Fprintln(f.writer)
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)

	if !f.verbose {
		return
	}
	var te *errs.TransportError
	if errors.As(err, &te) && te.Err != nil {
		dim := color.New(color.Faint).SprintFunc()
		fmt.Fprintf(f.writer, "%s\n", dim(fmt.Sprintf("  cause: %T", te.Err)))
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitget"), version)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
