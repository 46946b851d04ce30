package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/assertions"
	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/history"
	"github.com/abdul-hamid-achik/hitget/packages/http"
	"github.com/abdul-hamid-achik/hitget/packages/url"
)

// JSONURL represents a parsed URL
type JSONURL struct {
	Scheme     string `json:"scheme"`
	Host       string `json:"host"`
	Port       string `json:"port"`
	Path       string `json:"path"`
	Searchpart string `json:"searchpart"`
}

// JSONHeader represents one response header
type JSONHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// JSONResponse represents a parsed response
type JSONResponse struct {
	Version    string       `json:"version"`
	StatusCode uint16       `json:"statusCode"`
	Reason     string       `json:"reason"`
	Headers    []JSONHeader `json:"headers"`
	Body       string       `json:"body"`
}

// JSONExchange represents one completed GET
type JSONExchange struct {
	URL      string        `json:"url"`
	Duration float64       `json:"duration"`
	Size     int           `json:"size"`
	Response *JSONResponse `json:"response"`
	Checks   []JSONCheck   `json:"checks,omitempty"`
	Passed   bool          `json:"passed"`
}

// JSONCheck represents a check result
type JSONCheck struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// JSONEntry represents a recorded fetch
type JSONEntry struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	FetchedAt  string  `json:"fetchedAt"`
	Duration   float64 `json:"duration"`
	StatusCode int     `json:"statusCode,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Headers    string  `json:"headers,omitempty"`
	Body       string  `json:"body,omitempty"`
	ErrorKind  string  `json:"errorKind,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// JSONError represents a failure
type JSONError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// JSONFormatter writes one JSON document per call
type JSONFormatter struct {
	writer io.Writer
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) encode(v any) {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

func toJSONResponse(resp *http.Response) *JSONResponse {
	out := &JSONResponse{
		Version:    resp.Version,
		StatusCode: resp.StatusCode,
		Reason:     resp.Reason,
		Headers:    make([]JSONHeader, len(resp.Headers)),
		Body:       resp.Body,
	}
	for i, h := range resp.Headers {
		out.Headers[i] = JSONHeader{Name: h.Name, Value: h.Value}
	}
	return out
}

func toJSONEntry(e *history.Entry) JSONEntry {
	return JSONEntry{
		ID:         e.ID,
		URL:        e.URL,
		FetchedAt:  e.FetchedAt.Format(time.RFC3339),
		Duration:   float64(e.Duration.Milliseconds()),
		StatusCode: e.StatusCode,
		Reason:     e.Reason,
		Headers:    e.Headers,
		Body:       e.Body,
		ErrorKind:  e.ErrorKind,
		Error:      e.Error,
	}
}

func (f *JSONFormatter) FormatExchange(ex *http.Exchange, checks []*assertions.Result) {
	out := JSONExchange{
		URL:      ex.URL.String(),
		Duration: float64(ex.DurationMs()),
		Size:     ex.Size,
		Response: toJSONResponse(ex.Response),
		Passed:   true,
	}

	for _, c := range checks {
		out.Checks = append(out.Checks, JSONCheck{
			Subject:  c.Subject,
			Operator: c.Operator,
			Expected: c.Expected,
			Actual:   c.Actual,
			Passed:   c.Passed,
			Message:  c.Message,
		})
		if !c.Passed {
			out.Passed = false
		}
	}

	f.encode(out)
}

func (f *JSONFormatter) FormatQuery(path, value string) {
	raw := json.RawMessage(value)
	if !json.Valid(raw) {
		f.encode(map[string]any{"query": path, "value": value})
		return
	}
	f.encode(map[string]any{"query": path, "value": raw})
}

func (f *JSONFormatter) FormatURL(u *url.URL) {
	f.encode(JSONURL{
		Scheme:     u.Scheme,
		Host:       u.Host,
		Port:       u.Port,
		Path:       u.Path,
		Searchpart: u.Searchpart,
	})
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) {
	f.encode(toJSONResponse(resp))
}

func (f *JSONFormatter) FormatHistory(entries []*history.Entry) {
	out := make([]JSONEntry, len(entries))
	for i, e := range entries {
		out[i] = toJSONEntry(e)
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatEntry(e *history.Entry) {
	f.encode(toJSONEntry(e))
}

func (f *JSONFormatter) FormatError(err error) {
	out := JSONError{Error: err.Error()}
	if kind, ok := errs.KindOf(err); ok {
		out.Kind = kind.String()
	}
	f.encode(out)
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}
