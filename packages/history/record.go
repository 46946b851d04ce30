package history

import (
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/http"
)

// FromExchange builds an entry for a fetch of rawURL. Either ex or err is
// expected to be set.
func FromExchange(rawURL string, ex *http.Exchange, err error, took time.Duration) *Entry {
	e := &Entry{
		URL:      rawURL,
		Duration: took,
	}

	if err != nil {
		e.Error = err.Error()
		if kind, ok := errs.KindOf(err); ok {
			e.ErrorKind = kind.String()
		} else {
			e.ErrorKind = "other"
		}
		return e
	}

	resp := ex.Response
	e.Duration = ex.Duration
	e.StatusCode = int(resp.StatusCode)
	e.Reason = resp.Reason
	e.Headers = FormatHeaders(resp.Headers)
	e.Body = resp.Body
	return e
}

// FormatHeaders renders headers one per line in wire order.
func FormatHeaders(headers []http.Header) string {
	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
	}
	return b.String()
}
