package http

import (
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitget/packages/url"
)

// DefaultAccept is sent on every request
const DefaultAccept = "text/html"

// reservedHeaders are written by BuildRequest itself and cannot be overridden
var reservedHeaders = map[string]bool{
	"host":       true,
	"connection": true,
}

// BuildRequest renders the GET request for u. Lines end in "\n". Extra
// headers follow the fixed ones in name order; Accept may be overridden,
// Host and Connection may not. Fields holding a line break are dropped.
func BuildRequest(u *url.URL, extra map[string]string) []byte {
	accept := DefaultAccept
	names := make([]string, 0, len(extra))
	for name, value := range extra {
		if name == "" || strings.ContainsAny(name+value, "\r\n") {
			continue
		}
		lower := strings.ToLower(name)
		if reservedHeaders[lower] {
			continue
		}
		if lower == "accept" {
			accept = value
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("GET ")
	b.WriteString(u.RequestTarget())
	b.WriteString(" HTTP/1.1\n")
	b.WriteString("Host: " + u.Host + "\n")
	b.WriteString("Accept: " + accept + "\n")
	b.WriteString("Connection: close\n")
	for _, name := range names {
		b.WriteString(name + ": " + extra[name] + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}
