package http

import (
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
)

const (
	// MinStatusCode and MaxStatusCode bound a valid status code
	MinStatusCode = 100
	MaxStatusCode = 599
)

// Header is a single response header as it appeared on the wire.
type Header struct {
	Name  string
	Value string
}

// Response is a parsed HTTP/1.1 response. Headers keep wire order,
// duplicates included.
type Response struct {
	Version    string
	StatusCode uint16
	Reason     string
	Headers    []Header
	Body       string
}

// ParseResponse parses a complete response held in memory.
//
// Lines end in "\n"; a single trailing "\r" is dropped from each line of the
// status line and header block. Header lines split at the first ": ", or at
// the first ":" when no space follows it, and the value is kept verbatim.
// The first empty line ends the header block; everything after it is the
// body, byte for byte.
func ParseResponse(raw string) (*Response, error) {
	statusLine, rest, more := nextLine(raw)

	resp, err := parseStatusLine(statusLine)
	if err != nil {
		return nil, err
	}

	lineNo := 1
	last := statusLine
	for {
		if !more || rest == "" {
			return nil, errs.Validation(errs.MissingBodySeparator, last, lineNo)
		}

		var line string
		line, rest, more = nextLine(rest)
		lineNo++

		if line == "" {
			if more {
				resp.Body = rest
			}
			return resp, nil
		}

		h, err := parseHeaderLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		resp.Headers = append(resp.Headers, h)
		last = line
	}
}

// nextLine returns the first line of s without its terminator, the
// remainder after the terminator, and whether a "\n" was found.
func nextLine(s string) (line, rest string, found bool) {
	line, rest, found = strings.Cut(s, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, rest, found
}

func parseStatusLine(line string) (*Response, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, errs.Validation(errs.MalformedStatusLine, line, 1)
	}

	code, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || code < MinStatusCode || code > MaxStatusCode {
		return nil, errs.Validation(errs.InvalidStatusCode, parts[1], 1)
	}

	resp := &Response{
		Version:    parts[0],
		StatusCode: uint16(code),
	}
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return resp, nil
}

func parseHeaderLine(line string, lineNo int) (Header, error) {
	name, value, found := strings.Cut(line, ": ")
	if !found {
		name, value, found = strings.Cut(line, ":")
	}
	if !found || name == "" {
		return Header{}, errs.Validation(errs.MalformedHeader, line, lineNo)
	}
	return Header{Name: name, Value: value}, nil
}

// Status returns "<code> <reason>", trimmed when the reason is empty.
func (r *Response) Status() string {
	return strings.TrimSpace(strconv.Itoa(int(r.StatusCode)) + " " + r.Reason)
}

// Header returns the value of the first header matching key, ignoring case.
func (r *Response) Header(key string) string {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			return h.Value
		}
	}
	return ""
}

// Values returns every value for key in wire order.
func (r *Response) Values(key string) []string {
	var values []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, key) {
			values = append(values, h.Value)
		}
	}
	return values
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "application/json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}
