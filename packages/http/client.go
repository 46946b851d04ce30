package http

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/url"
)

const (
	// DefaultTimeout is the default deadline for a whole GET
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	transport      Transport
	timeout        time.Duration
	retries        int
	retryDelay     time.Duration
	defaultHeaders map[string]string
}

// Exchange is the outcome of one GET.
type Exchange struct {
	URL      *url.URL
	Request  []byte
	Response *Response
	Size     int
	Duration time.Duration
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		retryDelay:     DefaultRetryDelay,
		defaultHeaders: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		c.transport = NewTCPTransport(WithRetries(c.retries, c.retryDelay))
	}

	return c
}

// WithTransport replaces the TCP transport. Retry options are ignored when
// a transport is supplied.
func WithTransport(t Transport) ClientOption {
	return func(c *Client) {
		c.transport = t
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithConnectRetries configures connect retries of the default transport
func WithConnectRetries(n int, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retries = n
		c.retryDelay = delay
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// Get fetches rawURL. URL and response failures come back as
// *errs.ValidationError, network failures as *errs.TransportError.
func (c *Client) Get(ctx context.Context, rawURL string) (*Exchange, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Fetch(ctx, u)
}

// Fetch sends a GET for an already parsed URL.
func (c *Client) Fetch(ctx context.Context, u *url.URL) (*Exchange, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := BuildRequest(u, c.defaultHeaders)

	start := time.Now()
	raw, err := c.transport.RoundTrip(ctx, u, request)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse(raw)
	if err != nil {
		return nil, err
	}

	return &Exchange{
		URL:      u,
		Request:  request,
		Response: resp,
		Size:     len(raw),
		Duration: duration,
	}, nil
}

// DecodeResponse checks that raw is UTF-8 text and parses it.
func DecodeResponse(raw []byte) (*Response, error) {
	if !utf8.Valid(raw) {
		return nil, errs.Validation(errs.InvalidEncoding, invalidPrefix(raw), 0)
	}
	return ParseResponse(string(raw))
}

// invalidPrefix returns the text leading up to and including the first
// invalid byte, capped to keep diagnostics short.
func invalidPrefix(raw []byte) string {
	const window = 32
	i := 0
	for i < len(raw) {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		i += size
	}
	start := i - window
	if start < 0 {
		start = 0
	}
	end := i + 1
	if end > len(raw) {
		end = len(raw)
	}
	return string(raw[start:end])
}

func (e *Exchange) DurationMs() int64 {
	return e.Duration.Milliseconds()
}
