package http

import (
	"testing"

	"github.com/abdul-hamid-achik/hitget/packages/url"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"http://example.com",
			"GET / HTTP/1.1\nHost: example.com\nAccept: text/html\nConnection: close\n\n",
		},
		{
			"http://example.com:8080/a/b",
			"GET /a/b HTTP/1.1\nHost: example.com\nAccept: text/html\nConnection: close\n\n",
		},
		{
			"http://example.com/search?q=go&page=2",
			"GET /search?q=go&page=2 HTTP/1.1\nHost: example.com\nAccept: text/html\nConnection: close\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := BuildRequest(mustParseURL(t, tt.input), nil)
			assert.Equal(t, tt.expected, string(req))
		})
	}
}

func TestBuildRequest_ExtraHeaders(t *testing.T) {
	req := BuildRequest(mustParseURL(t, "http://example.com/x"), map[string]string{
		"User-Agent": "hitget/dev",
		"Accept":     "application/json",
		"Host":       "evil.example",
		"connection": "keep-alive",
		"A-First":    "1",
	})

	assert.Equal(t, "GET /x HTTP/1.1\n"+
		"Host: example.com\n"+
		"Accept: application/json\n"+
		"Connection: close\n"+
		"A-First: 1\n"+
		"User-Agent: hitget/dev\n"+
		"\n", string(req))
}

func TestBuildRequest_DropsLineBreaks(t *testing.T) {
	req := BuildRequest(mustParseURL(t, "http://example.com/"), map[string]string{
		"X-Token":      "abc\r\nHost: evil.example",
		"X-Split\nX-B": "1",
		"Accept":       "text/plain\n\nbody",
		"X-Ok":         "1",
	})

	assert.Equal(t, "GET / HTTP/1.1\n"+
		"Host: example.com\n"+
		"Accept: text/html\n"+
		"Connection: close\n"+
		"X-Ok: 1\n"+
		"\n", string(req))
}
