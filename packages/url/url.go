package url

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
)

const (
	// Scheme is the only scheme hitget speaks
	Scheme = "http"
	// DefaultPort is used when the authority has no explicit port
	DefaultPort = "80"

	schemeMarker = Scheme + "://"
)

// URL is a decomposed http URL. Path and Searchpart are empty strings when
// absent; Path carries no leading slash and Searchpart no '?'.
type URL struct {
	Scheme     string
	Host       string
	Port       string
	Path       string
	Searchpart string
}

// Parse splits raw into its components. Only the "http://" prefix is
// validated; host and port are taken as written.
func Parse(raw string) (*URL, error) {
	if !strings.HasPrefix(raw, schemeMarker) {
		return nil, errs.Validation(errs.UnsupportedScheme, raw, 0)
	}
	rest := strings.TrimPrefix(raw, schemeMarker)

	authority, pathAndQuery, _ := strings.Cut(rest, "/")

	host, port, found := strings.Cut(authority, ":")
	if !found {
		port = DefaultPort
	}

	path, searchpart, _ := strings.Cut(pathAndQuery, "?")

	return &URL{
		Scheme:     Scheme,
		Host:       host,
		Port:       port,
		Path:       path,
		Searchpart: searchpart,
	}, nil
}

// String rebuilds the literal form with an explicit port.
func (u *URL) String() string {
	var b strings.Builder
	b.WriteString(schemeMarker)
	b.WriteString(u.Host)
	b.WriteByte(':')
	b.WriteString(u.Port)
	b.WriteByte('/')
	b.WriteString(u.Path)
	if u.Searchpart != "" {
		b.WriteByte('?')
		b.WriteString(u.Searchpart)
	}
	return b.String()
}

// RequestTarget returns the origin-form target used on the request line.
func (u *URL) RequestTarget() string {
	if u.Searchpart == "" {
		return "/" + u.Path
	}
	return "/" + u.Path + "?" + u.Searchpart
}

// PortNumber parses Port. A failure here belongs to the transport layer,
// not to URL parsing.
func (u *URL) PortNumber() (uint16, error) {
	n, err := strconv.ParseUint(u.Port, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", u.Port, err)
	}
	return uint16(n), nil
}

// Address joins host and port for dialing.
func (u *URL) Address() string {
	return u.Host + ":" + u.Port
}
