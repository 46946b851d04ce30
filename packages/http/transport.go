package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/hitget/packages/core/errs"
	"github.com/abdul-hamid-achik/hitget/packages/url"
)

const (
	// DefaultDialTimeout bounds a single connect attempt
	DefaultDialTimeout = 10 * time.Second
	// DefaultRetryDelay is the pause between connect attempts
	DefaultRetryDelay = time.Second
	// ReadChunkSize is the size of each read from the connection
	ReadChunkSize = 4096
)

// Transport moves raw request bytes to the server named by a URL and
// returns everything the server sent until it closed the connection.
type Transport interface {
	RoundTrip(ctx context.Context, u *url.URL, request []byte) ([]byte, error)
}

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Dialer is satisfied by *net.Dialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// TCPTransport speaks to the server over a fresh TCP connection per request.
type TCPTransport struct {
	resolver   Resolver
	dialer     Dialer
	retries    int
	retryDelay time.Duration
}

type TransportOption func(*TCPTransport)

func NewTCPTransport(opts ...TransportOption) *TCPTransport {
	t := &TCPTransport{
		resolver:   net.DefaultResolver,
		dialer:     &net.Dialer{Timeout: DefaultDialTimeout},
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func WithResolver(r Resolver) TransportOption {
	return func(t *TCPTransport) {
		t.resolver = r
	}
}

func WithDialer(d Dialer) TransportOption {
	return func(t *TCPTransport) {
		t.dialer = d
	}
}

// WithRetries sets how many extra connect attempts are made after the first
// one fails. Only connecting is retried; a request is never sent twice.
func WithRetries(n int, delay time.Duration) TransportOption {
	return func(t *TCPTransport) {
		if n >= 0 {
			t.retries = n
		}
		if delay >= 0 {
			t.retryDelay = delay
		}
	}
}

func (t *TCPTransport) RoundTrip(ctx context.Context, u *url.URL, request []byte) ([]byte, error) {
	port, err := u.PortNumber()
	if err != nil {
		return nil, errs.Transport(errs.ConnectFailed, u.Address(), err)
	}

	addrs, err := t.resolve(ctx, u.Host)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(addrs[0], strconv.Itoa(int(port)))

	conn, err := t.connect(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write(request); err != nil {
		return nil, errs.Transport(errs.SendFailed, addr, err)
	}

	received, err := readAll(conn)
	if err != nil {
		return nil, errs.Transport(errs.ReceiveFailed, addr, err)
	}
	return received, nil
}

func (t *TCPTransport) resolve(ctx context.Context, host string) ([]string, error) {
	if host == "" {
		return nil, errs.Transport(errs.NoAddressFound, host, errors.New("empty host"))
	}

	addrs, err := t.resolver.LookupHost(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errs.Transport(errs.NoAddressFound, host, err)
		}
		return nil, errs.Transport(errs.NetworkUnavailable, host, err)
	}
	if len(addrs) == 0 {
		return nil, errs.Transport(errs.NoAddressFound, host, nil)
	}
	return addrs, nil
}

func (t *TCPTransport) connect(ctx context.Context, addr string) (net.Conn, error) {
	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, errs.Transport(errs.ConnectFailed, addr, fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr))
			case <-time.After(t.retryDelay):
			}
		}

		conn, err := t.dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn, nil
		}
		lastErr = err
	}
	return nil, errs.Transport(errs.ConnectFailed, addr, lastErr)
}

// readAll reads chunks until the peer closes the connection. An empty read
// counts as end of stream.
func readAll(r io.Reader) ([]byte, error) {
	var received []byte
	buf := make([]byte, ReadChunkSize)
	for {
		n, err := r.Read(buf)
		received = append(received, buf[:n]...)
		if errors.Is(err, io.EOF) || (n == 0 && err == nil) {
			return received, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
