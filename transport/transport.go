// Package transport establishes the TLS/TCP stream a session speaks FIX
// over. It knows nothing about FIX framing; it only moves bytes.
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"
)

// ErrTransportFailure wraps unexpected socket closure or TLS errors
// observed during Recv/SendAll.
var ErrTransportFailure = errors.New("transport: connection failure")

// Endpoint is a parsed tcp+tls://host:port target.
type Endpoint struct {
	Host string
	Port string
}

// ParseEndpoint parses a tcp+tls://host:port URL.
func ParseEndpoint(rawURL string) (Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("transport: invalid endpoint %q: %w", rawURL, err)
	}
	if u.Scheme != "tcp+tls" {
		return Endpoint{}, fmt.Errorf("transport: unsupported scheme %q, want tcp+tls", u.Scheme)
	}
	host := u.Hostname()
	port := u.Port()
	if host == "" || port == "" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q missing host or port", rawURL)
	}
	return Endpoint{Host: host, Port: port}, nil
}

// Conn wraps a TLS connection with the blocking send/recv contract the
// session engine drives its receive loop with.
type Conn struct {
	conn net.Conn
}

// Dial opens a TCP connection to endpoint and upgrades it to TLS, verifying
// the peer certificate against system roots with endpoint.Host as SNI.
func Dial(ctx context.Context, endpoint Endpoint, dialTimeout time.Duration) (*Conn, error) {
	dialer := &net.Dialer{Timeout: dialTimeout}
	raw, err := dialer.Dial("tcp", net.JoinHostPort(endpoint.Host, endpoint.Port))
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrTransportFailure, err)
	}

	tlsConn := tls.Client(raw, &tls.Config{
		ServerName: endpoint.Host,
		MinVersion: tls.VersionTLS12,
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: tls handshake: %v", ErrTransportFailure, err)
	}

	return &Conn{conn: tlsConn}, nil
}

// SendAll writes all of b to the connection, blocking until done or error.
func (c *Conn) SendAll(b []byte) error {
	_, err := c.conn.Write(b)
	if err != nil {
		return fmt.Errorf("%w: write: %v", ErrTransportFailure, err)
	}
	return nil
}

// Recv reads up to maxLen bytes, blocking until at least one byte arrives
// or the connection closes. An orderly close yields (nil, nil).
func (c *Conn) Recv(maxLen int) ([]byte, error) {
	buf := make([]byte, maxLen)
	n, err := c.conn.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read: %v", ErrTransportFailure, err)
	}
	return buf[:n], nil
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Conn) Close() error {
	return c.conn.Close()
}
