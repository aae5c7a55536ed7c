// Package safehttp builds outbound HTTP clients that refuse private targets.
package safehttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// SafeTransport rejects connections to private or loopback IP ranges to reduce SSRF risk.
var SafeTransport = &http.Transport{
	DialContext:         dialPublic,
	TLSHandshakeTimeout: 5 * time.Second,
	MaxIdleConnsPerHost: 4,
}

func dialPublic(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	if err := CheckIP(host); err != nil {
		conn.Close()
		return nil, fmt.Errorf("dial %q: %w", addr, err)
	}

	return conn, nil
}

// CheckIP fails for addresses a webhook must not reach.
func CheckIP(host string) error {
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("failed to parse remote IP %q", host)
	}
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return fmt.Errorf("access to private IP %s is denied", ip)
	}
	return nil
}

// NewClient returns a client with the given timeout. Unless allowPrivate is
// set the client dials through SafeTransport.
func NewClient(timeout time.Duration, allowPrivate bool) *http.Client {
	client := &http.Client{Timeout: timeout}
	if !allowPrivate {
		client.Transport = SafeTransport
	}
	return client
}
