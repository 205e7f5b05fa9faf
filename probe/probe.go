// Package probe answers one question: can the update host be reached right
// now. It never returns an error — every failure collapses to "not
// connected", because the update check is best-effort and must not block
// the launch sequence.
package probe

import (
	"context"
	"net"
	"time"
)

const (
	defaultHost    = "github.com"
	defaultTimeout = 3 * time.Second
)

// Probe checks reachability of a single host over TCP.
type Probe struct {
	host    string
	port    string
	timeout time.Duration
	dialer  *net.Dialer
}

// New creates a probe for the default update host.
func New() *Probe {
	return NewForHost(defaultHost, "443")
}

// NewForHost creates a probe for an arbitrary host and port.
func NewForHost(host, port string) *Probe {
	return &Probe{
		host:    host,
		port:    port,
		timeout: defaultTimeout,
		dialer:  &net.Dialer{},
	}
}

// Connected reports whether the host resolves and accepts a TCP connection
// within the probe timeout.
func (p *Probe) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := net.DefaultResolver.LookupHost(ctx, p.host); err != nil {
		return false
	}

	conn, err := p.dialer.DialContext(ctx, "tcp", net.JoinHostPort(p.host, p.port))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
