package probe

import (
	"context"
	"net"
	"strings"
	"testing"
)

func TestConnected_LocalListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	_, port, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	p := NewForHost("localhost", port)
	if !p.Connected(context.Background()) {
		t.Fatal("Connected = false for live local listener")
	}
}

func TestConnected_RefusedPortIsNotConnected(t *testing.T) {
	// Grab a port and close it again so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	port := addr[strings.LastIndex(addr, ":")+1:]
	p := NewForHost("localhost", port)
	if p.Connected(context.Background()) {
		t.Fatal("Connected = true for closed port")
	}
}

func TestConnected_UnresolvableHostIsNotConnected(t *testing.T) {
	p := NewForHost("host.invalid", "443")
	if p.Connected(context.Background()) {
		t.Fatal("Connected = true for unresolvable host")
	}
}
