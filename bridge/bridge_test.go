package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAwaitReady_SucceedsOnceHealthy(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := New(srv.URL)
	if err := b.AwaitReady(context.Background()); err != nil {
		t.Fatalf("AwaitReady: %v", err)
	}
	if calls.Load() < 3 {
		t.Fatalf("health endpoint called %d times, want at least 3", calls.Load())
	}
}

func TestAwaitReady_CancelledContextStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(srv.URL)
	if err := b.AwaitReady(ctx); err == nil {
		t.Fatal("AwaitReady succeeded with cancelled context")
	}
}

func TestNavigate_WrapsOpenerError(t *testing.T) {
	b := New("http://127.0.0.1:0/healthz")
	opened := ""
	b.open = func(url string) error {
		opened = url
		return nil
	}
	if err := b.Navigate("http://localhost:8989"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if opened != "http://localhost:8989" {
		t.Fatalf("opened %q", opened)
	}
}
