// Package bridge is the launcher's window onto the host: it waits for the
// local API to come up and redirects the display surface (the user's
// browser) to a URL.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"github.com/pkg/browser"
)

const (
	readyPollInterval = 250 * time.Millisecond
	readyPollAttempts = 40
)

// Browser hands navigation off to the system browser once the local API
// answers its health endpoint.
type Browser struct {
	healthURL string
	clock     clock.Clock
	http      *http.Client
	open      func(url string) error
}

// New creates a bridge that considers the host ready once healthURL
// returns 200.
func New(healthURL string) *Browser {
	return &Browser{
		healthURL: healthURL,
		clock:     clock.WallClock,
		http:      &http.Client{Timeout: time.Second},
		open:      browser.OpenURL,
	}
}

// AwaitReady polls the health endpoint at a fixed interval until it
// answers or the attempt budget is spent.
func (b *Browser) AwaitReady(ctx context.Context) error {
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			resp, err := b.http.Get(b.healthURL)
			if err != nil {
				return err
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health endpoint returned %s", resp.Status)
			}
			return nil
		},
		Attempts: readyPollAttempts,
		Delay:    readyPollInterval,
		Clock:    b.clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		return fmt.Errorf("api bridge never became ready: %w", err)
	}
	return nil
}

// Navigate opens url in the system browser.
func (b *Browser) Navigate(url string) error {
	if err := b.open(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
