// Package bootstrap drives the launch sequence from process start to a
// running backend UI: update check, Docker checks with bounded readiness
// polling, configuration, and container start. One controller instance
// exists per process; its state machine never runs two stages at once.
package bootstrap

import (
	"context"
	"runtime"
	"sync"
	"time"

	"dockhand"
	"dockhand/config"

	"github.com/juju/clock"
)

const (
	// MaxUpdateRetries bounds transient update-check retries.
	MaxUpdateRetries = 3
	// MaxDockerCheckAttempts bounds "installed but not running" re-checks.
	MaxDockerCheckAttempts = 10

	updateRetryDelay = 2 * time.Second
	dockerRetryDelay = 3 * time.Second
	stopTimeout      = 15 * time.Second
)

// NetworkProbe reports whether the update host is reachable. It never
// fails; unreachable and broken both read as false.
type NetworkProbe interface {
	Connected(ctx context.Context) bool
}

// UpdateSource checks the release feed. Errors are transient.
type UpdateSource interface {
	Check(ctx context.Context) (dockhand.UpdateInfo, error)
}

// ContainerRuntime is the contract the controller expects from Docker.
// Start is not safe to call while a previous start is in flight; the state
// machine shape guarantees the controller never does.
type ContainerRuntime interface {
	Installed(ctx context.Context) bool
	Running(ctx context.Context) bool
	Start(ctx context.Context, cfg config.Install) dockhand.StartResult
	Stop(ctx context.Context) error
	PortAvailable(ctx context.Context, port int) dockhand.PortStatus
}

// ConfigStore loads and persists the install configuration. Load returns
// an empty config when nothing has been saved yet.
type ConfigStore interface {
	Load() (config.Install, error)
	Save(cfg config.Install) error
}

// Bridge is the host-side display surface: a readiness handshake and a
// navigation primitive.
type Bridge interface {
	AwaitReady(ctx context.Context) error
	Navigate(url string) error
}

// State is a snapshot of the launch sequence, safe to hand to observers.
type State struct {
	Phase      Phase
	Status     string
	LastError  string
	Update     dockhand.UpdateInfo
	BackendURL string

	UpdateAttempts int
	DockerAttempts int
}

// Controller owns the bootstrap state machine.
type Controller struct {
	probe   NetworkProbe
	updates UpdateSource
	rt      ContainerRuntime
	store   ConfigStore
	bridge  Bridge
	clk     clock.Clock

	releasesURL string

	mu        sync.Mutex
	state     State
	observers []func(State)

	// cfg is the install config for the current cycle. Only the run loop
	// goroutine touches it.
	cfg config.Install

	actions chan action
}

// Option configures a Controller. Use these to inject test dependencies.
type Option func(*Controller)

// WithClock injects the clock driving retry delays.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clk = clk }
}

// WithReleasesURL overrides the page opened by the update prompt.
func WithReleasesURL(url string) Option {
	return func(c *Controller) { c.releasesURL = url }
}

// New creates a controller over the given collaborators.
func New(probe NetworkProbe, updates UpdateSource, rt ContainerRuntime, store ConfigStore, bridge Bridge, opts ...Option) *Controller {
	c := &Controller{
		probe:       probe,
		updates:     updates,
		rt:          rt,
		store:       store,
		bridge:      bridge,
		clk:         clock.WallClock,
		releasesURL: "https://github.com/JShadowNull/TAK-Manager/releases/latest",
		actions:     make(chan action, 8),
		state: State{
			Phase:  PhaseInitializing,
			Status: "Starting up...",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Observe registers fn to receive every state snapshot. Must be called
// before Run.
func (c *Controller) Observe(fn func(State)) {
	c.observers = append(c.observers, fn)
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// setPhase transitions to phase, updates the status message, and publishes
// a snapshot. mutate, when non-nil, is applied to the state under the lock.
func (c *Controller) setPhase(phase Phase, status string, mutate func(*State)) {
	c.mu.Lock()
	c.state.Phase = phase
	c.state.Status = status
	if mutate != nil {
		mutate(&c.state)
	}
	snapshot := c.state
	c.mu.Unlock()

	for _, fn := range c.observers {
		fn(snapshot)
	}
}

func (c *Controller) phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// InstallURL returns the platform-appropriate Docker installation page.
func InstallURL() string {
	switch runtime.GOOS {
	case "darwin":
		return "https://docs.docker.com/desktop/install/mac-install/"
	case "windows":
		return "https://docs.docker.com/desktop/install/windows-install/"
	default:
		return "https://docs.docker.com/engine/install/"
	}
}
