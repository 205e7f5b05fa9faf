package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"dockhand"
	"dockhand/config"
)

const (
	dockerGaveUpMessage  = "Docker did not become ready. Start Docker manually, then retry."
	genericStartFailure  = "The backend container failed to start."
	bridgeFailureMessage = "The launcher could not reach its own API bridge."
)

// Run executes the launch sequence until ctx is cancelled. Stages run
// strictly one at a time on this goroutine; user actions and retry timers
// are the only things that re-enter a stage. On shutdown the backend
// container is stopped best-effort.
func (c *Controller) Run(ctx context.Context) error {
	defer c.teardown()

	if err := c.bridge.AwaitReady(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.fail(bridgeFailureMessage, err)
	} else {
		c.setPhase(PhaseCheckingUpdate, "Checking for updates...", nil)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		switch c.phase() {
		case PhaseCheckingUpdate:
			c.stepUpdate(ctx)
		case PhaseCheckingDocker, PhaseWaitingForDocker:
			c.stepDocker(ctx)
		case PhaseCheckingConfig:
			c.stepConfig()
		case PhaseStartingContainer:
			c.stepStart(ctx)
		default:
			// Terminal until a user decision arrives.
			c.awaitAction(ctx)
		}
	}
}

// stepUpdate resolves the update check: skip offline, retry transient
// failures up to the bound, then give up silently.
func (c *Controller) stepUpdate(ctx context.Context) {
	c.clearError()

	if !c.probe.Connected(ctx) {
		slog.Info("No network connectivity, skipping update check.")
		c.toDockerCheck(func(s *State) { s.Update = dockhand.UnknownUpdate() })
		return
	}

	info, err := c.updates.Check(ctx)
	if err == nil {
		if info.HasUpdate {
			c.setPhase(PhaseUpdateAvailable, "A new version is available.", func(s *State) { s.Update = info })
			return
		}
		c.toDockerCheck(func(s *State) { s.Update = info })
		return
	}

	if c.State().UpdateAttempts < MaxUpdateRetries-1 && c.probe.Connected(ctx) {
		slog.Warn("Update check failed, retrying.", "err", err)
		c.setPhase(PhaseCheckingUpdate, "Checking for updates...", func(s *State) { s.UpdateAttempts++ })
		c.wait(ctx, updateRetryDelay)
		return
	}

	// The launch never blocks on the update feed.
	slog.Warn("Update check gave up.", "err", err)
	c.toDockerCheck(func(s *State) { s.Update = dockhand.UnknownUpdate() })
}

// stepDocker checks install state, then polls the daemon with a fixed
// delay until it runs or the attempt budget is spent.
func (c *Controller) stepDocker(ctx context.Context) {
	c.clearError()

	if !c.rt.Installed(ctx) {
		c.setPhase(PhaseDockerMissing, "Docker is not installed.", nil)
		return
	}

	if c.rt.Running(ctx) {
		c.setPhase(PhaseCheckingConfig, "Loading configuration...", func(s *State) { s.DockerAttempts = 0 })
		return
	}

	if c.State().DockerAttempts < MaxDockerCheckAttempts {
		c.setPhase(PhaseWaitingForDocker, "Waiting for Docker to start...", func(s *State) { s.DockerAttempts++ })
		if !c.wait(ctx, dockerRetryDelay) {
			return
		}
		c.setPhase(PhaseCheckingDocker, "Checking Docker installation...", nil)
		return
	}

	c.fail(dockerGaveUpMessage, nil)
}

// stepConfig reads the stored configuration. Anything short of both fields
// present routes to the configuration form.
func (c *Controller) stepConfig() {
	cfg, err := c.store.Load()
	if err != nil {
		slog.Error("Config load failed, treating as unconfigured.", "err", err)
		cfg = config.Install{}
	}
	if !cfg.Complete() {
		c.setPhase(PhaseAwaitingConfig, "Configuration required.", nil)
		return
	}
	c.cfg = cfg
	c.setPhase(PhaseStartingContainer, "Starting the backend container...", nil)
}

// stepStart starts the container and hands navigation off to the backend
// UI on the effective bound port.
func (c *Controller) stepStart(ctx context.Context) {
	result := c.rt.Start(ctx, c.cfg)
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = genericStartFailure
		}
		c.fail(msg, nil)
		return
	}

	url := result.BackendURL()
	if err := c.bridge.Navigate(url); err != nil {
		slog.Error("Navigation to backend UI failed.", "url", url, "err", err)
	}
	c.setPhase(PhaseReady, "Backend is running.", func(s *State) { s.BackendURL = url })
}

// awaitAction blocks in a terminal phase until a user decision or ctx
// cancellation. Actions that do not belong to the current phase are
// ignored.
func (c *Controller) awaitAction(ctx context.Context) {
	var a action
	select {
	case <-ctx.Done():
		return
	case a = <-c.actions:
	}

	phase := c.phase()
	switch a.kind {
	case actionSkipUpdate:
		if phase != PhaseUpdateAvailable {
			return
		}
		c.toDockerCheck(func(s *State) { s.Update.HasUpdate = false })

	case actionOpenRelease:
		if phase != PhaseUpdateAvailable {
			return
		}
		if err := c.bridge.Navigate(c.releasesURL); err != nil {
			slog.Error("Failed to open release page.", "err", err)
		}

	case actionOpenInstall:
		if phase != PhaseDockerMissing {
			return
		}
		if err := c.bridge.Navigate(InstallURL()); err != nil {
			slog.Error("Failed to open install instructions.", "err", err)
		}

	case actionRecheckDocker:
		if phase != PhaseDockerMissing {
			return
		}
		c.toDockerCheck(nil)

	case actionRetry:
		if phase != PhaseFailed {
			return
		}
		c.toDockerCheck(func(s *State) {
			s.LastError = ""
			s.DockerAttempts = 0
		})

	case actionSubmitConfig:
		if phase != PhaseAwaitingConfig {
			a.reply <- errNotAccepted(a.kind, phase)
			return
		}
		err := c.applyConfig(ctx, a.cfg)
		a.reply <- err
		if err == nil {
			c.cfg = a.cfg
			c.setPhase(PhaseStartingContainer, "Starting the backend container...", nil)
		}
	}
}

// applyConfig runs static validation, then the live port probe, then
// persists. Validation failures never reach the store.
func (c *Controller) applyConfig(ctx context.Context, cfg config.Install) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	port, _ := strconv.Atoi(cfg.BackendPort)
	if st := c.rt.PortAvailable(ctx, port); !st.Available {
		return errors.New(st.Message)
	}
	if err := c.store.Save(cfg); err != nil {
		return err
	}
	return nil
}

// toDockerCheck transitions into the Docker checks, optionally mutating
// state first.
func (c *Controller) toDockerCheck(mutate func(*State)) {
	c.setPhase(PhaseCheckingDocker, "Checking Docker installation...", mutate)
}

// fail enters the blocking error screen. Auto-retries stop here; only the
// user's retry action resumes the sequence.
func (c *Controller) fail(msg string, err error) {
	if err != nil {
		slog.Error("Launch sequence failed.", "msg", msg, "err", err)
	} else {
		slog.Error("Launch sequence failed.", "msg", msg)
	}
	c.setPhase(PhaseFailed, msg, func(s *State) { s.LastError = msg })
}

func (c *Controller) clearError() {
	c.mu.Lock()
	c.state.LastError = ""
	c.mu.Unlock()
}

// wait sleeps for d on the controller clock. Returns false when ctx was
// cancelled first.
func (c *Controller) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-c.clk.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

// teardown stops the backend container best-effort; the process is
// exiting, so failures are only logged.
func (c *Controller) teardown() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.rt.Stop(ctx); err != nil {
		slog.Error("Backend container stop failed during shutdown.", "err", err)
	}
}
