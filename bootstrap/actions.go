package bootstrap

import (
	"context"
	"fmt"

	"dockhand/config"
)

type actionKind uint8

const (
	actionSkipUpdate actionKind = iota + 1
	actionOpenRelease
	actionRecheckDocker
	actionOpenInstall
	actionSubmitConfig
	actionRetry
)

func (k actionKind) String() string {
	switch k {
	case actionSkipUpdate:
		return "skip-update"
	case actionOpenRelease:
		return "open-release"
	case actionRecheckDocker:
		return "recheck-docker"
	case actionOpenInstall:
		return "open-install"
	case actionSubmitConfig:
		return "submit-config"
	case actionRetry:
		return "retry"
	default:
		return "unknown"
	}
}

type action struct {
	kind actionKind
	cfg  config.Install

	// reply receives the outcome for actions the caller waits on.
	reply chan error
}

// SkipUpdate dismisses the update prompt and continues the launch.
func (c *Controller) SkipUpdate() { c.send(action{kind: actionSkipUpdate}) }

// OpenReleasePage opens the release page in the system browser. The
// controller stays on the update prompt.
func (c *Controller) OpenReleasePage() { c.send(action{kind: actionOpenRelease}) }

// RecheckDocker re-runs the Docker checks from the missing-Docker prompt.
func (c *Controller) RecheckDocker() { c.send(action{kind: actionRecheckDocker}) }

// OpenInstallPage opens the platform's Docker install instructions.
func (c *Controller) OpenInstallPage() { c.send(action{kind: actionOpenInstall}) }

// Retry re-enters the Docker checks from the failure screen. The update
// check is not replayed.
func (c *Controller) Retry() { c.send(action{kind: actionRetry}) }

// SubmitConfig validates, live-checks the port, persists the config, and
// moves the launch on to the container start. The returned error is
// field-level feedback for the configuration form.
func (c *Controller) SubmitConfig(ctx context.Context, cfg config.Install) error {
	a := action{kind: actionSubmitConfig, cfg: cfg, reply: make(chan error, 1)}
	select {
	case c.actions <- a:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-a.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// send enqueues a fire-and-forget action. When the queue is full the
// action is dropped: the controller is mid-stage and the action would be
// ignored anyway.
func (c *Controller) send(a action) {
	select {
	case c.actions <- a:
	default:
	}
}

// errNotAccepted is returned to waited-on actions that arrive in a phase
// that cannot accept them.
func errNotAccepted(k actionKind, p Phase) error {
	return fmt.Errorf("action %s not accepted in phase %s", k, p)
}
