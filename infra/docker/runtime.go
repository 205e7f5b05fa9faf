// Package docker implements the container runtime the bootstrap controller
// drives: install and run-state checks of the Docker engine, lifecycle of
// the single backend container, and host port probing.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"

	"dockhand"
	"dockhand/config"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

const engineStartWait = 30 * time.Second

// Runtime manages the backend container through the Docker engine.
type Runtime struct {
	composeFile string
	project     string
	service     string

	newClient func() (client.APIClient, error)
}

// NewRuntime creates a runtime for the backend service defined in the
// given compose file.
func NewRuntime(composeFile, project, service string) *Runtime {
	return &Runtime{
		composeFile: composeFile,
		project:     project,
		service:     service,
		newClient: func() (client.APIClient, error) {
			return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		},
	}
}

// Installed reports whether the docker CLI is present on the host. The CLI
// is what ships with both Docker Desktop and the engine packages, so its
// absence means Docker is not installed at all.
func (r *Runtime) Installed(ctx context.Context) bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

// Running reports whether the Docker daemon answers a ping. Any failure,
// including failure to construct a client, reads as "not running".
func (r *Runtime) Running(ctx context.Context) bool {
	cli, err := r.newClient()
	if err != nil {
		return false
	}
	defer cli.Close()

	_, err = cli.Ping(ctx)
	return err == nil
}

// StartEngine launches Docker Desktop (darwin) or the docker service
// (linux) and waits for the daemon to answer. Best-effort: an error only
// means the caller should keep polling.
func (r *Runtime) StartEngine(ctx context.Context) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", "-a", "Docker")
	case "linux":
		cmd = exec.CommandContext(ctx, "systemctl", "--user", "start", "docker")
	default:
		return fmt.Errorf("don't know how to start Docker on %s", runtime.GOOS)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("launch docker engine: %w", err)
	}
	return r.waitEngine(ctx)
}

// waitEngine polls the daemon until it answers a ping or the wait budget
// runs out.
func (r *Runtime) waitEngine(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, engineStartWait)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("docker daemon did not come up: %w", ctx.Err())
		case <-ticker.C:
			if r.Running(ctx) {
				return nil
			}
		}
	}
}

// Stop stops and removes the backend container. Both operations tolerate
// the container already being gone.
func (r *Runtime) Stop(ctx context.Context) error {
	cli, err := r.newClient()
	if err != nil {
		return fmt.Errorf("create docker client: %w", err)
	}
	defer cli.Close()

	name := r.containerName()
	if err := cli.ContainerStop(ctx, name, container.StopOptions{}); err != nil {
		if !errdefs.IsNotFound(err) {
			return fmt.Errorf("stop container %s: %w", name, err)
		}
	}
	if err := cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true}); err != nil {
		if !errdefs.IsNotFound(err) {
			return fmt.Errorf("remove container %s: %w", name, err)
		}
	}
	slog.Info("Backend container stopped.", "name", name)
	return nil
}

// PortAvailable validates the port statically and then tries to bind it on
// the host. The message is user-facing.
func (r *Runtime) PortAvailable(ctx context.Context, port int) dockhand.PortStatus {
	if err := config.ValidatePort(port); err != nil {
		return dockhand.PortStatus{Message: err.Error()}
	}
	if inUse(port) {
		return dockhand.PortStatus{Message: fmt.Sprintf("Port %d is already in use", port)}
	}
	return dockhand.PortStatus{Available: true, Message: "Port is available"}
}

func (r *Runtime) containerName() string {
	return r.project + "-" + r.service
}
