package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"dockhand"
	"dockhand/config"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// Start creates and starts the backend container from the compose service
// definition. It never returns a Go error: failures come back as an
// unsuccessful StartResult so the caller can surface the message verbatim.
// On success the result carries the effective bound host port, which is
// read back from the engine and may differ from the configured one.
func (r *Runtime) Start(ctx context.Context, cfg config.Install) dockhand.StartResult {
	svc, err := r.loadService(ctx, cfg)
	if err != nil {
		return failed(err)
	}

	containerCfg, hostCfg, err := r.containerConfigs(svc, cfg)
	if err != nil {
		return failed(err)
	}

	cli, err := r.newClient()
	if err != nil {
		return failed(fmt.Errorf("create docker client: %w", err))
	}
	defer cli.Close()

	name := r.containerName()

	// A container left over from a previous run would collide on name and
	// ports. Replace it rather than reuse it: its config may be stale.
	if err := r.Stop(ctx); err != nil {
		return failed(err)
	}

	id, err := createPullingIfMissing(ctx, cli, name, svc.Image, containerCfg, hostCfg)
	if err != nil {
		return failed(err)
	}

	if err := cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return failed(fmt.Errorf("start container: %w", err))
	}

	port, err := effectivePort(ctx, cli, id, svc.Ports[0].Target)
	if err != nil {
		return failed(err)
	}

	slog.Info("Backend container started.", "name", name, "port", port)
	return dockhand.StartResult{Success: true, Port: port}
}

// createPullingIfMissing creates the container, pulling the image and
// retrying once when the image is not present locally.
func createPullingIfMissing(
	ctx context.Context,
	cli client.APIClient,
	name, img string,
	containerCfg *container.Config,
	hostCfg *container.HostConfig,
) (string, error) {
	resp, err := cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, name)
	if err == nil {
		return resp.ID, nil
	}
	if !errdefs.IsNotFound(err) {
		return "", fmt.Errorf("create container: %w", err)
	}

	slog.Info("Pulling backend image.", "image", img)
	rc, err := cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("pull image %s: %w", img, err)
	}
	defer rc.Close()
	if _, err := io.Copy(io.Discard, rc); err != nil {
		return "", fmt.Errorf("pull image %s: read response: %w", img, err)
	}

	resp, err = cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, name)
	if err != nil {
		return "", fmt.Errorf("create container after pull: %w", err)
	}
	return resp.ID, nil
}

// effectivePort reads the bound host port for the published target port
// back from the engine.
func effectivePort(ctx context.Context, cli client.APIClient, id string, targetPort uint32) (string, error) {
	info, err := cli.ContainerInspect(ctx, id)
	if err != nil {
		return "", fmt.Errorf("inspect container: %w", err)
	}

	target := nat.Port(strconv.FormatUint(uint64(targetPort), 10) + "/tcp")
	if info.NetworkSettings != nil {
		if bindings := info.NetworkSettings.Ports[target]; len(bindings) > 0 {
			return bindings[0].HostPort, nil
		}
	}
	return "", fmt.Errorf("no host binding for port %s", target)
}

func failed(err error) dockhand.StartResult {
	return dockhand.StartResult{Error: err.Error()}
}
