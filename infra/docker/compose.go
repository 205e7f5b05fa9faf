package docker

import (
	"context"
	"fmt"
	"strconv"

	"dockhand/config"

	"github.com/compose-spec/compose-go/v2/cli"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
)

// loadService loads the compose project and returns the backend service
// definition. The install config is injected as compose environment so the
// file can interpolate ${BACKEND_PORT} and ${INSTALL_DIR}.
func (r *Runtime) loadService(ctx context.Context, cfg config.Install) (types.ServiceConfig, error) {
	opts, err := cli.NewProjectOptions(
		[]string{r.composeFile},
		cli.WithName(r.project),
		cli.WithEnv([]string{
			"BACKEND_PORT=" + cfg.BackendPort,
			"INSTALL_DIR=" + cfg.InstallDir,
		}),
		cli.WithOsEnv,
	)
	if err != nil {
		return types.ServiceConfig{}, fmt.Errorf("compose project options: %w", err)
	}

	project, err := opts.LoadProject(ctx)
	if err != nil {
		return types.ServiceConfig{}, fmt.Errorf("load compose file %s: %w", r.composeFile, err)
	}

	svc, ok := project.Services[r.service]
	if !ok {
		return types.ServiceConfig{}, fmt.Errorf("service %q not found in %s", r.service, r.composeFile)
	}
	if svc.Image == "" {
		return types.ServiceConfig{}, fmt.Errorf("service %q has no image", r.service)
	}
	return svc, nil
}

// containerConfigs translates a compose service into Docker create configs.
// Only the subset the backend uses is mapped: image, environment, command,
// published ports, and bind mounts.
func (r *Runtime) containerConfigs(svc types.ServiceConfig, cfg config.Install) (*container.Config, *container.HostConfig, error) {
	env := []string{
		"BACKEND_PORT=" + cfg.BackendPort,
		"INSTALL_DIR=" + cfg.InstallDir,
	}
	for key, value := range svc.Environment {
		if value != nil && key != "BACKEND_PORT" && key != "INSTALL_DIR" {
			env = append(env, key+"="+*value)
		}
	}

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, p := range svc.Ports {
		target := nat.Port(fmt.Sprintf("%d/tcp", p.Target))
		exposed[target] = struct{}{}

		hostPort := p.Published
		if hostPort == "" {
			hostPort = cfg.BackendPort
		}
		if _, err := strconv.Atoi(hostPort); err != nil {
			return nil, nil, fmt.Errorf("published port %q is not numeric", hostPort)
		}
		bindings[target] = []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: hostPort}}
	}
	if len(bindings) == 0 {
		return nil, nil, fmt.Errorf("service %q publishes no ports", svc.Name)
	}

	var binds []string
	for _, v := range svc.Volumes {
		if v.Type != types.VolumeTypeBind {
			continue
		}
		bind := v.Source + ":" + v.Target
		if v.ReadOnly {
			bind += ":ro"
		}
		binds = append(binds, bind)
	}

	containerCfg := &container.Config{
		Image: svc.Image,
		Env:   env,
		Cmd:   []string(svc.Command),
		Labels: map[string]string{
			"com.docker.compose.project": r.project,
			"com.docker.compose.service": r.service,
		},
		ExposedPorts: exposed,
	}
	hostCfg := &container.HostConfig{
		Binds: binds,
		RestartPolicy: container.RestartPolicy{
			Name: container.RestartPolicyUnlessStopped,
		},
		PortBindings: bindings,
	}
	return containerCfg, hostCfg, nil
}
