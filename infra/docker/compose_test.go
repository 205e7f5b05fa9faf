package docker

import (
	"context"
	"net"
	"strings"
	"testing"

	"dockhand/config"
)

func testRuntime() *Runtime {
	return NewRuntime("testdata/docker-compose.yml", "dockhand", "backend")
}

func TestLoadService_InterpolatesInstallConfig(t *testing.T) {
	cfg := config.Install{InstallDir: "/opt/tak", BackendPort: "9090"}

	svc, err := testRuntime().loadService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("loadService: %v", err)
	}

	if svc.Image != "tak-manager:5.3.1" {
		t.Fatalf("Image = %q", svc.Image)
	}
	if len(svc.Ports) != 1 {
		t.Fatalf("Ports = %v, want one entry", svc.Ports)
	}
	if svc.Ports[0].Published != "9090" {
		t.Fatalf("Published = %q, want 9090 from BACKEND_PORT", svc.Ports[0].Published)
	}
	if svc.Ports[0].Target != 8989 {
		t.Fatalf("Target = %d, want 8989", svc.Ports[0].Target)
	}
}

func TestLoadService_UnknownServiceFails(t *testing.T) {
	r := NewRuntime("testdata/docker-compose.yml", "dockhand", "frontend")
	_, err := r.loadService(context.Background(), config.Install{InstallDir: "/opt/tak", BackendPort: "9090"})
	if err == nil {
		t.Fatal("loadService succeeded for unknown service")
	}
	if !strings.Contains(err.Error(), "frontend") {
		t.Fatalf("error = %q, want service name", err)
	}
}

func TestContainerConfigs_MapsPortsEnvAndBinds(t *testing.T) {
	r := testRuntime()
	cfg := config.Install{InstallDir: "/opt/tak", BackendPort: "9090"}

	svc, err := r.loadService(context.Background(), cfg)
	if err != nil {
		t.Fatalf("loadService: %v", err)
	}
	containerCfg, hostCfg, err := r.containerConfigs(svc, cfg)
	if err != nil {
		t.Fatalf("containerConfigs: %v", err)
	}

	bindings := hostCfg.PortBindings["8989/tcp"]
	if len(bindings) != 1 || bindings[0].HostPort != "9090" {
		t.Fatalf("PortBindings[8989/tcp] = %v, want host port 9090", bindings)
	}
	if _, ok := containerCfg.ExposedPorts["8989/tcp"]; !ok {
		t.Fatalf("ExposedPorts = %v, want 8989/tcp", containerCfg.ExposedPorts)
	}

	env := strings.Join(containerCfg.Env, "\n")
	for _, want := range []string{"BACKEND_PORT=9090", "INSTALL_DIR=/opt/tak", "TZ=UTC"} {
		if !strings.Contains(env, want) {
			t.Errorf("Env missing %q: %v", want, containerCfg.Env)
		}
	}

	foundBind := false
	for _, b := range hostCfg.Binds {
		if strings.HasPrefix(b, "/opt/tak:") {
			foundBind = true
		}
	}
	if !foundBind {
		t.Fatalf("Binds = %v, want install dir bind mount", hostCfg.Binds)
	}
}

func TestPortAvailable(t *testing.T) {
	r := testRuntime()
	ctx := context.Background()

	if st := r.PortAvailable(ctx, 80); st.Available {
		t.Fatal("port 80 reported available, outside allowed range")
	}
	if st := r.PortAvailable(ctx, 5432); st.Available || !strings.Contains(st.Message, "reserved") {
		t.Fatalf("port 5432 = %+v, want reserved rejection", st)
	}

	// Occupy a registered-range port and expect an in-use verdict.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port
	if port >= config.PortMin && port <= config.PortMax {
		if st := r.PortAvailable(ctx, port); st.Available {
			t.Fatalf("port %d reported available while bound", port)
		}
	}
}
