package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dockhand/api"
	"dockhand/bootstrap"
	"dockhand/bridge"
	"dockhand/cmd/dockhand/ui"
	"dockhand/config"
	"dockhand/dialog"
	"dockhand/infra/docker"
	"dockhand/internal/buildinfo"
	"dockhand/internal/logging"
	"dockhand/probe"
	"dockhand/update"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := logging.Configure(logging.LevelInfo); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		slog.Error("Launcher failed.", "err", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var apiPort int
	var composeFile string
	var configPath string
	var project string
	var service string
	var debug bool
	var noColor bool

	cmd := &cobra.Command{
		Use:     "dockhand",
		Short:   "Desktop launcher for the TAK Manager container",
		Version: buildinfo.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ui.ConfigureColors(noColor)

			rt := docker.NewRuntime(composeFile, project, service)
			store := config.NewStore(configPath)
			net := probe.New()
			updates := update.New(buildinfo.Version)
			br := bridge.New(fmt.Sprintf("http://127.0.0.1:%d/healthz", apiPort))

			ctrl := bootstrap.New(net, updates, rt, store, br)
			ctrl.Observe(ui.NewProgress(os.Stderr).Update)

			srv := api.New(ctrl, rt, store, net, updates, browser.OpenURL, dialog.SelectDirectory)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(ctx, apiPort) })
			g.Go(func() error { return ctrl.Run(ctx) })
			return g.Wait()
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	cmd.Flags().IntVar(&apiPort, "api-port", 8050, "Loopback port for the launcher API")
	cmd.Flags().StringVar(&composeFile, "compose-file", "docker-compose.yml", "Compose file describing the backend service")
	cmd.Flags().StringVar(&configPath, "config", config.Path(), "Install configuration file")
	cmd.Flags().StringVar(&project, "project", "dockhand", "Compose project name")
	cmd.Flags().StringVar(&service, "service", "backend", "Service to launch from the compose file")
	return cmd
}
