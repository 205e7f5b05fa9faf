// Package api serves the launcher's local HTTP surface: the JSON endpoints
// the web UI calls for checks, configuration, and container control, plus
// the health endpoint the host bridge handshakes against.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"dockhand"
	"dockhand/bootstrap"
	"dockhand/config"

	"github.com/gorilla/mux"
)

// Runtime is what the handlers need from the container runtime. It is the
// bootstrap contract plus the engine starter used by the run-check
// endpoint.
type Runtime interface {
	bootstrap.ContainerRuntime
	StartEngine(ctx context.Context) error
}

// Controller is the subset of the bootstrap controller the API exposes.
type Controller interface {
	State() bootstrap.State
	SkipUpdate()
	OpenReleasePage()
	RecheckDocker()
	OpenInstallPage()
	Retry()
	SubmitConfig(ctx context.Context, cfg config.Install) error
}

// Server wires the handlers to their collaborators.
type Server struct {
	ctrl    Controller
	rt      Runtime
	store   bootstrap.ConfigStore
	probe   bootstrap.NetworkProbe
	updates bootstrap.UpdateSource

	openURL   func(url string) error
	selectDir func(ctx context.Context) (string, error)
}

// New creates a server. openURL and selectDir are injectable so tests
// don't open browsers or dialogs.
func New(
	ctrl Controller,
	rt Runtime,
	store bootstrap.ConfigStore,
	probe bootstrap.NetworkProbe,
	updates bootstrap.UpdateSource,
	openURL func(string) error,
	selectDir func(context.Context) (string, error),
) *Server {
	return &Server{
		ctrl:      ctrl,
		rt:        rt,
		store:     store,
		probe:     probe,
		updates:   updates,
		openURL:   openURL,
		selectDir: selectDir,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/check-docker-installed", s.handleDockerInstalled).Methods(http.MethodGet)
	r.HandleFunc("/check-docker-running", s.handleDockerRunning).Methods(http.MethodGet)
	r.HandleFunc("/start-container", s.handleStartContainer).Methods(http.MethodPost)
	r.HandleFunc("/stop-container", s.handleStopContainer).Methods(http.MethodPost)
	r.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleSaveConfig).Methods(http.MethodPost)
	r.HandleFunc("/select-directory", s.handleSelectDirectory).Methods(http.MethodGet)
	r.HandleFunc("/check-port/{port:[0-9]+}", s.handleCheckPort).Methods(http.MethodGet)
	r.HandleFunc("/check-update", s.handleCheckUpdate).Methods(http.MethodGet)
	r.HandleFunc("/check-network", s.handleCheckNetwork).Methods(http.MethodGet)
	r.HandleFunc("/open-external-url", s.handleOpenExternalURL).Methods(http.MethodPost)
	r.HandleFunc("/actions/{action}", s.handleAction).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves the API on 127.0.0.1:port and blocks until ctx is
// cancelled. The listener is loopback-only: this surface belongs to the
// local UI, not the network.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	addr := net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve api on %s: %w", addr, err)
	}
	return nil
}

// statusResponse is the UI's view of the launch sequence.
type statusResponse struct {
	Phase      string              `json:"phase"`
	Status     string              `json:"status"`
	LastError  string              `json:"last_error,omitempty"`
	Update     dockhand.UpdateInfo `json:"update"`
	BackendURL string              `json:"backend_url,omitempty"`
}

func statusFromState(st bootstrap.State) statusResponse {
	return statusResponse{
		Phase:      st.Phase.String(),
		Status:     st.Status,
		LastError:  st.LastError,
		Update:     st.Update,
		BackendURL: st.BackendURL,
	}
}
