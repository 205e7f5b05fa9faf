package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"dockhand"
	"dockhand/config"

	"github.com/gorilla/mux"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusFromState(s.ctrl.State()))
}

func (s *Server) handleDockerInstalled(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"installed": s.rt.Installed(r.Context())})
}

// handleDockerRunning reports the daemon state. When the daemon is down it
// tries to launch the engine once and re-checks, so a UI poll is enough to
// bring Docker Desktop up.
func (s *Server) handleDockerRunning(w http.ResponseWriter, r *http.Request) {
	if s.rt.Running(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]bool{"running": true})
		return
	}
	if err := s.rt.StartEngine(r.Context()); err != nil {
		slog.Warn("Could not start the Docker engine.", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"running": s.rt.Running(r.Context())})
}

func (s *Server) handleStartContainer(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !cfg.Complete() {
		writeError(w, http.StatusInternalServerError, "no backend port specified")
		return
	}

	result := s.rt.Start(r.Context(), cfg)
	if !result.Success {
		writeError(w, http.StatusInternalServerError, result.Error)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStopContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.Stop(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dockhand.StartResult{Success: true})
}

type configPayload struct {
	InstallDir  string `json:"install_dir"`
	BackendPort string `json:"backend_port"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.store.Load()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, configPayload{InstallDir: cfg.InstallDir, BackendPort: cfg.BackendPort})
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var payload configPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := config.Install{InstallDir: payload.InstallDir, BackendPort: payload.BackendPort}
	if err := s.ctrl.SubmitConfig(r.Context(), cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSelectDirectory(w http.ResponseWriter, r *http.Request) {
	path, err := s.selectDir(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) handleCheckPort(w http.ResponseWriter, r *http.Request) {
	port, err := strconv.Atoi(mux.Vars(r)["port"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid port")
		return
	}
	writeJSON(w, http.StatusOK, s.rt.PortAvailable(r.Context(), port))
}

// handleCheckUpdate never fails the request: update-check errors are
// downgraded to "no update" with the error attached, matching the
// best-effort contract.
func (s *Server) handleCheckUpdate(w http.ResponseWriter, r *http.Request) {
	info, err := s.updates.Check(r.Context())
	if err != nil {
		info = dockhand.UnknownUpdate()
		info.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCheckNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"connected": s.probe.Connected(r.Context())})
}

type urlPayload struct {
	URL string `json:"url"`
}

func (s *Server) handleOpenExternalURL(w http.ResponseWriter, r *http.Request) {
	var payload urlPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.URL == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.openURL(payload.URL); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleAction forwards a user decision into the bootstrap controller.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["action"] {
	case "skip-update":
		s.ctrl.SkipUpdate()
	case "open-release":
		s.ctrl.OpenReleasePage()
	case "recheck-docker":
		s.ctrl.RecheckDocker()
	case "open-install":
		s.ctrl.OpenInstallPage()
	case "retry":
		s.ctrl.Retry()
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
