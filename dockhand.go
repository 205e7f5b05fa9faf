// Package dockhand holds the wire records shared between the bootstrap
// controller, the local HTTP API, and the container runtime.
package dockhand

import "fmt"

// UnknownVersion is recorded for both current and latest version when the
// update check is skipped or fails.
const UnknownVersion = "Unknown"

// StartResult is the container runtime's answer to a start request.
// Port is only meaningful when Success is true and is the effective bound
// host port, which may differ from the configured one.
type StartResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Port    string `json:"port,omitempty"`
}

// BackendURL returns the local address of the backend UI for this result.
func (r StartResult) BackendURL() string {
	return fmt.Sprintf("http://localhost:%s", r.Port)
}

// UpdateInfo describes the outcome of an update check.
type UpdateInfo struct {
	HasUpdate      bool   `json:"has_update"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	ReleaseNotes   string `json:"release_notes"`
	Error          string `json:"error,omitempty"`
}

// UnknownUpdate is what the controller records when no update check could run.
func UnknownUpdate() UpdateInfo {
	return UpdateInfo{
		CurrentVersion: UnknownVersion,
		LatestVersion:  UnknownVersion,
	}
}

// PortStatus is the container runtime's answer to a port availability probe.
type PortStatus struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}
