package bootstrap

// Phase describes where the launch sequence currently stands.
type Phase uint8

const (
	PhaseInitializing Phase = iota
	PhaseCheckingUpdate
	PhaseUpdateAvailable
	PhaseCheckingDocker
	PhaseDockerMissing
	PhaseWaitingForDocker
	PhaseCheckingConfig
	PhaseAwaitingConfig
	PhaseStartingContainer
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseCheckingUpdate:
		return "checking-update"
	case PhaseUpdateAvailable:
		return "update-available"
	case PhaseCheckingDocker:
		return "checking-docker"
	case PhaseDockerMissing:
		return "docker-missing"
	case PhaseWaitingForDocker:
		return "waiting-for-docker"
	case PhaseCheckingConfig:
		return "checking-config"
	case PhaseAwaitingConfig:
		return "awaiting-config"
	case PhaseStartingContainer:
		return "starting-container"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the launch sequence stops in this phase until a
// user action arrives. Ready is nominal-terminal; Failed is error-terminal;
// the other three wait for a decision or input.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseUpdateAvailable, PhaseDockerMissing, PhaseAwaitingConfig, PhaseReady, PhaseFailed:
		return true
	}
	return false
}
