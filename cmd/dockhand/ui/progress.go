package ui

import (
	"fmt"
	"io"
	"sync"

	"dockhand/bootstrap"
)

// Progress writes one line per phase transition, styled by outcome.
// Subscribe it to the controller with Observe(p.Update).
type Progress struct {
	mu   sync.Mutex
	w    io.Writer
	last bootstrap.Phase
	seen bool
}

func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// Update renders a state snapshot. Repeated snapshots of the same phase
// are dropped so retry loops don't scroll the terminal.
func (p *Progress) Update(st bootstrap.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen && st.Phase == p.last {
		return
	}
	p.last = st.Phase
	p.seen = true

	fmt.Fprintln(p.w, p.line(st))
}

func (p *Progress) line(st bootstrap.State) string {
	switch st.Phase {
	case bootstrap.PhaseReady:
		return SuccessMsg("%s", st.Status) + "\n  " + MutedStyle.Render(st.BackendURL)
	case bootstrap.PhaseFailed:
		msg := ErrorMsg("%s", st.Status)
		if st.LastError != "" {
			msg += "\n  " + MutedStyle.Render(st.LastError)
		}
		return msg
	case bootstrap.PhaseDockerMissing, bootstrap.PhaseWaitingForDocker:
		return WarnMsg("%s", st.Status)
	case bootstrap.PhaseUpdateAvailable:
		return WarnMsg("%s", st.Status) + "\n  " +
			MutedStyle.Render(fmt.Sprintf("%s → %s", st.Update.CurrentVersion, st.Update.LatestVersion))
	default:
		return InfoMsg("%s", st.Status)
	}
}
