package ui

import (
	"strings"
	"testing"

	"dockhand/bootstrap"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func TestProgressDropsRepeatedPhases(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var sb strings.Builder
	p := NewProgress(&sb)

	p.Update(bootstrap.State{Phase: bootstrap.PhaseCheckingUpdate, Status: "Checking for updates..."})
	p.Update(bootstrap.State{Phase: bootstrap.PhaseCheckingUpdate, Status: "Checking for updates..."})
	p.Update(bootstrap.State{Phase: bootstrap.PhaseCheckingDocker, Status: "Checking Docker installation..."})

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), sb.String())
	}
}

func TestProgressRendersFailureDetail(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var sb strings.Builder
	p := NewProgress(&sb)
	p.Update(bootstrap.State{
		Phase:     bootstrap.PhaseFailed,
		Status:    "Launch failed.",
		LastError: "docker daemon unreachable",
	})

	out := sb.String()
	if !strings.Contains(out, "Launch failed.") || !strings.Contains(out, "docker daemon unreachable") {
		t.Errorf("failure output missing detail: %q", out)
	}
}

func TestProgressRendersReadyURL(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var sb strings.Builder
	p := NewProgress(&sb)
	p.Update(bootstrap.State{
		Phase:      bootstrap.PhaseReady,
		Status:     "Backend is running.",
		BackendURL: "http://localhost:8989",
	})

	if !strings.Contains(sb.String(), "http://localhost:8989") {
		t.Errorf("ready output missing URL: %q", sb.String())
	}
}
