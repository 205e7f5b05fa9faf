// Package dialog opens the host's native directory picker. Each platform
// is tried through the tools it actually ships: AppleScript on macOS,
// zenity then kdialog on Linux.
package dialog

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const prompt = "Select the backend installation directory"

// SelectDirectory shows the native picker and returns the chosen path.
// An empty path with a nil error means the user cancelled.
func SelectDirectory(ctx context.Context) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return selectDarwin(ctx)
	case "linux":
		return selectLinux(ctx)
	default:
		return "", fmt.Errorf("no directory picker available on %s", runtime.GOOS)
	}
}

func selectDarwin(ctx context.Context) (string, error) {
	script := fmt.Sprintf(`POSIX path of (choose folder with prompt %q)`, prompt)
	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		// osascript exits non-zero when the user cancels.
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

func selectLinux(ctx context.Context) (string, error) {
	if _, err := exec.LookPath("zenity"); err == nil {
		out, err := exec.CommandContext(ctx, "zenity",
			"--file-selection", "--directory", "--title="+prompt).Output()
		if err != nil {
			return "", nil
		}
		return strings.TrimSpace(string(out)), nil
	}
	if _, err := exec.LookPath("kdialog"); err == nil {
		out, err := exec.CommandContext(ctx, "kdialog",
			"--getexistingdirectory", prompt).Output()
		if err != nil {
			return "", nil
		}
		return strings.TrimSpace(string(out)), nil
	}
	return "", fmt.Errorf("no directory picker found: install zenity or kdialog")
}
