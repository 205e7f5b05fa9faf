// Package update checks the project's release feed for a newer version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dockhand"

	"github.com/juju/version/v2"
)

// DefaultEndpoint is the GitHub API URL of the latest backend release.
const DefaultEndpoint = "https://api.github.com/repos/JShadowNull/TAK-Manager/releases/latest"

const requestTimeout = 10 * time.Second

// Client fetches the latest release and compares it against the running
// version. Failures are transient: the caller decides whether to retry or
// give up silently.
type Client struct {
	endpoint string
	current  string
	http     *http.Client
}

// New creates a client comparing against the given current version.
func New(current string) *Client {
	return NewForEndpoint(DefaultEndpoint, current)
}

// NewForEndpoint creates a client against an arbitrary release endpoint.
func NewForEndpoint(endpoint, current string) *Client {
	return &Client{
		endpoint: endpoint,
		current:  current,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

type release struct {
	TagName string `json:"tag_name"`
	Body    string `json:"body"`
}

// Check fetches the latest release and reports whether it is newer than
// the current version. The returned info always carries both version
// strings with any "v" prefix stripped.
func (c *Client) Check(ctx context.Context) (dockhand.UpdateInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return dockhand.UpdateInfo{}, fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dockhand.UpdateInfo{}, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dockhand.UpdateInfo{}, fmt.Errorf("fetch latest release: status %s", resp.Status)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return dockhand.UpdateInfo{}, fmt.Errorf("decode release: %w", err)
	}
	if rel.TagName == "" {
		return dockhand.UpdateInfo{}, fmt.Errorf("no version information in latest release")
	}

	current := strings.TrimPrefix(c.current, "v")
	latest := strings.TrimPrefix(rel.TagName, "v")

	newer, err := isNewer(latest, current)
	if err != nil {
		return dockhand.UpdateInfo{}, err
	}

	notes := rel.Body
	if notes == "" {
		notes = "No release notes available."
	}

	return dockhand.UpdateInfo{
		HasUpdate:      newer,
		CurrentVersion: current,
		LatestVersion:  latest,
		ReleaseNotes:   notes,
	}, nil
}

func isNewer(latest, current string) (bool, error) {
	lv, err := version.Parse(latest)
	if err != nil {
		return false, fmt.Errorf("parse latest version %q: %w", latest, err)
	}
	cv, err := version.Parse(current)
	if err != nil {
		return false, fmt.Errorf("parse current version %q: %w", current, err)
	}
	return lv.Compare(cv) > 0, nil
}
