package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func checkAgainst(t *testing.T, body string, status int, current string) (infoErr error, info infoResult) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewForEndpoint(srv.URL, current)
	got, err := c.Check(context.Background())
	return err, infoResult{got.HasUpdate, got.CurrentVersion, got.LatestVersion, got.ReleaseNotes}
}

type infoResult struct {
	hasUpdate       bool
	current, latest string
	notes           string
}

func TestCheck_NewerReleaseHasUpdate(t *testing.T) {
	err, info := checkAgainst(t, `{"tag_name":"v2.1.0","body":"Fixes."}`, http.StatusOK, "2.0.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := infoResult{hasUpdate: true, current: "2.0.0", latest: "2.1.0", notes: "Fixes."}
	if info != want {
		t.Fatalf("Check = %+v, want %+v", info, want)
	}
}

func TestCheck_SameVersionNoUpdate(t *testing.T) {
	err, info := checkAgainst(t, `{"tag_name":"v2.0.0","body":""}`, http.StatusOK, "v2.0.0")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if info.hasUpdate {
		t.Fatal("HasUpdate = true for equal versions")
	}
	if info.notes != "No release notes available." {
		t.Fatalf("ReleaseNotes = %q, want fallback text", info.notes)
	}
}

func TestCheck_MissingTagIsAnError(t *testing.T) {
	err, _ := checkAgainst(t, `{"body":"notes"}`, http.StatusOK, "1.0.0")
	if err == nil {
		t.Fatal("Check succeeded with no tag_name")
	}
}

func TestCheck_ServerErrorIsTransient(t *testing.T) {
	err, _ := checkAgainst(t, `boom`, http.StatusInternalServerError, "1.0.0")
	if err == nil {
		t.Fatal("Check succeeded on 500 response")
	}
}

func TestCheck_UnreachableEndpointIsAnError(t *testing.T) {
	c := NewForEndpoint("http://127.0.0.1:1/releases/latest", "1.0.0")
	if _, err := c.Check(context.Background()); err == nil {
		t.Fatal("Check succeeded against unreachable endpoint")
	}
}
