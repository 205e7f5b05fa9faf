// Package buildinfo exposes the version stamped at link time.
package buildinfo

// Version is overridden by the release build with
// -ldflags "-X dockhand/internal/buildinfo.Version=...".
var Version = "5.3.1"
