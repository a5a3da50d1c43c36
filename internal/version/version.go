package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the bootstrap binaries. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with commit, build time and the Go toolchain and platform it targets.
func Full() string {
	return fmt.Sprintf("version: %s, commit: %s, built at: %s, %s %s/%s",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
