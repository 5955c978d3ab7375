// Package version holds build information for depscope.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at build time:
// go build -ldflags "-X depscope/internal/version.Version=0.4.0 -X depscope/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is the short version string, with the abbreviated commit when known.
func Info() string {
	if c := commit(); len(c) > 7 {
		return Version + " (" + c[:7] + ")"
	}
	return Version
}

// Full is the multi-line output of `depscope version`.
func Full() string {
	return fmt.Sprintf("depscope version %s\nCommit: %s\nBuilt: %s\nGo: %s %s/%s",
		Version, commit(), BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// commit prefers the ldflags value and falls back to the VCS revision the
// toolchain stamped into the binary.
func commit() string {
	if Commit != "unknown" && Commit != "" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}
