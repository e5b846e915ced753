// Package buildinfo holds version and build metadata stamped at compile time via ldflags.
package buildinfo

import (
	"fmt"
	"runtime"
	"time"
)

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// startTime records when the process started.
var startTime = time.Now()

// Info returns compile-time and platform metadata. This is the static
// information appropriate for "wampcli version" output.
func Info() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_time": BuildTime,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
	}
}

// Uptime returns the duration since process start.
func Uptime() time.Duration {
	return time.Since(startTime).Truncate(time.Second)
}

// String returns a one-line summary for logging.
func String() string {
	return fmt.Sprintf("gowamp-client %s (%s) built %s", Version, GitCommit, BuildTime)
}

// Agent returns the value advertised in a HELLO message's "agent" detail:
// an opaque, version-tagged identifier for this implementation.
func Agent() string {
	return fmt.Sprintf("gowamp-client/%s", Version)
}
