// Package version reports build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line. A dev build installed with `go install`
// reports the module version from the embedded build info instead.
func String() string {
	return fmt.Sprintf("raybot %s (commit=%s, date=%s, go=%s)", resolved(), Commit, Date, runtime.Version())
}

func resolved() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return Version
}
