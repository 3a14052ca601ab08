// Package version reports build metadata. Release builds inject it with
// -ldflags; otherwise it comes from what the Go toolchain stamped into the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build metadata of the running binary.
type Info struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Dirty     bool
}

// Get resolves Info for the running binary.
func Get() Info {
	return resolve(debug.ReadBuildInfo)
}

// resolve prefers ldflags values and fills the rest from build info.
func resolve(read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}

	build, ok := read()
	if !ok || build == nil {
		return info
	}
	if info.Version == "dev" && build.Main.Version != "" && build.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(build.Main.Version, "v")
	}

	vcsCommit := info.Commit == "none"
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if vcsCommit {
				info.Commit = setting.Value[:min(len(setting.Value), 12)]
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = setting.Value
			}
		case "vcs.modified":
			info.Dirty = vcsCommit && setting.Value == "true"
		}
	}
	return info
}

func (i Info) String() string {
	commit := i.Commit
	if i.Dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("scribe %s (commit=%s, date=%s, go=%s)", i.Version, commit, i.Date, i.GoVersion)
}

// String renders Get for `scribe version`.
func String() string {
	return Get().String()
}
