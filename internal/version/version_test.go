package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func setLinkerValues(t *testing.T, version, commit, date string) {
	t.Helper()
	saved := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = saved[0], saved[1], saved[2] })
	Version, Commit, Date = version, commit, date
}

func stampedBuild(mainVersion string, settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Path: "github.com/rbright/scribe", Version: mainVersion}, Settings: settings}, true
	}
}

func TestResolvePrefersLinkerValues(t *testing.T) {
	setLinkerValues(t, "1.2.3", "abc123", "2026-02-18")

	info := resolve(stampedBuild("v9.9.9",
		debug.BuildSetting{Key: "vcs.revision", Value: "ffffffffffffffffffff"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	))
	require.Equal(t, Info{Version: "1.2.3", Commit: "abc123", Date: "2026-02-18", GoVersion: runtime.Version()}, info)
	require.Equal(t, "scribe 1.2.3 (commit=abc123, date=2026-02-18, go="+runtime.Version()+")", info.String())
}

func TestResolveFallsBackToToolchainStamps(t *testing.T) {
	setLinkerValues(t, "dev", "none", "unknown")

	info := resolve(stampedBuild("v0.4.0",
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		debug.BuildSetting{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	))
	require.Equal(t, "0.4.0", info.Version)
	require.Equal(t, "0123456789ab", info.Commit)
	require.Equal(t, "2026-10-01T12:00:00Z", info.Date)
	require.True(t, info.Dirty)
	require.Contains(t, info.String(), "commit=0123456789ab-dirty")
}

func TestResolveIgnoresDevelBuilds(t *testing.T) {
	setLinkerValues(t, "dev", "none", "unknown")

	info := resolve(stampedBuild("(devel)"))
	require.Equal(t, "dev", info.Version)
	require.Equal(t, "none", info.Commit)

	info = resolve(func() (*debug.BuildInfo, bool) { return nil, false })
	require.Equal(t, "scribe dev (commit=none, date=unknown, go="+runtime.Version()+")", info.String())
}
