// Package version reports the build version of the ratewatch binaries.
//
//nolint:revive
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags at build time; CommitHash falls back to VCS build info.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// GetInfo returns "version (shortsha)" or just the version when no commit is known.
func GetInfo() string {
	if CommitHash == "" {
		CommitHash, BuildTime = vcsInfo()
	}
	return format(Version, CommitHash)
}

func vcsInfo() (revision, buildTime string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			buildTime = setting.Value
		}
	}
	return revision, buildTime
}

func format(version, commit string) string {
	if commit == "" {
		return version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", version, commit)
}
