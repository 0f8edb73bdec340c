package common

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/miportal/portal/internal/common.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// GetModuleBuildInfo reports the portal version and VCS revision. Values
// from ldflags win over the module build info embedded by the toolchain.
func GetModuleBuildInfo() (string, string, bool) {
	if Version != "dev" {
		return Version, GitCommit, true
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", "", false
	}

	version := info.Main.Version
	if len(version) == 0 || version == "(devel)" {
		version = Version
	}

	revision := GitCommit
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) > 0 {
			revision = setting.Value
		}
	}

	return version, revision, true
}

// GetUserAgent returns the User-Agent sent with every portal API request.
func GetUserAgent() string {
	version, _, ok := GetModuleBuildInfo()
	if !ok {
		version = Version
	}
	return fmt.Sprintf("miportal/%s", version)
}
