// Package version exposes build version information for pyvet.
package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

var version = "dev"

// Version returns the current version string.
func Version() string {
	return version
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}

// Commit returns the VCS revision recorded in build info, truncated to
// twelve characters. Empty when built outside a repository.
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	if idx := slices.IndexFunc(info.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); idx >= 0 {
		val := info.Settings[idx].Value
		if len(val) > 12 {
			return val[:12]
		}
		return val
	}
	return ""
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version   string   `json:"version"`
	Platform  Platform `json:"platform"`
	GoVersion string   `json:"goVersion"`
	GitCommit string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	return Info{
		Version: Version(),
		Platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		GoVersion: GoVersion(),
		GitCommit: Commit(),
	}
}
