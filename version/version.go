// Package version holds the version of safeio.
// The values are set at build time via:
//
//     go build -ldflags "-X github.com/sahib/safeio/version.GitRev=..."
package version

import (
	"fmt"
	"runtime"
	"strconv"
)

var (
	// Major will be incremented on incompatible changes of the file formats.
	Major = "0"
	// Minor will be incremented on new features.
	Minor = "1"
	// Patch should be incremented on every released change.
	Patch = "0"
	// ReleaseType is "beta", "alpha" or "" for final releases
	ReleaseType = "beta"
	// GitRev is the current HEAD of git of this release
	GitRev = ""
	// BuildTime is the ISO8601 timestamp of the current build
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Semver    string `yaml:"semver"`
	GitRev    string `yaml:"git_rev,omitempty"`
	BuildTime string `yaml:"build_time,omitempty"`
	GoVersion string `yaml:"go_version"`
	Platform  string `yaml:"platform"`
}

func parseNum(v string) (int, error) {
	if v == "" {
		return 0, nil
	}

	return strconv.Atoi(v)
}

// Numbers returns (major, minor, patch). Parts that were set to
// something non-numeric at build time give an error.
func Numbers() (major, minor, patch int, err error) {
	if major, err = parseNum(Major); err != nil {
		return 0, 0, 0, fmt.Errorf("bad major version: %v", err)
	}

	if minor, err = parseNum(Minor); err != nil {
		return 0, 0, 0, fmt.Errorf("bad minor version: %v", err)
	}

	if patch, err = parseNum(Patch); err != nil {
		return 0, 0, 0, fmt.Errorf("bad patch version: %v", err)
	}

	return major, minor, patch, nil
}

// String returns "vMaj.Min.Patch[-type][+rev]".
func String() string {
	base := fmt.Sprintf("v%s.%s.%s", Major, Minor, Patch)
	if ReleaseType != "" {
		base += "-" + ReleaseType
	}

	if len(GitRev) >= 7 {
		base += "+" + GitRev[:7]
	}

	return base
}

// Current returns the Info of this binary.
func Current() Info {
	return Info{
		Semver:    String(),
		GitRev:    GitRev,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
