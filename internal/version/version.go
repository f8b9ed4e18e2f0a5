package version

import "fmt"

// Injected at build time:
//
//	go build -ldflags "-X github.com/alexzimmer/portfolio/internal/version.Version=v1.4.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// ShortCommit returns the first seven characters of the commit hash.
func ShortCommit() string {
	if len(GitCommit) >= 7 {
		return GitCommit[:7]
	}
	return GitCommit
}

// String is used for --version output and the probe User-Agent.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, ShortCommit(), BuildDate)
}
