// Package buildinfo holds version information injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/masktower/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/masktower/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/masktower/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// CacheVersion identifies the engine in cache keys. Development builds
// include the commit so that cached artifacts from older code are not
// reused.
func CacheVersion() string {
	if Version != "dev" || Commit == "none" {
		return Version
	}
	c := Commit
	if len(c) > 12 {
		c = c[:12]
	}
	return Version + "+" + c
}
