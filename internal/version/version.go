// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/lvpi/lpsearch/internal/version.Version=v1.0.0"
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata as "<version> (<commit>, <date>)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}
