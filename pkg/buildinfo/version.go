// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/waterfall/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/waterfall/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/waterfall/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/waterfall
package buildinfo

import "fmt"

// Set via -ldflags; see the package comment.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on one line.
func String() string {
	return fmt.Sprintf("waterfall %s (%s, built %s)", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return String() + "\n"
}
