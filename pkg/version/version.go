// Package version holds build metadata injected at link time via -ldflags.
package version

// These are overridden by the build:
//
//	go build -ldflags "-X github.com/cognitcode/cognitcode/pkg/version.Version=v1.0.0 ..."
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
