// Package version holds build metadata, overridden at link time with
// -ldflags "-X github.com/ndewijer/portfolio-yield-tracker/internal/version.Version=...".
package version

// Version is the release of the running binary.
var Version = "dev"
