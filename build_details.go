package enforcer

import (
	"fmt"
	"runtime"
)

// Set via ldflags at release time; source builds report the defaults.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Version returns the release version, or "dev" for source builds.
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from.
func Commit() string {
	return commit
}

// BuildTime returns the RFC 3339 build timestamp.
func BuildTime() string {
	return buildTime
}

// GoVersion returns the Go runtime version.
func GoVersion() string {
	return runtime.Version()
}

// UserAgent returns the User-Agent sent when documents are fetched by URL.
func UserAgent() string {
	return fmt.Sprintf("openapi-enforcer/%s", version)
}

// BuildInfo returns the build metadata, one "Label: value" pair per line.
func BuildInfo() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild Time: %s\nGo Version: %s",
		Version(), Commit(), BuildTime(), GoVersion())
}
