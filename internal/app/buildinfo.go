package app

import "fmt"

// Build information populated via -ldflags at build time.
// Defaults are meaningful for local development and tests.
var (
    BuildVersion = "0.0.0-dev"
    BuildCommit  = "unknown"
    BuildDate    = "unknown"
)

// VersionString is the human-readable build identifier shown by --version.
func VersionString() string {
    return fmt.Sprintf("%s (commit %s, built %s)", BuildVersion, BuildCommit, BuildDate)
}
