// Package version reports the build version of the matchups binary.
// Set it at build time with:
//
//	go build -ldflags "-X github.com/ramonehamilton/matchups/internal/version.Version=v1.2.3"
package version

// Service is the name reported by /health and the CLI.
const Service = "matchups"

// Version is the application version. It defaults to "dev".
var Version = "dev"

// GetVersion returns the current application version.
func GetVersion() string {
	return Version
}
