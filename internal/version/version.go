// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X github.com/mj1618/atspi-inspector/internal/version.Version=v0.3.0"
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// String formats the metadata for --version and the MCP server handshake.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + BuildDate + ")"
}
