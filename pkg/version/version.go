// Package version exposes build metadata injected at link time.
package version

// Values are overridden with -ldflags "-X github.com/rshade/adminboard/pkg/version.version=...".
//
//nolint:gochecknoglobals // Link-time injected build metadata.
var (
	version = "0.0.0-dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	return commit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return date
}
