// Package version holds the build-time identifiers cmd/wheelly and
// cmd/simwheelly print from --version and report in their status
// handlers; linked in via -ldflags at release build time, left at their
// zero values for a plain `go build`/`go run`.
package version

var (
	// Version is the released wheelly/simwheelly version tag.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
