// Package version holds the build version, overridable with
// -ldflags "-X walksim/pkg/version.Version=...".
package version

// Version is the semantic version of the build.
var Version = "v0.3.0"

// Commit is the source revision, empty for local builds.
var Commit = ""

// String returns the version with the commit when known.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
