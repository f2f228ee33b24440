/*
Package version reports which duriancare build is running.

The values are stamped at link time:

	go build -ldflags "-X github.com/khanglvm/duriancare/internal/version.Version=v0.3.0 \
	  -X github.com/khanglvm/duriancare/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/duriancare/internal/version.Date=$(date -u +%F)"

An unstamped binary reports itself as a "dev" build.
*/
package version

// Stamped by -ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build identifies a binary. The CLI prints it and the HTTP API returns
// it from /health and /api/info.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the running binary's build.
func Current() Build {
	return Build{Version: Version, Commit: Commit, Date: Date}
}

// Dev reports whether the binary was built without a release tag.
func (b Build) Dev() bool {
	return b.Version == "dev"
}

func (b Build) String() string {
	return FormatVersion(b.Version, b.Commit, b.Date)
}

// GetVersion returns the running build as a display string.
func GetVersion() string {
	return Current().String()
}

// FormatVersion renders a build as "v1.2.0 (commit: abc1234, built:
// 2026-10-15)", or "dev (development build)" for unstamped binaries.
func FormatVersion(version, commit, date string) string {
	if version == "dev" {
		return version + " (development build)"
	}
	return version + " (commit: " + commit + ", built: " + date + ")"
}
