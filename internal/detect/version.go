package detect

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// versionPattern matches the release number in the first line of
// `ffmpeg -version` output, e.g. "ffmpeg version 6.0-6ubuntu1 Copyright ...".
// Git snapshot builds ("N-113104-g...") carry no release number and yield
// no match.
var versionPattern = regexp.MustCompile(`ffmpeg version (?:n)?(\d+(?:\.\d+){0,2})`)

// ParseVersion extracts the FFmpeg release number from a version banner line.
// Returns "" when no release number is present.
func ParseVersion(line string) string {
	matches := versionPattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// canonicalVersion returns the version in canonical semver format.
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// IsOlderVersion reports whether v is older than other. An unparseable or
// empty version always compares older than a valid one.
func IsOlderVersion(v, other string) bool {
	vCanon := canonicalVersion(v)
	otherCanon := canonicalVersion(other)

	if !semver.IsValid(vCanon) {
		return semver.IsValid(otherCanon)
	}
	if !semver.IsValid(otherCanon) {
		return false
	}
	return semver.Compare(vCanon, otherCanon) < 0
}
