package pkgmodel

import (
	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two version strings for display purposes only
// (the install command's --verbose listing) — it
// never participates in resolution, which always resolves by the
// literal requested version ref, never by constraint. When both strings
// parse as semver, they compare numerically; when either does not
// (branch names, commit SHAs, the literal "master"), comparison falls
// back to a plain lexical ordering so every version string still sorts
// somewhere.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)

	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
