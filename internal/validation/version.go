package validation

import (
	"regexp"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// versionPattern is the accepted version format. It is stricter than semver.NewVersion,
// which also accepts "v1.0.0" and "1.0".
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.-]+)?$`)

// IsValidVersion reports whether s is an X.Y.Z[-pre] version.
func IsValidVersion(s string) bool {
	return versionPattern.MatchString(s)
}

// CompareVersions orders two valid versions by semver precedence. Versions that fail to
// parse sort before those that do, then lexically.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return compareStrings(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// SortVersions sorts versions ascending by semver precedence.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		return CompareVersions(versions[i], versions[j]) < 0
	})
}

// Bump levels accepted by BumpVersion
const (
	BumpPatch = "patch"
	BumpMinor = "minor"
	BumpMajor = "major"
)

// BumpVersion increments version at the given level. Pre-release suffixes are dropped.
func BumpVersion(version, level string) (string, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", err
	}
	var next semver.Version
	switch level {
	case BumpMajor:
		next = v.IncMajor()
	case BumpMinor:
		next = v.IncMinor()
	default:
		next = v.IncPatch()
	}
	return next.String(), nil
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
