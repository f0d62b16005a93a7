package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yukikurage/scrumboard-api/internal/models"
	"golang.org/x/mod/semver"
)

// versionTag is a release tag of the form vMAJOR.MINOR.PATCH.
type versionTag struct {
	major, minor, patch int
}

// firstVersionTag is the tag a project gets when it has no versions yet.
func firstVersionTag(bump models.VersionType) versionTag {
	switch bump {
	case models.VersionMajor:
		return versionTag{major: 1}
	case models.VersionPatch:
		return versionTag{patch: 1}
	default:
		return versionTag{minor: 1}
	}
}

// parseVersionTag accepts exactly vMAJOR.MINOR.PATCH with no prerelease or
// build suffix.
func parseVersionTag(tag string) (versionTag, error) {
	if !semver.IsValid(tag) || semver.Canonical(tag) != tag || semver.Prerelease(tag) != "" {
		return versionTag{}, fmt.Errorf("version tag %q is not of the form vMAJOR.MINOR.PATCH", tag)
	}

	parts := strings.Split(strings.TrimPrefix(tag, "v"), ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return versionTag{}, fmt.Errorf("version tag %q: %w", tag, err)
		}
		nums[i] = n
	}
	return versionTag{major: nums[0], minor: nums[1], patch: nums[2]}, nil
}

func (v versionTag) bump(t models.VersionType) versionTag {
	switch t {
	case models.VersionMajor:
		return versionTag{major: v.major + 1}
	case models.VersionMinor:
		return versionTag{major: v.major, minor: v.minor + 1}
	default:
		return versionTag{major: v.major, minor: v.minor, patch: v.patch + 1}
	}
}

func (v versionTag) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.major, v.minor, v.patch)
}
