// Package version parses, compares and bumps semantic versions of toolkits and runtimes.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed semantic version
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string // without the leading '-'
}

// Parse parses a semantic version such as "1.2.3" or "0.1.0-preview".
// A leading "v" is accepted. Build metadata is ignored.
func Parse(s string) (Version, error) {
	canonical := canonical(s)
	if canonical == "" {
		return Version{}, fmt.Errorf("'%s' is not a valid semantic version", s)
	}

	core := strings.TrimPrefix(canonical, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("'%s' is not a valid semantic version", s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("'%s' is not a valid semantic version", s)
		}
		nums[i] = n
	}

	return Version{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: strings.TrimPrefix(semver.Prerelease(canonical), "-"),
	}, nil
}

// MustParse is like Parse but panics on invalid input
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s is a full major.minor.patch semantic version
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// canonical returns the x/mod/semver canonical form of s, requiring all three components
func canonical(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	if !semver.IsValid(s) {
		return ""
	}
	// semver accepts shorthands like v1 and v1.2; toolkit versions must be complete
	core := strings.TrimPrefix(s, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	if strings.Count(core, ".") != 2 {
		return ""
	}
	return semver.Canonical(s)
}

// IsPrerelease reports whether the version carries a pre-release tag
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// WithoutPrerelease returns the version with its pre-release tag removed
func (v Version) WithoutPrerelease() Version {
	v.Prerelease = ""
	return v
}

// String formats the version without a leading "v"
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Compare returns -1, 0 or +1 comparing v with other using semantic version precedence
func (v Version) Compare(other Version) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// NextMinor returns the next minor version, dropping any pre-release tag
func (v Version) NextMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// NextPatch returns the next patch version, dropping any pre-release tag
func (v Version) NextPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// Compare compares two version strings. Invalid versions sort before valid ones.
func Compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}
