package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// Version is a script version as declared in its details block.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Point int `json:"point"`
}

func ParseVersion(s string) (Version, error) {
	matches := versionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return Version{}, fmt.Errorf("invalid version format: %s", s)
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	point, _ := strconv.Atoi(matches[3])

	return Version{Major: major, Minor: minor, Point: point}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Point)
}

// Compare returns:
//
//	-1 if v < other
//	 0 if v == other
//	 1 if v > other
func (v Version) Compare(other Version) int {
	if cmp := compareInt(v.Major, other.Major); cmp != 0 {
		return cmp
	}
	if cmp := compareInt(v.Minor, other.Minor); cmp != 0 {
		return cmp
	}
	return compareInt(v.Point, other.Point)
}

func compareInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}
