// Package versioncmp compares release version strings.
//
// Dotted numeric versions of any length (2024.01.01.1), optionally followed
// by a Python-style pre-release marker (1.2a1, 2024.1.1.1rc2, 1.2.3-beta.1),
// are compared release component by component and then by marker. Anything
// else is parsed with Masterminds semver.
package versioncmp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersion indicates a version string that cannot be parsed.
var ErrInvalidVersion = errors.New("invalid version")

var (
	preReleasePattern = regexp.MustCompile(`^v?(\d+(?:\.\d+)*)[-_.]?(a|alpha|b|beta|c|rc|pre|preview)[-_.]?(\d*)$`)
	numericPattern    = regexp.MustCompile(`^v?\d+(?:\.\d+)*$`)
)

// Result is the outcome of comparing two versions.
type Result struct {
	V1 string
	V2 string

	// Order is -1, 0 or 1 as V1 is lower than, equal to or higher than V2.
	Order int
}

// Less reports whether V1 is strictly lower than V2.
func (r Result) Less() bool {
	return r.Order < 0
}

// Compare compares v1 with v2.
func Compare(v1, v2 string) (Result, error) {
	v1, v2 = strings.TrimSpace(v1), strings.TrimSpace(v2)
	res := Result{V1: v1, V2: v2}

	p1, ok1 := split(v1)
	p2, ok2 := split(v2)
	if ok1 && ok2 {
		res.Order = p1.compare(p2)
		return res, nil
	}

	sv1, err := Parse(v1)
	if err != nil {
		return res, err
	}
	sv2, err := Parse(v2)
	if err != nil {
		return res, err
	}
	res.Order = sv1.Compare(sv2)
	return res, nil
}

// parts is a dotted numeric release with an optional pre-release marker.
type parts struct {
	release string
	label   string // "", "a", "b" or "rc"
	num     uint64
}

func split(v string) (parts, bool) {
	if numericPattern.MatchString(v) {
		return parts{release: v}, true
	}
	m := preReleasePattern.FindStringSubmatch(v)
	if m == nil {
		return parts{}, false
	}
	num, _ := strconv.ParseUint(m[3], 10, 64)
	return parts{release: m[1], label: preReleaseLabel(m[2]), num: num}, true
}

// compare orders releases first; a pre-release sorts before its release.
func (p parts) compare(o parts) int {
	if c := compareNumeric(p.release, o.release); c != 0 {
		return c
	}
	switch {
	case p.label == o.label:
		return cmpUint(p.num, o.num)
	case p.label == "":
		return 1
	case o.label == "":
		return -1
	case p.label < o.label:
		return -1
	default:
		return 1
	}
}

func cmpUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Parse parses a single version as semver. Pre-release markers are
// normalised, so at most three release components are accepted.
func Parse(v string) (*semver.Version, error) {
	if m := preReleasePattern.FindStringSubmatch(v); m != nil {
		num := m[3]
		if num == "" {
			num = "0"
		}
		v = fmt.Sprintf("%s-%s.%s", m[1], preReleaseLabel(m[2]), num)
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidVersion, v, err)
	}
	return sv, nil
}

func preReleaseLabel(s string) string {
	switch s {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default:
		return "rc"
	}
}

// compareNumeric compares dotted numeric versions, padding the shorter one
// with zeros so that 1.0 equals 1.0.0.
func compareNumeric(v1, v2 string) int {
	p1 := strings.Split(strings.TrimPrefix(v1, "v"), ".")
	p2 := strings.Split(strings.TrimPrefix(v2, "v"), ".")
	for i := 0; i < len(p1) || i < len(p2); i++ {
		a, b := segment(p1, i), segment(p2, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

func segment(parts []string, i int) uint64 {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.ParseUint(parts[i], 10, 64)
	return n
}
