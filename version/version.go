// Package version implements the Zero Install dotted-decimal version grammar:
// a sequence of dotted-integer segments separated by named modifiers
// `pre < rc < (none) < post`. See https://docs.0install.net/specifications/feed/#version-numbers.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// modifier ranks the named separators between dotted-integer segments.
// The zero value, modNone, sorts after pre/rc and before post, matching the
// source grammar's `pre < rc < (none) < post` ordering.
type modifier int8

const (
	modPre modifier = iota - 2
	modRC
	modNone
	modPost
)

func (m modifier) String() string {
	switch m {
	case modPre:
		return "pre"
	case modRC:
		return "rc"
	case modPost:
		return "post"
	default:
		return ""
	}
}

// part is one dotted-integer run together with the modifier that preceded it.
// The first part in a Version always has modNone.
type part struct {
	mod modifier
	ints []int64
}

// Version is an immutable, totally ordered Zero Install version number.
type Version struct {
	parts []part
	raw   string
}

// InvalidVersion is returned by Parse when the input does not match the
// dotted-decimal grammar.
type InvalidVersion struct {
	Input string
	Cause string
}

func (e *InvalidVersion) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Cause)
}

// Parse parses a dotted-decimal version string such as "1.2.3-pre4-post1".
//
// Grammar: segment (separator segment)*, where segment is digits separated
// by '.' and separator is one of "-pre", "-rc", "-post", or "-" (bare hyphen,
// equivalent to modNone — used to let a version start a new dotted-integer
// run without a modifier word, as in upstream's "1.0-1").
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &InvalidVersion{Input: s, Cause: "empty string"}
	}

	var parts []part
	mod := modNone
	rest := s
	first := true
	for {
		var segment string
		if idx := strings.IndexByte(rest, '-'); idx >= 0 {
			segment = rest[:idx]
			rest = rest[idx+1:]
		} else {
			segment = rest
			rest = ""
		}

		ints, err := parseInts(segment, first)
		if err != nil {
			return Version{}, &InvalidVersion{Input: s, Cause: err.Error()}
		}
		parts = append(parts, part{mod: mod, ints: ints})
		first = false

		if rest == "" {
			break
		}

		switch {
		case strings.HasPrefix(rest, "pre"):
			mod = modPre
			rest = rest[3:]
		case strings.HasPrefix(rest, "rc"):
			mod = modRC
			rest = rest[2:]
		case strings.HasPrefix(rest, "post"):
			mod = modPost
			rest = rest[4:]
		default:
			mod = modNone
		}
	}

	return Version{parts: parts, raw: s}, nil
}

// MustParse is Parse, panicking on error. Intended for literals in tests and
// static tables, never for untrusted input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func parseInts(segment string, allowEmpty bool) ([]int64, error) {
	if segment == "" {
		if allowEmpty {
			return nil, errors.New("version must start with a digit")
		}
		return []int64{0}, nil
	}
	fields := strings.Split(segment, ".")
	ints := make([]int64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil || n < 0 {
			return nil, errors.Errorf("segment %q is not a non-negative integer", f)
		}
		ints[i] = n
	}
	return ints, nil
}

func (v Version) String() string {
	if v.raw != "" {
		return v.raw
	}
	return "0"
}

// IsZero reports whether v is the zero Version (never produced by Parse).
func (v Version) IsZero() bool { return v.parts == nil }

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
//
// Comparison walks the two dotted-integer part lists pairwise: within a part,
// the rank of the modifier that introduces it is compared first, then the
// integer runs compare lexicographically (shorter run that is a strict
// prefix of the longer sorts first, mirroring golang/dep's semver-derived
// comparator); a trailing extra part
// on either side breaks the final tie by treating the missing side's implicit
// part as modNone/empty, which sorts before any non-empty continuation.
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		var a, b part
		aOK, bOK := i < len(v.parts), i < len(o.parts)
		if aOK {
			a = v.parts[i]
		}
		if bOK {
			b = o.parts[i]
		}
		if !aOK || !bOK {
			// The shorter version is "less" only if the longer one's extra
			// part is modNone-or-later; a trailing "-pre..." part makes the
			// longer version the *lesser* one (pre-releases sort low).
			if !aOK {
				if b.mod < modNone {
					return 1
				}
				return -1
			}
			if a.mod < modNone {
				return -1
			}
			return 1
		}
		if a.mod != b.mod {
			if a.mod < b.mod {
				return -1
			}
			return 1
		}
		if c := compareIntRuns(a.ints, b.ints); c != 0 {
			return c
		}
	}
	return 0
}

func compareIntRuns(a, b []int64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o are structurally identical.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Hash returns a value such that Equal(a,b) implies Hash(a) == Hash(b),
// satisfying the Version-total-order testable property in the spec.
func (v Version) Hash() string {
	var b strings.Builder
	for _, p := range v.parts {
		fmt.Fprintf(&b, "%s:", p.mod)
		for _, n := range p.ints {
			fmt.Fprintf(&b, "%d.", n)
		}
		b.WriteByte(';')
	}
	return b.String()
}
