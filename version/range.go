package version

import (
	"fmt"
	"strings"
)

// interval is a half-open range [Lo, Hi). A nil Lo means -∞; a nil Hi means +∞.
type interval struct {
	Lo, Hi *Version
}

func (iv interval) contains(v Version) bool {
	if iv.Lo != nil && v.Compare(*iv.Lo) < 0 {
		return false
	}
	if iv.Hi != nil && v.Compare(*iv.Hi) >= 0 {
		return false
	}
	return true
}

func (iv interval) empty() bool {
	return iv.Lo != nil && iv.Hi != nil && iv.Lo.Compare(*iv.Hi) >= 0
}

func (iv interval) intersect(o interval) (interval, bool) {
	lo := iv.Lo
	if o.Lo != nil && (lo == nil || o.Lo.Compare(*lo) > 0) {
		lo = o.Lo
	}
	hi := iv.Hi
	if o.Hi != nil && (hi == nil || o.Hi.Compare(*hi) < 0) {
		hi = o.Hi
	}
	r := interval{Lo: lo, Hi: hi}
	if r.empty() {
		return interval{}, false
	}
	return r, true
}

// Range is a union of half-open version intervals, matching spec §3's
// VersionRange: "A union of half-open intervals [lo, hi) with optional
// endpoints." The shorthand constraint "not-before X, before Y" from the
// source algorithm corresponds to a single-interval Range.
//
// The zero Range is the full range (-∞, +∞), mirroring the gps `Any()`
// constraint in the teacher's constraints.go.
type Range struct {
	intervals []interval // nil means unconstrained (the full range)
}

// Any returns the unconstrained range, matching every version.
func Any() Range { return Range{} }

// NewConstraint builds a Range from an optional not-before and before bound.
// Either may be the zero Version to signify no bound on that side.
func NewConstraint(notBefore, before Version) Range {
	iv := interval{}
	if !notBefore.IsZero() {
		v := notBefore
		iv.Lo = &v
	}
	if !before.IsZero() {
		v := before
		iv.Hi = &v
	}
	if iv.empty() {
		return Range{intervals: []interval{}} // the empty range, matches nothing
	}
	return Range{intervals: []interval{iv}}
}

// Exactly returns the range containing only v.
func Exactly(v Version) Range {
	hi := bumpForExclusiveHi(v)
	return Range{intervals: []interval{{Lo: &v, Hi: &hi}}}
}

func bumpForExclusiveHi(v Version) Version {
	// Append an empty, modifier-free extra part so the exclusive upper bound
	// sorts strictly above v but below anything v could be a proper prefix
	// of (e.g. 1.0 < bound < 1.0-0 < 1.0-post1 < 1.0.1, so we cannot just
	// say "< 1.0.1").
	parts := make([]part, len(v.parts), len(v.parts)+1)
	copy(parts, v.parts)
	parts = append(parts, part{mod: modNone, ints: []int64{}})
	return Version{parts: parts, raw: v.raw + "-"}
}

// Matches reports whether v falls within any interval of r. An empty Range
// (constructed by NewConstraint with a contradictory bound) matches nothing.
func (r Range) Matches(v Version) bool {
	if r.intervals == nil {
		return true
	}
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether r can never match any version.
func (r Range) IsEmpty() bool {
	return r.intervals != nil && len(r.intervals) == 0
}

// Intersect computes the intersection of r and o, per spec §3: "Supports
// intersection; empty intersection is detectable" via IsEmpty on the result.
func (r Range) Intersect(o Range) Range {
	if r.intervals == nil {
		return o
	}
	if o.intervals == nil {
		return r
	}
	var out []interval
	for _, a := range r.intervals {
		for _, b := range o.intervals {
			if iv, ok := a.intersect(b); ok {
				out = append(out, iv)
			}
		}
	}
	if out == nil {
		out = []interval{}
	}
	return Range{intervals: out}
}

// MatchesAny reports whether r and o have a non-empty intersection.
func (r Range) MatchesAny(o Range) bool {
	return !r.Intersect(o).IsEmpty()
}

func (r Range) String() string {
	if r.intervals == nil {
		return "*"
	}
	if len(r.intervals) == 0 {
		return "<empty>"
	}
	parts := make([]string, len(r.intervals))
	for i, iv := range r.intervals {
		var lo, hi string
		if iv.Lo != nil {
			lo = iv.Lo.String()
		}
		if iv.Hi != nil {
			hi = iv.Hi.String()
		}
		parts[i] = fmt.Sprintf("[%s,%s)", lo, hi)
	}
	return strings.Join(parts, "|")
}
