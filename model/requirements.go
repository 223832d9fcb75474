package model

import "github.com/zeroinstall-go/zeroinstall/version"

// Requirements is the top-level input to a solve: which interface to
// select, optionally under a named command, on which host architecture,
// with which language preferences and per-interface version bounds (spec
// §4.D).
type Requirements struct {
	InterfaceID  string
	Command      string
	Architecture Architecture
	// Languages is preference order, most preferred first; empty means no
	// preference (any language is acceptable, unordered).
	Languages []string
	// VersionConstraints holds an explicit user- or caller-supplied bound
	// per interface, keyed by InterfaceID. Absent entries mean Any().
	VersionConstraints map[string]version.Range
}

// ConstraintFor returns the explicit constraint requested for id, or
// version.Any() if none was given.
func (r Requirements) ConstraintFor(id string) version.Range {
	if r.VersionConstraints == nil {
		return version.Any()
	}
	if rng, ok := r.VersionConstraints[id]; ok {
		return rng
	}
	return version.Any()
}

// EffectiveVersions computes the version range an interface must satisfy:
// the explicit requirements constraint intersected with every restriction
// accumulated so far (from already-selected implementations) that targets
// the same interface (spec §4.D).
func EffectiveVersions(id string, req Requirements, restrictions []Restriction) version.Range {
	rng := req.ConstraintFor(id)
	for _, r := range restrictions {
		if r.InterfaceID == id {
			rng = rng.Intersect(r.Versions)
		}
	}
	return rng
}
