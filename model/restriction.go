package model

import "github.com/zeroinstall-go/zeroinstall/version"

// Restriction constrains the allowable versions of some interface, and is
// either declared directly in requirements or contributed by an already
// selected implementation's dependency (spec §3, §4.D).
type Restriction struct {
	InterfaceID string
	Versions    version.Range
}

// Importance controls whether the solver treats a failed dependency as
// fatal (Essential) or skips it and continues (Recommended).
type Importance int

const (
	Essential Importance = iota
	Recommended
)

// Dependency is an implementation's (or command's) requirement on another
// interface, carrying its own restriction plus metadata the solver threads
// through recursively.
type Dependency struct {
	InterfaceID string
	Versions    version.Range
	Importance  Importance
	// Command names the <command> of the dependency to select, if any
	// (e.g. "compile" for a build-time-only tool); empty means the
	// dependency's default command.
	Command string
	// Restrictions are additional, dependency-scoped constraints this
	// dependency places on other interfaces (spec: a <restricts> element
	// without its own binding).
	Restrictions []Restriction
}

// AsRestriction returns the Restriction this dependency places on its own
// InterfaceID, for folding into the solver's accumulated restriction list.
func (d Dependency) AsRestriction() Restriction {
	return Restriction{InterfaceID: d.InterfaceID, Versions: d.Versions}
}

// HasSubDependencies reports whether this dependency carries restrictions
// of its own on other interfaces — used to order dependency resolution
// (restriction-bearing deps first, then the rest). It does not look at
// whether the dependency's implementation has further dependencies.
func (d Dependency) HasSubDependencies() bool {
	return len(d.Restrictions) > 0
}
