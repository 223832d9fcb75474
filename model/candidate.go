package model

// NetworkUse controls whether uncached feeds/implementations are eligible.
type NetworkUse int

const (
	NetworkFull NetworkUse = iota
	NetworkMinimal
	NetworkOffline
)

// SuitabilityContext is everything candidate suitability depends on besides
// the candidate itself: the requesting host architecture, the effective
// stability floor (after HelpWithTesting and per-interface overrides), the
// configured network use, and which digests are already in the store.
type SuitabilityContext struct {
	Architecture   Architecture
	Languages      []string
	StabilityFloor Stability
	Network        NetworkUse
	InStore        func(Implementation) bool
	// PreviouslyFailed marks implementation IDs the solver has already
	// tried and rejected in this run (spec §4.E step 4).
	PreviouslyFailed map[string]bool
}

// SelectionCandidate pairs an Implementation with the feed it came from and
// precomputes the predicates/ordering the solver and enumerator need (spec
// §3, §4.E).
type SelectionCandidate struct {
	Implementation Implementation
	FeedSource     string

	suitable      bool
	reason        string
	inStore       bool
	userStability Stability
}

// NewSelectionCandidate evaluates impl's suitability under ctx and the
// user's per-implementation stability override (userStability == 0/unset
// means "use the implementation's own rating").
func NewSelectionCandidate(impl Implementation, feedSource string, userStability Stability, ctx SuitabilityContext) SelectionCandidate {
	c := SelectionCandidate{
		Implementation: impl,
		FeedSource:     feedSource,
		userStability:  userStability,
	}
	c.inStore = impl.IsLocal() || (ctx.InStore != nil && ctx.InStore(impl))
	c.suitable, c.reason = evaluateSuitability(impl, userStability, ctx, c.inStore)
	return c
}

func evaluateSuitability(impl Implementation, userStability Stability, ctx SuitabilityContext, inStore bool) (bool, string) {
	if !impl.Architecture.CompatibleWith(ctx.Architecture) {
		return false, "incompatible architecture " + impl.Architecture.String()
	}
	if ctx.PreviouslyFailed != nil && ctx.PreviouslyFailed[impl.ID] {
		return false, "previously rejected in this solve"
	}

	effective := impl.Stability
	if userStability != 0 {
		effective = userStability
	}
	if effective < ctx.StabilityFloor {
		return false, "below stability floor"
	}

	if !inStore {
		if ctx.Network == NetworkOffline {
			return false, "not cached and network is offline"
		}
		if !impl.HasRetrievalMethod() {
			return false, "not cached and has no retrieval method"
		}
	}

	if len(ctx.Languages) > 0 && len(impl.Languages) > 0 && !languagesOverlap(impl.Languages, ctx.Languages) {
		return false, "no matching language"
	}

	return true, ""
}

func languagesOverlap(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// IsSuitable reports whether the candidate passed every filter.
func (c SelectionCandidate) IsSuitable() bool { return c.suitable }

// RejectionReason explains why IsSuitable is false; empty when suitable.
func (c SelectionCandidate) RejectionReason() string { return c.reason }

// InStore reports whether the candidate's implementation is already cached
// (or local), used both for suitability and for ordering preference.
func (c SelectionCandidate) InStore() bool { return c.inStore }

// effectiveStability returns the user-overridden rating if one was set,
// else the implementation's own.
func (c SelectionCandidate) effectiveStability() Stability {
	if c.userStability != 0 {
		return c.userStability
	}
	return c.Implementation.Stability
}

// Less implements a total preference order: effective (user-overridden)
// stability, then in-store, then the implementation's own stability, then
// version descending, then architecture rank, then implementation ID.
// Cached candidates are preferred whatever the network use, and language
// plays no part in the order. Higher preference sorts first, so
// Less(other) means c is preferred over other.
func (c SelectionCandidate) Less(other SelectionCandidate) bool {
	if cs, os := c.effectiveStability(), other.effectiveStability(); cs != os {
		return cs > os
	}
	if c.inStore != other.inStore {
		return c.inStore
	}
	if c.Implementation.Stability != other.Implementation.Stability {
		return c.Implementation.Stability > other.Implementation.Stability
	}
	if cmp := c.Implementation.Version.Compare(other.Implementation.Version); cmp != 0 {
		return cmp > 0
	}
	if c.archRank() != other.archRank() {
		return c.archRank() > other.archRank()
	}
	return c.Implementation.ID < other.Implementation.ID
}

// archRank prefers a candidate whose CPU exactly matches the native word
// size family over one that only runs via backward compatibility (e.g.
// prefer a native x86_64 build over an i386 build running under
// compatibility on an x86_64 host).
func (c SelectionCandidate) archRank() int {
	if c.Implementation.Architecture.CPU == X86_64 || c.Implementation.Architecture.CPU == PPC64 {
		return 1
	}
	return 0
}
