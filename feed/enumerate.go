package feed

import (
	"context"
	"sort"

	"github.com/zeroinstall-go/zeroinstall/model"
)

// Enumerator produces the ordered candidate list the solver explores for
// one interface (spec §4.E): load the interface's feed(s), flatten them,
// apply the user's preferences, filter to suitable candidates, and sort by
// preference (most preferred first).
type Enumerator struct {
	Provider    Provider
	Preferences model.PreferencesStore
}

// NewEnumerator builds an Enumerator over provider and prefs. A nil prefs
// behaves as though every interface uses default preferences (policy
// Stable, no overrides, nothing blacklisted).
func NewEnumerator(provider Provider, prefs model.PreferencesStore) *Enumerator {
	return &Enumerator{Provider: provider, Preferences: prefs}
}

// Candidates returns interfaceID's candidates ordered most-preferred-first,
// having already applied ctx's stability floor combined with the
// interface's own policy override, and masked any blacklisted
// implementation out entirely (spec §4.E step 3: "blacklist masks a
// candidate out of consideration, distinct from simply ranking it last").
//
// ctx.StabilityFloor is treated as the global default; the per-interface
// policy from Preferences narrows (but never loosens) it.
func (e *Enumerator) Candidates(pctx context.Context, interfaceID string, ctx model.SuitabilityContext) ([]model.SelectionCandidate, error) {
	f, err := e.Provider.Get(pctx, interfaceID)
	if err != nil {
		return nil, err
	}

	prefs := model.InterfacePreferences{StabilityPolicy: model.Stable}
	if e.Preferences != nil {
		prefs = e.Preferences.Get(interfaceID)
	}

	effCtx := ctx
	if prefs.StabilityPolicy != 0 && prefs.StabilityPolicy > ctx.StabilityFloor {
		effCtx.StabilityFloor = prefs.StabilityPolicy
	}

	impls := f.Simplify()
	candidates := make([]model.SelectionCandidate, 0, len(impls))
	for _, impl := range impls {
		if prefs.Blacklisted != nil && prefs.Blacklisted[impl.ID] {
			continue
		}
		userStability := model.Stability(0)
		if prefs.UserStability != nil {
			userStability = prefs.UserStability[impl.ID]
		}
		candidates = append(candidates, model.NewSelectionCandidate(impl, f.ID, userStability, effCtx))
	}

	suitable := candidates[:0:0]
	for _, c := range candidates {
		if c.IsSuitable() {
			suitable = append(suitable, c)
		}
	}

	sort.SliceStable(suitable, func(i, j int) bool { return suitable[i].Less(suitable[j]) })
	return suitable, nil
}
