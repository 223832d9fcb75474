package solver

import (
	"github.com/armon/go-radix"

	"github.com/zeroinstall-go/zeroinstall/model"
)

// restrictionIndex is the solver's `_restrictions` state (spec §4.F):
// restrictions contributed by already-selected implementations, indexed by
// the interface they constrain. Backed by the teacher's
// github.com/armon/go-radix, the same structure solver.go's
// intersectConstraintsWithImports uses to index constraints by project
// root — repurposed here to index by interface ID instead of import path.
type restrictionIndex struct {
	tree *radix.Tree
}

func newRestrictionIndex() *restrictionIndex {
	return &restrictionIndex{tree: radix.New()}
}

// Get returns the restrictions accumulated so far against interfaceID.
func (ix *restrictionIndex) Get(interfaceID string) []model.Restriction {
	if v, ok := ix.tree.Get(interfaceID); ok {
		return v.([]model.Restriction)
	}
	return nil
}

// Append folds rs into the index and returns a function that undoes exactly
// this append, restoring each touched interface's prior restriction list
// (spec §4.F step 4: "trim `_restrictions` to its pre-append length" on
// backtrack).
func (ix *restrictionIndex) Append(rs []model.Restriction) (undo func()) {
	type saved struct {
		id      string
		prev    []model.Restriction
		hadPrev bool
	}
	touchedOrder := make([]string, 0, len(rs))
	touched := make(map[string]saved, len(rs))
	for _, r := range rs {
		if _, seen := touched[r.InterfaceID]; seen {
			continue
		}
		prev, hadPrev := ix.tree.Get(r.InterfaceID)
		var prevList []model.Restriction
		if hadPrev {
			prevList = prev.([]model.Restriction)
		}
		touched[r.InterfaceID] = saved{id: r.InterfaceID, prev: prevList, hadPrev: hadPrev}
		touchedOrder = append(touchedOrder, r.InterfaceID)
	}

	for _, r := range rs {
		cur := ix.Get(r.InterfaceID)
		ix.tree.Insert(r.InterfaceID, append(append([]model.Restriction{}, cur...), r))
	}

	return func() {
		for _, id := range touchedOrder {
			s := touched[id]
			if s.hadPrev {
				ix.tree.Insert(s.id, s.prev)
			} else {
				ix.tree.Delete(s.id)
			}
		}
	}
}
