// Package solver implements the depth-first backtracking search that turns
// a root Requirements into a Selections document (spec §4.F), grounded on
// golang/dep's solver.go: the same "select a candidate, recurse into its
// dependencies, unwind on failure" shape, simplified from dep's bimodal
// project/package model down to 0install's flatter one-implementation-per-
// interface model.
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/sdboyer/constext"

	"github.com/zeroinstall-go/zeroinstall/errs"
	"github.com/zeroinstall-go/zeroinstall/feed"
	"github.com/zeroinstall-go/zeroinstall/model"
	"github.com/zeroinstall-go/zeroinstall/observer"
	"github.com/zeroinstall-go/zeroinstall/selections"
	"github.com/zeroinstall-go/zeroinstall/store"
)

// Solver holds the capabilities a solve needs: candidate enumeration (which
// itself wraps a feed.Provider and a model.PreferencesStore) and a Store to
// check which candidates are already cached.
type Solver struct {
	Enumerator *feed.Enumerator
	Store      store.Store
	Observer   observer.Observer

	// MaxDuration bounds a single solve's wall-clock time, independent of
	// whatever deadline the caller's context already carries. Zero means
	// no internal bound.
	MaxDuration time.Duration
}

// New builds a Solver. obs may be nil, in which case tracing is a no-op.
func New(enumerator *feed.Enumerator, st store.Store, obs observer.Observer) *Solver {
	if obs == nil {
		obs = observer.NopObserver
	}
	return &Solver{Enumerator: enumerator, Store: st, Observer: obs}
}

// UnsatisfiedError is returned when no assignment satisfies req (spec §7
// SolverUnsatisfied): it names the root interface and lists each of the
// root's candidates that was tried and failed because its dependencies
// could not be resolved. Candidates filtered out before being tried, and
// the dependency interfaces where the search ran out, are not listed.
type UnsatisfiedError struct {
	Interface string
	Rejected  []RejectedCandidate
}

// RejectedCandidate records one candidate the solver considered for a
// blocking interface and why it did not work out.
type RejectedCandidate struct {
	ImplementationID string
	Reason           string
}

func (e *UnsatisfiedError) Error() string {
	return "no implementation of " + e.Interface + " satisfies the requirements"
}

// Unwrap lets errors.Is(err, errs.ErrSolverUnsatisfied) succeed.
func (e *UnsatisfiedError) Unwrap() error { return errs.ErrSolverUnsatisfied }

// Solve runs the backtracking search for req. base supplies the parts of
// SuitabilityContext that come from configuration rather than the request
// itself (StabilityFloor, Network, InStore); req's own Architecture and
// Languages take precedence for the suitability check on every interface in
// the solve, matching a single host profile throughout.
func (s *Solver) Solve(ctx context.Context, req model.Requirements, base model.SuitabilityContext) (selections.Selections, error) {
	if base.InStore == nil && s.Store != nil {
		base.InStore = func(impl model.Implementation) bool {
			return s.Store.Contains(impl.Digest)
		}
	}

	// Combine the caller's context with our own internally-derived budget
	// (mirrors golang-dep's deducers.go callManager.setUpCall: either
	// parent cancelling ends the combined context).
	if s.MaxDuration > 0 {
		octx, cancel := context.WithTimeout(context.Background(), s.MaxDuration)
		defer cancel()
		cctx, cancelFunc := constext.Cons(ctx, octx)
		defer cancelFunc()
		ctx = cctx
	}

	r := &run{
		solver:       s,
		ctx:          ctx,
		req:          req,
		base:         base,
		restrictions: newRestrictionIndex(),
		sel:          make(map[string]selections.ImplementationSelection),
		failed:       make(map[string]bool),
	}

	ok, err := r.tryToSolve(req.InterfaceID, req.Command)
	if err != nil {
		return selections.Selections{}, err
	}
	if !ok {
		return selections.Selections{}, &UnsatisfiedError{Interface: req.InterfaceID, Rejected: r.lastRejections}
	}

	return r.finalize(), nil
}

// run holds one solve's mutable state, owned exclusively by this call (spec
// §5: "never shared across goroutines").
type run struct {
	solver *Solver
	ctx    context.Context
	req    model.Requirements
	base   model.SuitabilityContext

	restrictions *restrictionIndex
	sel          map[string]selections.ImplementationSelection
	order        []string
	failed       map[string]bool

	lastRejections []RejectedCandidate
}

// tryToSolve is the recursive step (spec §4.F "TryToSolve(req)").
func (r *run) tryToSolve(interfaceID, command string) (bool, error) {
	if err := r.ctx.Err(); err != nil {
		return false, err
	}

	candidates, err := r.suitableCandidates(interfaceID)
	if err != nil {
		return false, err
	}

	if existing, already := r.sel[interfaceID]; already {
		for _, c := range candidates {
			if c.Implementation.ID == existing.ID {
				return true, nil
			}
		}
		return false, nil
	}

	var rejected []RejectedCandidate
	for _, c := range candidates {
		ok, err := r.tryCandidate(interfaceID, command, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		rejected = append(rejected, RejectedCandidate{ImplementationID: c.Implementation.ID, Reason: "dependency resolution failed"})
	}
	r.lastRejections = rejected
	return false, nil
}

// suitableCandidates returns interfaceID's enumerator-suitable candidates,
// further narrowed by the restrictions accumulated from already-selected
// implementations (spec §4.F step 2).
func (r *run) suitableCandidates(interfaceID string) ([]model.SelectionCandidate, error) {
	ctx := r.base
	ctx.Architecture = r.req.Architecture
	ctx.Languages = r.req.Languages
	ctx.PreviouslyFailed = r.failed

	all, err := r.solver.Enumerator.Candidates(r.ctx, interfaceID, ctx)
	if err != nil {
		return nil, err
	}

	effective := model.EffectiveVersions(interfaceID, r.req, r.restrictions.Get(interfaceID))

	var out []model.SelectionCandidate
	for _, c := range all {
		if !effective.Matches(c.Implementation.Version) {
			continue
		}
		if r.contradictsSelected(c.Implementation.Restrictions) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// contradictsSelected reports whether any of rs conflicts with an
// implementation already selected for the interface it names (spec §4.F
// step 2: "the candidate's own restrictions do not contradict any
// already-selected implementation").
func (r *run) contradictsSelected(rs []model.Restriction) bool {
	for _, restr := range rs {
		if sel, ok := r.sel[restr.InterfaceID]; ok {
			if !restr.Versions.Matches(sel.Version) {
				return true
			}
		}
	}
	return false
}

// tryCandidate selects c for interfaceID under command, recurses into its
// runner and dependencies, and unwinds fully on any failure (spec §4.F step
// 4).
func (r *run) tryCandidate(interfaceID, command string, c model.SelectionCandidate) (bool, error) {
	impl := c.Implementation
	cmd, _ := impl.Command(command)

	implSel := selections.ImplementationSelection{
		InterfaceID:  interfaceID,
		ID:           impl.ID,
		Version:      impl.Version,
		Digest:       impl.Digest,
		Architecture: impl.Architecture,
		LocalPath:    impl.LocalPath,
		FromFeed:     impl.FromFeed,
		Bindings:     impl.Bindings,
		Dependencies: impl.Dependencies,
		Commands:     impl.Commands,
	}

	r.sel[interfaceID] = implSel
	r.order = append(r.order, interfaceID)
	undoRestrictions := r.restrictions.Append(impl.Restrictions)

	ok, err := r.solveNext(impl, cmd)

	if err != nil || !ok {
		undoRestrictions()
		delete(r.sel, interfaceID)
		r.order = r.order[:len(r.order)-1]
		if err == nil {
			r.failed[impl.ID] = true
		}
		return false, err
	}
	return true, nil
}

// solveNext recurses into cmd's runner (if any) and then every dependency
// of impl and cmd: dependencies that carry their own restrictions first,
// the rest after, original document order as the tie-break.
func (r *run) solveNext(impl model.Implementation, cmd *model.Command) (bool, error) {
	if cmd != nil && cmd.Runner != nil {
		ok, err := r.tryToSolve(cmd.Runner.InterfaceID, cmd.Runner.Command)
		if err != nil || !ok {
			return false, err
		}
	}

	deps := append(append([]model.Dependency{}, impl.Dependencies...), cmdDeps(cmd)...)
	orderDependencies(deps)

	for _, dep := range deps {
		ok, err := r.tryToSolve(dep.InterfaceID, dep.Command)
		if err != nil {
			return false, err
		}
		if !ok {
			if dep.Importance == model.Recommended {
				continue
			}
			return false, nil
		}
	}
	return true, nil
}

func cmdDeps(cmd *model.Command) []model.Dependency {
	if cmd == nil {
		return nil
	}
	return cmd.Dependencies
}

// orderDependencies sorts deps in place: those that carry their own
// restrictions (model.Dependency.HasSubDependencies) are tried first, since
// they are most likely to fail and should be discovered early; ties
// preserve document order via a stable sort. Whether a dependency's
// implementation has further dependencies of its own does not affect the
// order.
func orderDependencies(deps []model.Dependency) {
	sort.SliceStable(deps, func(i, j int) bool {
		return deps[i].HasSubDependencies() && !deps[j].HasSubDependencies()
	})
}

// finalize builds the Selections document from the completed run, including
// the root's runner chain (spec §4.G "ordered Commands chain").
func (r *run) finalize() selections.Selections {
	out := selections.Selections{
		InterfaceID:     r.req.InterfaceID,
		CommandName:     r.req.Command,
		Implementations: r.sel,
		Order:           r.order,
	}

	chain := []string{r.req.InterfaceID}
	id, command := r.req.InterfaceID, r.req.Command
	for {
		implSel, ok := r.sel[id]
		if !ok {
			break
		}
		cmd, ok := implSel.Commands[nonEmpty(command)]
		if !ok || cmd.Runner == nil {
			break
		}
		chain = append(chain, cmd.Runner.InterfaceID)
		id, command = cmd.Runner.InterfaceID, cmd.Runner.Command
	}
	out.Commands = chain

	return out
}

func nonEmpty(s string) string {
	if s == "" {
		return "run"
	}
	return s
}
