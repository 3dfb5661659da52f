// Package transition selects the set of transitions enabled by a given
// event against the current configuration and resolves conflicts between
// them, per spec.md SS4.H. Selection is optimal-transition-per-state
// (first enabled transition in document order wins, and a descendant
// state's enabled transition takes priority over an ancestor's), with
// parallel-region conflicts broken by document order of the conflicting
// transitions themselves.
//
// Grounded on the teacher's statechart.go findEnabledTransition (deepest
// active state wins, first matching transition per state), generalized
// from a single linear scan over one active branch to full parallel
// region awareness via internal/hierarchy.
package transition

import (
	"sort"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/evaluator"
	"github.com/comalice/scxmlgo/internal/hierarchy"
)

// Candidate is one transition selected as enabled for the current step,
// paired with the source state it was selected from (for exit-set
// computation, since document.Transition.Source already holds this but
// callers usually want both together).
type Candidate struct {
	Transition *document.Transition
	Source     string
}

// FindEnabledTransitions walks the active configuration deepest-first
// (leaves before ancestors) and, for each active state, picks the first
// document-order transition whose event descriptor matches eventName (or,
// when eventName is "", the first eventless transition) and whose guard
// evaluates true. At most one candidate is returned per active state;
// spec.md SS4.H's "descendant wins over ancestor" rule is satisfied
// automatically once a state's own candidate is found, since higher
// states are only considered if no descendant among the active chain
// already claimed priority for the same region.
func FindEnabledTransitions(d *document.Document, active []string, eventName string, eval evaluator.Evaluator, env map[string]any) []Candidate {
	// Deepest first: sort by ancestor-path length, descending. Stable so
	// that active states at equal depth (e.g. leaves of sibling parallel
	// regions) keep a fixed relative order instead of whatever order
	// config.AllActiveStates() happened to iterate a map in.
	ordered := make([]string, len(active))
	copy(ordered, active)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(hierarchy.AncestorPath(d, ordered[i])) > len(hierarchy.AncestorPath(d, ordered[j]))
	})

	claimed := make(map[string]bool) // state ids already "spoken for" by a descendant's selected transition
	var out []Candidate

	for _, stateID := range ordered {
		if claimed[stateID] {
			continue
		}
		st, ok := d.State(stateID)
		if !ok {
			continue
		}
		for _, t := range st.Transitions {
			if eventName == "" && !t.IsEventless() {
				continue
			}
			if eventName != "" && !t.Matches(eventName) {
				continue
			}
			if t.CondFailedToCompile() {
				continue
			}
			if t.CondProg != nil {
				if !eval.RunBool(t.CondProg, env) {
					continue
				}
			}
			out = append(out, Candidate{Transition: t, Source: stateID})
			for _, anc := range hierarchy.AncestorPath(d, stateID) {
				claimed[anc] = true
			}
			break
		}
	}

	// Document order, not traversal order, governs conflict resolution and
	// action execution (spec.md SS4.I step 5: "selection equals sorting by
	// document_order after conflict resolution"). The per-state selection
	// above depends on deepest-first traversal to get claim propagation
	// right, but active, being a set, arrives in no particular order, so
	// out must be re-sorted before it leaves this function.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Transition.DocOrder < out[j].Transition.DocOrder
	})
	return out
}

// ResolveConflicts removes transitions that conflict per spec.md SS4.H:
// two candidates conflict if their exit sets intersect. Sibling/ancestor
// conflicts along the same branch are already prevented by
// FindEnabledTransitions' claim tracking; this pass additionally handles
// conflicts across parallel regions, where two transitions can both be
// "deepest in their own branch" yet still exit a shared ancestor.
// candidates arrives sorted by Transition.DocOrder; resolution keeps the
// earliest-in-document-order candidate of each conflict group and drops
// the rest.
func ResolveConflicts(d *document.Document, candidates []Candidate) []Candidate {
	var resolved []Candidate
	for _, cand := range candidates {
		conflict := false
		for _, kept := range resolved {
			if exitSetsConflict(d, cand, kept) {
				conflict = true
				break
			}
		}
		if !conflict {
			resolved = append(resolved, cand)
		}
	}
	return resolved
}

// exitSetsConflict reports whether a and b would exit any state in common.
// Two candidates in different parallel regions do not conflict while each
// source-to-LCCA exit chain stays inside its own region; if both chains
// reach the shared parallel ancestor, that state is exited by both and
// they conflict. Only an actual shared exited state constitutes a conflict.
func exitSetsConflict(d *document.Document, a, b Candidate) bool {
	lccaA := hierarchy.LCCA(d, a.Source, firstTarget(a.Transition))
	lccaB := hierarchy.LCCA(d, b.Source, firstTarget(b.Transition))

	exitA := exitSetBetween(d, a.Source, lccaA)
	exitB := exitSetBetween(d, b.Source, lccaB)

	setA := make(map[string]bool, len(exitA))
	for _, id := range exitA {
		setA[id] = true
	}
	for _, id := range exitB {
		if setA[id] {
			return true
		}
	}
	return false
}

func exitSetBetween(d *document.Document, source, lcca string) []string {
	var out []string
	for cur := source; cur != "" && cur != lcca; {
		out = append(out, cur)
		st, ok := d.State(cur)
		if !ok {
			break
		}
		cur = st.Parent
	}
	return out
}

func firstTarget(t *document.Transition) string {
	if len(t.Targets) == 0 {
		return t.Source
	}
	return t.Targets[0]
}
