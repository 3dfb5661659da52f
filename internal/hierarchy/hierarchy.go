// Package hierarchy exposes the pure relational queries spec.md SS4.C
// names over a validated document.Document: ancestry, least common
// compound ancestor, and parallel-region membership. Every function
// prefers the document's precomputed HierarchyCache and falls back to a
// direct parent-chain walk when no cache is present (e.g. a Document
// still under construction, not yet run through validator.Validate).
//
// Grounded on the teacher's statechart.go helpers (ancestors, findLCA,
// isDescendant), generalized from *State pointer chains to id lookups
// against document.Document.
package hierarchy

import "github.com/comalice/scxmlgo/internal/document"

// AncestorPath returns the root-to-self chain of state ids for id,
// inclusive of id itself.
func AncestorPath(d *document.Document, id string) []string {
	if d.Cache != nil {
		if p, ok := d.Cache.AncestorPath(id); ok {
			return p
		}
	}
	var path []string
	for cur := id; cur != ""; {
		path = append([]string{cur}, path...)
		st, ok := d.State(cur)
		if !ok {
			break
		}
		cur = st.Parent
	}
	return path
}

// DescendantOf reports whether a is a strict descendant of b.
func DescendantOf(d *document.Document, a, b string) bool {
	if d.Cache != nil {
		return d.Cache.IsDescendant(a, b)
	}
	for cur := a; cur != ""; {
		st, ok := d.State(cur)
		if !ok || st.Parent == "" {
			return false
		}
		if st.Parent == b {
			return true
		}
		cur = st.Parent
	}
	return false
}

// LCCA returns the least common compound ancestor of a and b: the
// deepest Compound state that is an ancestor of (or equal to) both,
// per spec.md SS3's exit/entry-set algorithm. Returns "" if none exists
// (e.g. a and b are in different top-level regions).
func LCCA(d *document.Document, a, b string) string {
	if d.Cache != nil {
		if v, ok := d.Cache.LCCA(a, b); ok {
			return v
		}
	}
	pa := AncestorPath(d, a)
	set := make(map[string]bool, len(pa))
	for _, id := range pa {
		set[id] = true
	}
	pb := AncestorPath(d, b)
	for i := len(pb) - 1; i >= 0; i-- {
		cand := pb[i]
		if !set[cand] {
			continue
		}
		st, ok := d.State(cand)
		if ok && st.Kind == document.Compound {
			return cand
		}
	}
	return ""
}

// ParallelAncestors returns the outermost-first list of Parallel states
// that are ancestors of id.
func ParallelAncestors(d *document.Document, id string) []string {
	if d.Cache != nil {
		return d.Cache.ParallelAncestors(id)
	}
	var out []string
	path := AncestorPath(d, id)
	for _, anc := range path {
		st, ok := d.State(anc)
		if ok && st.Kind == document.Parallel {
			out = append(out, anc)
		}
	}
	return out
}

// InDifferentParallelRegions reports whether a and b sit in different
// direct-child regions of a shared Parallel ancestor — the condition
// spec.md SS4.H uses to detect inter-region transition conflicts versus
// plain sibling conflicts.
func InDifferentParallelRegions(d *document.Document, a, b string) bool {
	for _, parallel := range ParallelAncestors(d, a) {
		regionA := regionRootUnder(d, parallel, a)
		regionB := regionRootUnder(d, parallel, b)
		if regionA != "" && regionB != "" && regionA != regionB {
			return true
		}
	}
	return false
}

// ExitsParallelRegion reports whether transitioning out of source to
// exit-set boundary lcca would cross out of a parallel state that source
// lives inside but lcca does not — i.e. whether the transition exits one
// or more parallel regions entirely, which forces every sibling region to
// also be exited (spec.md SS4.I's parallel-exit rule).
func ExitsParallelRegion(d *document.Document, source, lcca string) bool {
	for _, parallel := range ParallelAncestors(d, source) {
		if lcca == parallel || DescendantOf(d, lcca, parallel) {
			continue
		}
		return true
	}
	return false
}

// ParentsWithHistory returns every History pseudo-state that
// is a direct child of parent, in document order.
func ParentsWithHistory(d *document.Document, parent string) []*document.State {
	st, ok := d.State(parent)
	if !ok {
		return nil
	}
	var out []*document.State
	for _, childID := range st.Children {
		child, ok := d.State(childID)
		if ok && child.Kind == document.History {
			out = append(out, child)
		}
	}
	return out
}

func regionRootUnder(d *document.Document, parallel, id string) string {
	path := AncestorPath(d, id)
	for i, anc := range path {
		if anc == parallel && i+1 < len(path) {
			return path[i+1]
		}
	}
	return ""
}
