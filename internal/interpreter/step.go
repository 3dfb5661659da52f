package interpreter

import (
	"context"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/hierarchy"
	"github.com/comalice/scxmlgo/internal/transition"
)

// executeMicrostep runs one selected transition set as a single
// microstep: partitions targetless from targeted transitions (spec.md
// SS4.I), computes the combined exit/entry sets for the targeted ones,
// records history, then runs onexit → transition actions → onentry in
// that order.
func (i *Interpreter) executeMicrostep(ctx context.Context, cands []transition.Candidate, evt document.Event) {
	var targetless, targeted []transition.Candidate
	for _, c := range cands {
		if c.Transition.IsTargetless() {
			targetless = append(targetless, c)
		} else {
			targeted = append(targeted, c)
		}
	}

	for _, c := range targetless {
		i.exec.Run(ctx, c.Transition.Actions, evt)
	}

	if len(targeted) == 0 {
		return
	}

	exitSet := i.computeExitSet(targeted)
	entrySet := i.computeEntrySet(targeted, exitSet)

	i.recordHistory(exitSet)

	exitOrdered := orderByDocOrder(i.doc, exitSet)
	for k := len(exitOrdered) - 1; k >= 0; k-- {
		st, ok := i.doc.State(exitOrdered[k])
		if !ok {
			continue
		}
		i.exec.Run(ctx, st.OnExit, evt)
	}

	for _, c := range targeted {
		i.exec.Run(ctx, c.Transition.Actions, evt)
	}

	before := i.config.Leaves()

	i.config.Exit(exitOrdered...)
	i.enterStates(ctx, entrySet)
	i.config.SetLeaves(i.computeLeaves())

	after := i.config.Leaves()
	if i.onTransition != nil {
		i.onTransition(before, after)
	}
}

// computeExitSet implements spec.md SS4.I's four-case rule: for every
// currently active leaf a, it is exited if, for some selected targeted
// transition (source s, targets T):
// (i) a == s and a != lcca(s,t) for some t;
// (ii) a is a descendant of s;
// (iii) the transition exits a's shared parallel region with s;
// (iv) a is a descendant of lcca(s,t) and neither ancestor nor descendant
// of any t.
// The result additionally includes every ancestor of an exited leaf up
// to (but not including) that transition's lcca, since those compound/
// parallel ancestors must run onexit too when their last active child
// leaves.
func (i *Interpreter) computeExitSet(targeted []transition.Candidate) []string {
	exitSet := make(map[string]bool)
	currentLeaves := i.config.Leaves()

	for _, c := range targeted {
		s := c.Source
		targets := c.Transition.Targets
		lcca := multiLCCA(i.doc, s, targets)

		for _, a := range currentLeaves {
			if exitSet[a] {
				continue
			}
			if leafExitsFor(i.doc, a, s, targets, lcca) {
				markExitChain(i.doc, a, lcca, exitSet)
			}
		}
	}

	out := make([]string, 0, len(exitSet))
	for id := range exitSet {
		out = append(out, id)
	}
	return out
}

func leafExitsFor(d *document.Document, a, s string, targets []string, lcca string) bool {
	if a == s {
		for _, t := range targets {
			if hierarchy.LCCA(d, s, t) != a {
				return true
			}
		}
	}
	if hierarchy.DescendantOf(d, a, s) {
		return true
	}
	if hierarchy.ExitsParallelRegion(d, s, lcca) && sharesParallelRegionWith(d, a, s) {
		return true
	}
	if lcca != "" && hierarchy.DescendantOf(d, a, lcca) {
		ancestorOfTarget, descendantOfTarget := false, false
		for _, t := range targets {
			if hierarchy.DescendantOf(d, t, a) || t == a {
				ancestorOfTarget = true
			}
			if hierarchy.DescendantOf(d, a, t) {
				descendantOfTarget = true
			}
		}
		if !ancestorOfTarget && !descendantOfTarget {
			return true
		}
	}
	return false
}

func sharesParallelRegionWith(d *document.Document, a, s string) bool {
	if d.Cache == nil {
		return false
	}
	for _, parallel := range hierarchy.ParallelAncestors(d, s) {
		regions := d.Cache.Regions(parallel)
		if regions == nil {
			continue
		}
		var sRegion string
		for region, set := range regions {
			if set[s] {
				sRegion = region
				break
			}
		}
		for region, set := range regions {
			if region == sRegion {
				continue
			}
			if set[a] {
				return true
			}
		}
	}
	return false
}

// markExitChain adds leaf a and every ancestor up to (not including)
// lcca to the exit set.
func markExitChain(d *document.Document, a, lcca string, exitSet map[string]bool) {
	for cur := a; cur != "" && cur != lcca; {
		exitSet[cur] = true
		st, ok := d.State(cur)
		if !ok {
			break
		}
		cur = st.Parent
	}
}

// computeEntrySet unions, for each targeted transition, the ancestor
// path of each target from (but not including) the transition's lcca,
// plus that target's own entry-recursion result (spec.md SS4.I step 2).
func (i *Interpreter) computeEntrySet(targeted []transition.Candidate, exitSet []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, c := range targeted {
		lcca := multiLCCA(i.doc, c.Source, c.Transition.Targets)
		for _, target := range c.Transition.Targets {
			path := hierarchy.AncestorPath(i.doc, target)
			below := lcca == ""
			for _, anc := range path {
				if !below {
					below = anc == lcca
					continue
				}
				if anc != target {
					add(anc)
					continue
				}
			}
			for _, id := range i.resolveEntryRecursive(target) {
				add(id)
			}
		}
	}
	return out
}

// multiLCCA extends hierarchy.LCCA to a transition with several targets:
// the deepest compound ancestor shared by the source and every target.
func multiLCCA(d *document.Document, source string, targets []string) string {
	if len(targets) == 0 {
		return source
	}
	lcca := hierarchy.LCCA(d, source, targets[0])
	for _, t := range targets[1:] {
		lcca = hierarchy.LCCA(d, lcca, t)
		if lcca == "" {
			break
		}
	}
	return lcca
}

// recordHistory stores, for every History state that is a direct child
// of an exited state, the configuration being left behind — shallow
// records the one active direct child, deep records the full descendant
// closure.
func (i *Interpreter) recordHistory(exitSet []string) {
	exiting := make(map[string]bool, len(exitSet))
	for _, id := range exitSet {
		exiting[id] = true
	}
	for _, parentID := range exitSet {
		for _, h := range hierarchy.ParentsWithHistory(i.doc, parentID) {
			i.recordOneHistory(h, parentID, exiting)
		}
	}
}

func (i *Interpreter) recordOneHistory(h *document.State, parentID string, exiting map[string]bool) {
	parent, ok := i.doc.State(parentID)
	if !ok {
		return
	}
	if h.HistKind == document.DeepHistory {
		var descendants []string
		for id := range exiting {
			if hierarchy.DescendantOf(i.doc, id, parentID) {
				descendants = append(descendants, id)
			}
		}
		i.hist.RecordDeep(h.ID, descendants)
		return
	}
	for _, childID := range parent.Children {
		if exiting[childID] {
			i.hist.RecordShallow(h.ID, childID)
			return
		}
	}
}
