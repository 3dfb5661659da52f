package interpreter

import (
	"context"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/evaluator"
	"github.com/comalice/scxmlgo/internal/hierarchy"
)

// resolveEntryRecursive expands a single entry target into the full set
// of states that must become active, per spec.md SS4.I's entry rules by
// kind: atomic/final are leaves; compound resolves its initial child (by
// Initial attribute, else by an <initial> pseudo-state's transition
// targets — already folded into Initial by the builder/parser, else the
// first child in document order) and recurses; parallel recurses into
// every child; history restores a recorded snapshot or follows its
// default transition.
func (i *Interpreter) resolveEntryRecursive(id string) []string {
	st, ok := i.doc.State(id)
	if !ok {
		return nil
	}
	switch st.Kind {
	case document.Atomic, document.Final:
		return []string{id}
	case document.Compound:
		child := st.Initial
		if child == "" && len(st.Children) > 0 {
			child = firstNonInitialChild(i.doc, st)
		}
		if child == "" {
			return []string{id}
		}
		return append([]string{id}, i.resolveEntryRecursive(child)...)
	case document.Parallel:
		out := []string{id}
		for _, childID := range st.Children {
			out = append(out, i.resolveEntryRecursive(childID)...)
		}
		return out
	case document.History:
		return i.resolveHistoryEntry(st)
	default:
		return nil
	}
}

func firstNonInitialChild(d *document.Document, st *document.State) string {
	for _, childID := range st.Children {
		child, ok := d.State(childID)
		if ok && child.Kind != document.InitialPseudo && child.Kind != document.History {
			return childID
		}
	}
	if len(st.Children) > 0 {
		return st.Children[0]
	}
	return ""
}

func (i *Interpreter) resolveHistoryEntry(h *document.State) []string {
	if h.HistKind == document.DeepHistory {
		if ids, ok := i.hist.RestoreDeep(h.ID); ok {
			return ids
		}
	} else {
		if childID, ok := i.hist.RestoreShallow(h.ID); ok {
			return i.resolveEntryRecursive(childID)
		}
	}
	if h.HistDefault != nil {
		var out []string
		for _, target := range h.HistDefault.Targets {
			out = append(out, i.resolveEntryRecursive(target)...)
		}
		return out
	}
	return nil
}

// enterStates runs onentry actions for ids in document order and marks
// them active in the configuration.
func (i *Interpreter) enterStates(ctx context.Context, ids []string) {
	ordered := orderByDocOrder(i.doc, ids)
	for _, id := range ordered {
		st, ok := i.doc.State(id)
		if !ok {
			continue
		}
		i.exec.Run(ctx, st.OnEntry, document.Event{})
		i.config.Enter(id)
	}
	i.recordDoneEvents(ordered)
}

// computeLeaves derives the current leaf set from the active
// configuration: any active atomic/final state, plus any active compound
// whose children are all inactive is never possible post-entry (entry
// always descends to a leaf), so leaves are exactly the active
// atomic/final states.
func (i *Interpreter) computeLeaves() []string {
	var leaves []string
	for _, id := range i.config.AllActiveStates() {
		st, ok := i.doc.State(id)
		if !ok {
			continue
		}
		if st.Kind == document.Atomic || st.Kind == document.Final {
			leaves = append(leaves, id)
		}
	}
	return orderByDocOrder(i.doc, leaves)
}

func orderByDocOrder(d *document.Document, ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	for a := 1; a < len(out); a++ {
		for b := a; b > 0; b-- {
			sa, _ := d.State(out[b-1])
			sb, _ := d.State(out[b])
			if sa == nil || sb == nil || sa.DocOrder <= sb.DocOrder {
				break
			}
			out[b-1], out[b] = out[b], out[b-1]
		}
	}
	return out
}

// recordDoneEvents raises done.state.<parentID> for every newly-entered
// <final> state's parent (supplementing spec.md's distilled scope per
// SPEC_FULL.md SS6), and done.state.<parallelID> when every region of an
// enclosing parallel state has reached a final state.
func (i *Interpreter) recordDoneEvents(entered []string) {
	for _, id := range entered {
		st, ok := i.doc.State(id)
		if !ok || st.Kind != document.Final {
			continue
		}
		parent, ok := i.doc.State(st.Parent)
		if !ok {
			continue
		}
		i.queue.PushInternal(document.NewInternalEvent(document.DoneStatePrefix+parent.ID, i.finalDoneData(st)))

		for _, parallel := range hierarchy.ParallelAncestors(i.doc, id) {
			if i.allRegionsDone(parallel) {
				i.queue.PushInternal(document.NewInternalEvent(document.DoneStatePrefix+parallel, nil))
			}
		}
	}
}

func (i *Interpreter) finalDoneData(final *document.State) any {
	dd := final.DoneData
	if dd == nil {
		return nil
	}
	if dd.Expr != "" {
		prog, err := i.eval.Compile(dd.Expr)
		if err != nil {
			return nil
		}
		val, _ := i.eval.Run(prog, evaluator.BuildEvalContext(i.dm, document.Event{}, i.systemVars()))
		return val
	}
	return dd.Content
}

func (i *Interpreter) allRegionsDone(parallelID string) bool {
	st, ok := i.doc.State(parallelID)
	if !ok {
		return false
	}
	for _, regionID := range st.Children {
		if !i.regionHasActiveFinal(regionID) {
			return false
		}
	}
	return true
}

func (i *Interpreter) regionHasActiveFinal(regionID string) bool {
	region, ok := i.doc.State(regionID)
	if !ok {
		return false
	}
	if region.Kind == document.Final {
		return i.config.IsActive(regionID)
	}
	for _, childID := range region.Children {
		child, ok := i.doc.State(childID)
		if ok && child.Kind == document.Final && i.config.IsActive(childID) {
			return true
		}
	}
	return false
}
