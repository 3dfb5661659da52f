// Package validator performs the structural and semantic checks spec.md
// SS4.B requires before a Document is handed to the interpreter: initial
// targets resolve, history placement is legal, transition targets exist,
// and every state is reachable. On success it also builds the document's
// HierarchyCache, so a validated Document is always ready for execution.
//
// Grounded on the teacher's internal/primitives/machineconfig.go Validate
// / markReachable and internal/primitives/stateconfig.go Validate,
// generalized from the teacher's map[string]*StateConfig + Children-by-value
// tree to the id-indexed document.Document/document.State model.
package validator

import (
	"fmt"

	"github.com/comalice/scxmlgo/internal/document"
)

// Diagnostic is one validation finding. Errors block use of the document;
// Warnings (currently just unreachable states) do not.
type Diagnostic struct {
	Severity Severity
	Message  string
	StateID  string
}

type Severity int

const (
	Error Severity = iota
	Warning
)

func (d Diagnostic) String() string {
	sev := "error"
	if d.Severity == Warning {
		sev = "warning"
	}
	if d.StateID != "" {
		return fmt.Sprintf("%s: %s (state %q)", sev, d.Message, d.StateID)
	}
	return fmt.Sprintf("%s: %s", sev, d.Message)
}

// Result carries every diagnostic produced by a Validate call. Ok reports
// whether the document is safe to use (no Error-severity diagnostics).
type Result struct {
	Diagnostics []Diagnostic
}

func (r *Result) Ok() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == Error {
			return false
		}
	}
	return true
}

func (r *Result) addError(stateID, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Severity: Error, StateID: stateID, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) addWarning(stateID, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Severity: Warning, StateID: stateID, Message: fmt.Sprintf(format, args...)})
}

// Validate runs every structural/semantic check spec.md SS4.B names and,
// if none of them produced an Error diagnostic, builds the document's
// HierarchyCache so the returned Document is execution-ready. The
// HierarchyCache is still populated even when there are only Warning
// diagnostics, since those never block use.
func Validate(d *document.Document) *Result {
	res := &Result{}

	checkInitialTargets(d, res)
	checkHistoryPlacement(d, res)
	checkTransitionTargets(d, res)
	checkReachability(d, res)

	if res.Ok() {
		d.Cache = document.BuildHierarchyCache(d)
	}
	return res
}

// checkInitialTargets verifies every compound state's Initial names a
// direct child, and that the document's own top-level Initial (if set)
// names a known state. A compound state with no Initial set is legal only
// if it has at least one child (spec.md SS3: default is first child in
// document order, resolved later by the interpreter, not validated here).
func checkInitialTargets(d *document.Document, res *Result) {
	if d.Initial != "" {
		if _, ok := d.State(d.Initial); !ok {
			res.addError("", "document initial state %q does not exist", d.Initial)
		}
	}

	for id, st := range d.States() {
		if st.Kind != document.Compound {
			continue
		}
		if len(st.Children) == 0 {
			res.addError(id, "compound state has no children")
			continue
		}
		if st.Initial == "" {
			continue
		}
		found := false
		for _, childID := range st.Children {
			if childID == st.Initial {
				found = true
				break
			}
		}
		if !found {
			res.addError(id, "initial %q is not a direct child", st.Initial)
		}
	}
}

// checkHistoryPlacement enforces spec.md SS3's "History pseudo-states are
// only meaningful as children of Compound/Parallel states" and requires
// every history state to have a default transition. Where that default
// transition's targets lie is not checked.
func checkHistoryPlacement(d *document.Document, res *Result) {
	for id, st := range d.States() {
		if st.Kind != document.History {
			continue
		}
		parent, ok := d.State(st.Parent)
		if !ok {
			res.addError(id, "history state has no parent")
			continue
		}
		if parent.Kind != document.Compound && parent.Kind != document.Parallel {
			res.addError(id, "history state's parent %q is neither compound nor parallel", parent.ID)
		}
		if st.HistDefault == nil {
			res.addError(id, "history state has no default transition")
		}
	}
}

// checkTransitionTargets verifies every transition's targets name known
// states (spec.md SS3: targetless transitions are legal and run actions
// only, so an empty target list passes). Reachability is not checked here.
func checkTransitionTargets(d *document.Document, res *Result) {
	for _, t := range d.AllTransitions() {
		for _, target := range t.Targets {
			if _, ok := d.State(target); !ok {
				res.addError(t.Source, "transition targets unknown state %q", target)
			}
		}
	}
}

// checkReachability walks Children plus transition targets from every
// root/initial state and flags anything never reached as a Warning, per
// spec.md SS4.B ("unreachable states are reported as warnings, not
// errors, since SCXML permits orphaned fragments referenced only by a
// dynamically-computed <send>/<invoke> target").
func checkReachability(d *document.Document, res *Result) {
	visited := make(map[string]bool)
	for _, rootID := range d.Roots {
		markReachable(d, rootID, visited)
	}
	for id := range d.States() {
		if !visited[id] {
			res.addWarning(id, "state is not reachable from any root state")
		}
	}
}

func markReachable(d *document.Document, id string, visited map[string]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	st, ok := d.State(id)
	if !ok {
		return
	}
	for _, childID := range st.Children {
		markReachable(d, childID, visited)
	}
	for _, t := range d.TransitionsFrom(id) {
		for _, target := range t.Targets {
			markReachable(d, target, visited)
		}
	}
}
