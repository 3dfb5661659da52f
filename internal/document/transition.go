package document

import "strings"

type TransitionType int

const (
	ExternalTransition TransitionType = iota
	InternalTransition
)

// Transition carries a compiled condition as an opaque `any` (the
// evaluator.Program for whichever Evaluator the interpreter was
// configured with); document never imports evaluator, keeping the
// dependency order of spec.md SS2 intact (document has no dependents
// among A..I other than via interfaces).
//
// CondProg has three states: nil with Cond == "" means no guard (always
// enabled); nil with Cond != "" means not yet compiled; and the sentinel
// condCompileFailed means compilation of Cond failed, so the transition
// is permanently disabled (spec.md SS7.2) without ever being passed to an
// Evaluator.RunBool, whose contract assumes a real compiled program.
type Transition struct {
	Events   []string // raw descriptor tokens, already whitespace-split
	Cond     string   // raw source, empty = none
	CondProg any      // compiled program, nil until compiled

	Targets  []string
	Type     TransitionType
	Actions  []Action
	Source   string
	DocOrder int
}

type condCompileFailedT struct{}

// CondCompileFailed is the CondProg sentinel for a guard that failed to
// compile. A transition in this state is treated as never enabled.
var CondCompileFailed any = condCompileFailedT{}

// CondFailedToCompile reports whether t's guard failed to compile.
func (t *Transition) CondFailedToCompile() bool {
	_, failed := t.CondProg.(condCompileFailedT)
	return failed
}

// IsEventless reports whether this transition has no event descriptor
// (spec.md SS3: "absent = eventless NULL transition").
func (t *Transition) IsEventless() bool {
	return len(t.Events) == 0
}

// IsTargetless reports whether the transition has no targets ("actions
// only, no state change").
func (t *Transition) IsTargetless() bool {
	return len(t.Targets) == 0
}

// Matches implements the wire contract from spec.md SS6: a whitespace
// separated list of descriptors, each either "*" or a dotted name; a
// descriptor "a.b" matches "a.b" exactly or any name beginning "a.b.".
func (t *Transition) Matches(eventName string) bool {
	for _, d := range t.Events {
		if descriptorMatches(d, eventName) {
			return true
		}
	}
	return false
}

func descriptorMatches(descriptor, name string) bool {
	if descriptor == "*" {
		return true
	}
	if descriptor == name {
		return true
	}
	return strings.HasPrefix(name, descriptor+".")
}
