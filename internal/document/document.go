package document

import "fmt"

// Document is the immutable, frozen-after-validation document tree plus its
// derived lookup tables (spec.md SS3 Document). After Validate the only
// field still written is each Transition's compiled guard (CondProg),
// which interpreter.New fills in.
type Document struct {
	Name    string
	Initial string // top-level initial state id, or "" for default (first root)

	Roots []string // top-level state ids, document order
	DataModel []DataDecl

	states       map[string]*State
	transByState map[string][]*Transition // source state id -> transitions, doc order
	order        int

	Cache *HierarchyCache // nil until Validate/BuildCache runs
}

// New creates an empty, unfrozen Document ready for the builder or parser
// to populate via AddState/AddTransition.
func New(name string) *Document {
	return &Document{
		Name:         name,
		states:       make(map[string]*State),
		transByState: make(map[string][]*Transition),
	}
}

// NextDocOrder hands out the monotonic document-order tiebreaker (spec.md
// SS3: "Document order is a monotonically-assigned integer on each state
// and transition").
func (d *Document) NextDocOrder() int {
	n := d.order
	d.order++
	return n
}

// AddState registers a state by id. Returns an error on duplicate id so
// the validator (which also checks this) isn't the only line of defense
// against silent overwrite during construction.
func (d *Document) AddState(s *State) error {
	if _, exists := d.states[s.ID]; exists {
		return fmt.Errorf("document: duplicate state id %q", s.ID)
	}
	d.states[s.ID] = s
	return nil
}

// AddTransition indexes a transition by its source state id, preserving
// document order within that source's list.
func (d *Document) AddTransition(t *Transition) {
	d.transByState[t.Source] = append(d.transByState[t.Source], t)
}

// State looks up a state by id, O(1).
func (d *Document) State(id string) (*State, bool) {
	s, ok := d.states[id]
	return s, ok
}

// MustState panics if id is unknown; reserved for internal code paths that
// have already validated the id exists (e.g. iterating Children).
func (d *Document) MustState(id string) *State {
	s, ok := d.states[id]
	if !ok {
		panic(fmt.Sprintf("document: unknown state id %q", id))
	}
	return s
}

// States returns all states, unordered. Callers needing document order
// should sort by State.DocOrder.
func (d *Document) States() map[string]*State {
	return d.states
}

// TransitionsFrom returns the transitions declared directly on state id, in
// document order.
func (d *Document) TransitionsFrom(id string) []*Transition {
	return d.transByState[id]
}

// AllTransitions returns every transition in the document, in document order.
func (d *Document) AllTransitions() []*Transition {
	all := make([]*Transition, 0, len(d.transByState))
	for _, list := range d.transByState {
		all = append(all, list...)
	}
	sortTransitionsByDocOrder(all)
	return all
}

func sortTransitionsByDocOrder(ts []*Transition) {
	for i := 1; i < len(ts); i++ {
		for j := i; j > 0 && ts[j-1].DocOrder > ts[j].DocOrder; j-- {
			ts[j-1], ts[j] = ts[j], ts[j-1]
		}
	}
}

// InitialState resolves the document's entry point: the named Initial
// attribute, or the first top-level state (spec.md SS4.I).
func (d *Document) InitialState() (*State, error) {
	if d.Initial != "" {
		s, ok := d.states[d.Initial]
		if !ok {
			return nil, fmt.Errorf("document: initial state %q not found", d.Initial)
		}
		return s, nil
	}
	if len(d.Roots) == 0 {
		return nil, fmt.Errorf("document: no top-level states")
	}
	s, ok := d.states[d.Roots[0]]
	if !ok {
		return nil, fmt.Errorf("document: root state %q not found", d.Roots[0])
	}
	return s, nil
}
