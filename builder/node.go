// Package builder provides a fluent, Go-native way to assemble a
// document.Document without hand-writing SCXML, plus a FromYAML loader for
// hosts that keep their chart definitions as data rather than markup.
//
// Grounded on the teacher's builder/helpers.go (Option/TransOption functional
// builders over a State tree) and comalice-maelstrom's registry/statechart
// package (YamlMachineSpec/YamlState, dot-notation state flattening via
// declareRecursive/configureRecursive) — both superseded here by the
// document.Document/Transition/Action tree SPEC_FULL.md's components share.
package builder

import (
	"fmt"

	"github.com/comalice/scxmlgo/internal/document"
	"github.com/comalice/scxmlgo/internal/validator"
)

// Node is an unfrozen state, built up with Option/TransOption and flattened
// into a document.Document by Build. Unlike document.State, a Node owns its
// children by value so the tree can be assembled before any ids are
// registered.
type Node struct {
	id       string
	kind     document.Kind
	initial  string
	histKind document.HistoryKind

	children []*Node
	onEntry  []document.Action
	onExit   []document.Action
	trans    []*transSpec
	data     []document.DataDecl
	doneData *document.DoneData
}

type transSpec struct {
	events  []string
	cond    string
	targets []string
	typ     document.TransitionType
	actions []document.Action
}

// Option configures a Node at construction time.
type Option func(*Node)

// TransOption configures a transition added via On.
type TransOption func(*transSpec)

// Atomic creates a leaf state with no children.
func Atomic(id string, opts ...Option) *Node {
	return newNode(id, document.Atomic, opts)
}

// Compound creates a state with children, entered at initial (or the first
// child in document order if initial is "").
func Compound(id, initial string, children []*Node, opts ...Option) *Node {
	n := newNode(id, document.Compound, opts)
	n.initial = initial
	n.children = children
	return n
}

// Parallel creates a state whose children are all active simultaneously.
func Parallel(id string, children []*Node, opts ...Option) *Node {
	n := newNode(id, document.Parallel, opts)
	n.children = children
	return n
}

// Final creates a terminal state, optionally producing done data for its
// parent's done.state event.
func Final(id string, opts ...Option) *Node {
	return newNode(id, document.Final, opts)
}

// History creates a history pseudo-state. fallbackTarget is the target of the transition
// followed the first time the history is entered, before any snapshot
// exists.
func History(id string, kind document.HistoryKind, fallbackTarget string, opts ...Option) *Node {
	n := newNode(id, document.History, opts)
	n.histKind = kind
	n.trans = append(n.trans, &transSpec{targets: []string{fallbackTarget}})
	return n
}

func newNode(id string, kind document.Kind, opts []Option) *Node {
	n := &Node{id: id, kind: kind}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// OnEntry attaches executable content run when the state is entered.
func OnEntry(actions ...document.Action) Option {
	return func(n *Node) { n.onEntry = append(n.onEntry, actions...) }
}

// OnExit attaches executable content run when the state is exited.
func OnExit(actions ...document.Action) Option {
	return func(n *Node) { n.onExit = append(n.onExit, actions...) }
}

// Data records a datamodel entry on this state's DataModel. The interpreter
// binds only the document's top-level DataModel, so entries declared here
// are not initialized at run time.
func Data(id, expr string) Option {
	return func(n *Node) { n.data = append(n.data, document.DataDecl{ID: id, Expr: expr}) }
}

// Done attaches donedata to a Final state.
func Done(expr string) Option {
	return func(n *Node) { n.doneData = &document.DoneData{Expr: expr} }
}

// On adds a transition from this state, triggered by the space-separated
// event descriptors in events ("" for an eventless transition).
func On(events string, targets []string, opts ...TransOption) Option {
	return func(n *Node) {
		t := &transSpec{targets: targets}
		if events != "" {
			t.events = []string{events}
		}
		for _, opt := range opts {
			opt(t)
		}
		n.trans = append(n.trans, t)
	}
}

// Cond guards a transition with an expression, evaluated against the
// chart's extended state at selection time.
func Cond(expr string) TransOption {
	return func(t *transSpec) { t.cond = expr }
}

// Internal marks a transition as not re-entering its source's ancestors on a
// self-transition (spec.md SS4.I transition type).
func Internal() TransOption {
	return func(t *transSpec) { t.typ = document.InternalTransition }
}

// Actions attaches executable content run when a transition fires.
func Actions(actions ...document.Action) TransOption {
	return func(t *transSpec) { t.actions = append(t.actions, actions...) }
}

// Build flattens roots into a document.Document, assigns document order and
// parent/depth bookkeeping, and runs the validator. The returned Result is
// non-nil even on success so callers can inspect warnings.
func Build(name, initial string, dataModel []document.DataDecl, roots ...*Node) (*document.Document, *validator.Result, error) {
	doc := document.New(name)
	doc.Initial = initial
	doc.DataModel = dataModel

	for _, r := range roots {
		doc.Roots = append(doc.Roots, r.id)
		if err := flatten(doc, r, "", 0); err != nil {
			return nil, nil, err
		}
	}

	res := validator.Validate(doc)
	if !res.Ok() {
		return doc, res, fmt.Errorf("builder: document failed validation: %v", res.Diagnostics)
	}
	return doc, res, nil
}

func flatten(doc *document.Document, n *Node, parent string, depth int) error {
	st := &document.State{
		ID:       n.id,
		Kind:     n.kind,
		Initial:  n.initial,
		Parent:   parent,
		Depth:    depth,
		DocOrder: doc.NextDocOrder(),
		OnEntry:  n.onEntry,
		OnExit:   n.onExit,
		HistKind: n.histKind,
		DataModel: n.data,
		DoneData: n.doneData,
	}
	for _, c := range n.children {
		st.Children = append(st.Children, c.id)
	}
	for _, ts := range n.trans {
		t := &document.Transition{
			Events:   ts.events,
			Cond:     ts.cond,
			Targets:  ts.targets,
			Type:     ts.typ,
			Actions:  ts.actions,
			Source:   n.id,
			DocOrder: doc.NextDocOrder(),
		}
		st.Transitions = append(st.Transitions, t)
		doc.AddTransition(t)
		if n.kind == document.History {
			st.HistDefault = t
		}
	}
	if err := doc.AddState(st); err != nil {
		return err
	}
	for _, c := range n.children {
		if err := flatten(doc, c, n.id, depth+1); err != nil {
			return err
		}
	}
	return nil
}
