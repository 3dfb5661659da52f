// Package xmlsource parses an SCXML document into an internal/document.Document,
// per spec.md SS4.B's "XML source adapter": resolve the DOM tree into
// states, transitions, and executable content, then hand the result to
// internal/validator before it is ever passed to an Interpreter.
//
// Grounded on agentflare-ai/agentml-go's xmldom consumption patterns
// (validator/validator.go's ValidateReader/ValidateString decoding via
// xmldom.NewDecoderFromBytes(...).Decode(), and its widespread
// el.GetAttribute/el.Children()/el.LocalName()/el.TextContent() element
// walking across agentml.go, ollama/executable.go, and the component
// registrations under ui/), generalized from AgentML's own element
// vocabulary to the SCXML one spec.md SS3 defines.
package xmlsource

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/comalice/scxmlgo/internal/document"
)

// Warning is a non-fatal parse finding: an element or attribute the parser
// recognized but could not fully honor (e.g. <data src="...">, which this
// core interpreter accepts syntactically but never resolves — spec.md
// SS6 defers <datamodel src> loading to a host).
type Warning struct {
	Message      string
	Line, Column int
}

func (w Warning) String() string {
	if w.Line == 0 {
		return w.Message
	}
	return fmt.Sprintf("%s (line %d)", w.Message, w.Line)
}

// Parse reads an SCXML document from r and builds a document.Document.
// The returned Document's HierarchyCache is nil; run it through
// internal/validator.Validate (or hand it straight to interpreter.New,
// which validates automatically) before executing it.
func Parse(r io.Reader) (*document.Document, []Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("xmlsource: read: %w", err)
	}

	dom, err := xmldom.NewDecoderFromBytes(data).Decode()
	if err != nil {
		return nil, nil, fmt.Errorf("xmlsource: decode xml: %w", err)
	}

	root := dom.DocumentElement()
	if root == nil || localName(root) != "scxml" {
		return nil, nil, fmt.Errorf("xmlsource: root element is not <scxml>")
	}

	p := &parser{doc: document.New(attr(root, "name"))}
	p.doc.Initial = attr(root, "initial")

	for _, child := range elementChildren(root) {
		switch localName(child) {
		case "state":
			p.parseState(child, "")
		case "parallel":
			p.parseParallel(child, "")
		case "final":
			p.parseFinal(child, "")
		case "datamodel":
			p.doc.DataModel = append(p.doc.DataModel, p.parseDataDecls(child)...)
		case "script":
			p.warnf(child, "top-level <script> is not supported")
		}
	}

	return p.doc, p.warnings, nil
}

// parser carries the in-progress Document plus the warnings accumulated
// while walking it. It has no exported surface; Parse is the package's
// only entry point.
type parser struct {
	doc      *document.Document
	warnings []Warning
}

func (p *parser) warnf(el xmldom.Element, format string, args ...any) {
	line, col := position(el)
	p.warnings = append(p.warnings, Warning{Message: fmt.Sprintf(format, args...), Line: line, Column: col})
}

// addState registers a state, wires it into its parent's Children (or the
// document's Roots when parentID is empty), and stamps Depth/DocOrder.
func (p *parser) addState(st *document.State, parentID string) {
	st.Parent = parentID
	st.DocOrder = p.doc.NextDocOrder()
	if parentID == "" {
		p.doc.Roots = append(p.doc.Roots, st.ID)
	} else if parent, ok := p.doc.State(parentID); ok {
		parent.Children = append(parent.Children, st.ID)
		st.Depth = parent.Depth + 1
	}
	if err := p.doc.AddState(st); err != nil {
		p.warnf(nil, "%s", err.Error())
	}
}

func (p *parser) parseState(el xmldom.Element, parentID string) {
	id := attr(el, "id")
	st := document.NewState(id, document.Compound)
	line, col := position(el)
	st.Line, st.Column = line, col

	var hasSubstates bool
	var initialFromChild string

	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "state", "parallel", "final", "history":
			hasSubstates = true
		}
	}
	if !hasSubstates {
		st.Kind = document.Atomic
	}

	p.addState(st, parentID)

	if in := attr(el, "initial"); in != "" {
		st.Initial = in
	}

	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "onentry":
			st.OnEntry = append(st.OnEntry, p.parseExecutableBlock(child)...)
		case "onexit":
			st.OnExit = append(st.OnExit, p.parseExecutableBlock(child)...)
		case "transition":
			t := p.parseTransition(child, id)
			st.Transitions = append(st.Transitions, t)
			p.doc.AddTransition(t)
		case "datamodel":
			st.DataModel = append(st.DataModel, p.parseDataDecls(child)...)
		case "state":
			p.parseState(child, id)
		case "parallel":
			p.parseParallel(child, id)
		case "final":
			p.parseFinal(child, id)
		case "history":
			p.parseHistory(child, id)
		case "initial":
			initialFromChild = p.parseInitialPseudo(child, id)
		case "invoke":
			st.OnEntry = append(st.OnEntry, p.parseInvoke(child))
		}
	}

	if st.Initial == "" && initialFromChild != "" {
		st.Initial = initialFromChild
	}
}

// parseInitialPseudo handles the <initial><transition target="..."/></initial>
// construct: spec.md SS3 folds its single transition's target into the
// parent's Initial attribute rather than modeling a standalone pseudo-state,
// since the pseudo-state itself is never part of any active configuration.
func (p *parser) parseInitialPseudo(el xmldom.Element, parentID string) string {
	for _, child := range elementChildren(el) {
		if localName(child) == "transition" {
			targets := strings.Fields(attr(child, "target"))
			if len(targets) > 0 {
				return targets[0]
			}
		}
	}
	p.warnf(el, "<initial> in state %q has no transition target", parentID)
	return ""
}

func (p *parser) parseParallel(el xmldom.Element, parentID string) {
	id := attr(el, "id")
	st := document.NewState(id, document.Parallel)
	line, col := position(el)
	st.Line, st.Column = line, col
	p.addState(st, parentID)

	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "onentry":
			st.OnEntry = append(st.OnEntry, p.parseExecutableBlock(child)...)
		case "onexit":
			st.OnExit = append(st.OnExit, p.parseExecutableBlock(child)...)
		case "transition":
			t := p.parseTransition(child, id)
			st.Transitions = append(st.Transitions, t)
			p.doc.AddTransition(t)
		case "datamodel":
			st.DataModel = append(st.DataModel, p.parseDataDecls(child)...)
		case "state":
			p.parseState(child, id)
		case "parallel":
			p.parseParallel(child, id)
		case "final":
			p.parseFinal(child, id)
		case "history":
			p.parseHistory(child, id)
		case "invoke":
			st.OnEntry = append(st.OnEntry, p.parseInvoke(child))
		}
	}
}

func (p *parser) parseFinal(el xmldom.Element, parentID string) {
	id := attr(el, "id")
	st := document.NewState(id, document.Final)
	line, col := position(el)
	st.Line, st.Column = line, col
	p.addState(st, parentID)

	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "onentry":
			st.OnEntry = append(st.OnEntry, p.parseExecutableBlock(child)...)
		case "onexit":
			st.OnExit = append(st.OnExit, p.parseExecutableBlock(child)...)
		case "donedata":
			st.DoneData = p.parseDoneData(child)
		}
	}
}

func (p *parser) parseHistory(el xmldom.Element, parentID string) {
	id := attr(el, "id")
	st := document.NewState(id, document.History)
	line, col := position(el)
	st.Line, st.Column = line, col
	if attr(el, "type") == "deep" {
		st.HistKind = document.DeepHistory
	} else {
		st.HistKind = document.ShallowHistory
	}
	p.addState(st, parentID)

	for _, child := range elementChildren(el) {
		if localName(child) == "transition" {
			t := p.parseTransition(child, id)
			st.HistDefault = t
		}
	}
	if st.HistDefault == nil {
		p.warnf(el, "history state %q has no default transition", id)
	}
}

func (p *parser) parseDoneData(el xmldom.Element) *document.DoneData {
	dd := &document.DoneData{}
	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "content":
			if e := attr(child, "expr"); e != "" {
				dd.Expr = e
			} else {
				dd.Content = strings.TrimSpace(textContent(child))
			}
		case "param":
			dd.Params = append(dd.Params, document.SendParam{
				Name:     attr(child, "name"),
				Expr:     attr(child, "expr"),
				Location: attr(child, "location"),
			})
		}
	}
	return dd
}

// parseTransition builds a document.Transition from a <transition> element.
// CondProg is left nil; interpreter.New compiles Cond against the chosen
// Evaluator once the document is handed to an interpreter (spec.md
// SS4.F/SS7.2), not the XML adapter.
func (p *parser) parseTransition(el xmldom.Element, sourceID string) *document.Transition {
	t := &document.Transition{
		Source:   sourceID,
		DocOrder: p.doc.NextDocOrder(),
		Cond:     attr(el, "cond"),
	}
	if ev := attr(el, "event"); ev != "" {
		t.Events = strings.Fields(ev)
	}
	if tg := attr(el, "target"); tg != "" {
		t.Targets = strings.Fields(tg)
	}
	if attr(el, "type") == "internal" {
		t.Type = document.InternalTransition
	}
	t.Actions = p.parseExecutableBlock(el)
	return t
}

// parseDataDecls reads every <data> child of a <datamodel> element.
// Precedence among expr/content/src follows spec.md SS3 (expr, then inline
// content, then src): a <data> with more than one keeps only the first.
func (p *parser) parseDataDecls(el xmldom.Element) []document.DataDecl {
	var decls []document.DataDecl
	for _, child := range elementChildren(el) {
		if localName(child) != "data" {
			continue
		}
		d := document.DataDecl{ID: attr(child, "id")}
		if e := attr(child, "expr"); e != "" {
			d.Expr = e
		} else if text := strings.TrimSpace(textContent(child)); text != "" {
			d.Content = text
		} else if s := attr(child, "src"); s != "" {
			d.Src = s
			p.warnf(child, "<data src=%q> is not loaded by the core interpreter", s)
		}
		decls = append(decls, d)
	}
	return decls
}

// parseExecutableBlock parses the executable-content children of any
// element that can hold them: <onentry>, <onexit>, <transition>, and the
// body of <if>/<foreach> branches.
func (p *parser) parseExecutableBlock(el xmldom.Element) []document.Action {
	var actions []document.Action
	for _, child := range elementChildren(el) {
		if a, ok := p.parseAction(child); ok {
			actions = append(actions, a)
		}
	}
	return actions
}

func (p *parser) parseAction(el xmldom.Element) (document.Action, bool) {
	switch localName(el) {
	case "assign":
		return document.AssignAction{
			Location: attr(el, "location"),
			Expr:     attr(el, "expr"),
			Type:     normalizeAssignType(attr(el, "type")),
		}, true
	case "raise":
		return document.RaiseAction{Event: attr(el, "event")}, true
	case "log":
		return document.LogAction{Label: attr(el, "label"), Expr: attr(el, "expr")}, true
	case "if":
		return p.parseIf(el), true
	case "foreach":
		return document.ForeachAction{
			Array: attr(el, "array"),
			Item:  attr(el, "item"),
			Index: attr(el, "index"),
			Body:  p.parseExecutableBlock(el),
		}, true
	case "send":
		return p.parseSend(el), true
	case "cancel":
		return document.CancelAction{SendID: attr(el, "sendid"), SendIDExpr: attr(el, "sendidexpr")}, true
	case "script":
		p.warnf(el, "inline <script> actions are not supported")
		return nil, false
	default:
		return nil, false
	}
}

// normalizeAssignType lower-cases and defaults an <assign type="..."/>
// attribute to "replacechildren", SCXML's default assignment mode.
func normalizeAssignType(raw string) string {
	if raw == "" {
		return "replacechildren"
	}
	return strings.ToLower(raw)
}

// parseIf flattens <if>/<elseif>/<else> into IfBranch entries in document
// order, splitting the element's children on elseif/else boundaries.
func (p *parser) parseIf(el xmldom.Element) document.IfAction {
	var branches []document.IfBranch
	cond := attr(el, "cond")
	branches = append(branches, document.IfBranch{Cond: &cond})

	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "elseif":
			c := attr(child, "cond")
			branches = append(branches, document.IfBranch{Cond: &c})
			continue
		case "else":
			branches = append(branches, document.IfBranch{Cond: nil})
			continue
		}
		if a, ok := p.parseAction(child); ok {
			last := len(branches) - 1
			branches[last].Body = append(branches[last].Body, a)
		}
	}
	return document.IfAction{Branches: branches}
}

func (p *parser) parseSend(el xmldom.Element) document.SendAction {
	s := document.SendAction{
		ID:         attr(el, "id"),
		Event:      attr(el, "event"),
		EventExpr:  attr(el, "eventexpr"),
		Target:     attr(el, "target"),
		TargetExpr: attr(el, "targetexpr"),
		Delay:      attr(el, "delay"),
		DelayExpr:  attr(el, "delayexpr"),
	}
	for _, child := range elementChildren(el) {
		switch localName(child) {
		case "param":
			s.Params = append(s.Params, document.SendParam{
				Name:     attr(child, "name"),
				Expr:     attr(child, "expr"),
				Location: attr(child, "location"),
			})
		case "content":
			s.Content = strings.TrimSpace(textContent(child))
		}
	}
	return s
}

func (p *parser) parseInvoke(el xmldom.Element) document.Action {
	inv := document.InvokeAction{
		ID:   attr(el, "id"),
		Type: attr(el, "type"),
		Src:  attr(el, "src"),
	}
	for _, child := range elementChildren(el) {
		if localName(child) == "param" {
			inv.Params = append(inv.Params, document.SendParam{
				Name:     attr(child, "name"),
				Expr:     attr(child, "expr"),
				Location: attr(child, "location"),
			})
		}
	}
	return inv
}

// --- xmldom helpers -------------------------------------------------------

func localName(el xmldom.Element) string {
	if el == nil {
		return ""
	}
	return string(el.LocalName())
}

func attr(el xmldom.Element, name string) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(string(el.GetAttribute(xmldom.DOMString(name))))
}

func textContent(el xmldom.Element) string {
	if el == nil {
		return ""
	}
	return string(el.TextContent())
}

// elementChildren filters an element's child node list down to Element
// nodes, discarding text/comment nodes (go-xmldom's Children() returns
// every node kind, per agentml-go's widespread `.(xmldom.Element)` type
// assertions on each Item).
func elementChildren(el xmldom.Element) []xmldom.Element {
	if el == nil {
		return nil
	}
	nodes := el.Children()
	out := make([]xmldom.Element, 0, nodes.Length())
	for i := uint(0); i < nodes.Length(); i++ {
		if child, ok := nodes.Item(i).(xmldom.Element); ok {
			out = append(out, child)
		}
	}
	return out
}

// position extracts line/column diagnostics when the concrete xmldom
// element exposes them; not every backend does, so this degrades to
// (0, 0) rather than failing.
func position(el xmldom.Element) (int, int) {
	if el == nil {
		return 0, 0
	}
	type positioned interface {
		Line() int
		Column() int
	}
	if pe, ok := any(el).(positioned); ok {
		return pe.Line(), pe.Column()
	}
	return 0, 0
}
