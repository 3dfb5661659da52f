package production

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/comalice/scxmlgo/internal/document"
)

// Visualizer exports a document plus an active configuration as DOT or
// JSON, for the cmd/scxmlviz CLI and for debugging.
type Visualizer interface {
	ExportDOT(doc *document.Document, active []string) string
	ExportJSON(doc *document.Document) ([]byte, error)
}

// DefaultVisualizer renders Graphviz DOT (states as nested clusters for
// compound/parallel, active states filled) and a flat JSON dump of every
// state's kind/parent/children.
type DefaultVisualizer struct{}

func (v *DefaultVisualizer) ExportDOT(doc *document.Document, active []string) string {
	activeSet := make(map[string]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph Statechart {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n  edge [fontsize=9];\n")

	roots := make([]string, len(doc.Roots))
	copy(roots, doc.Roots)
	sort.Strings(roots)
	for _, rootID := range roots {
		renderState(&buf, doc, rootID, activeSet)
	}

	for _, t := range doc.AllTransitions() {
		label := "*"
		if len(t.Events) > 0 {
			label = t.Events[0]
		}
		for _, target := range t.Targets {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", t.Source, target, label)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func renderState(buf *bytes.Buffer, doc *document.Document, id string, active map[string]bool) {
	st, ok := doc.State(id)
	if !ok {
		return
	}
	if len(st.Children) > 0 {
		fmt.Fprintf(buf, "  subgraph cluster_%s {\n    label=%q;\n", id, fmt.Sprintf("%s (%s)", id, st.Kind))
		style := ""
		if active[id] {
			style = " style=filled fillcolor=orange"
		}
		fmt.Fprintf(buf, "    %q [shape=ellipse%s];\n", id, style)
		for _, childID := range st.Children {
			renderState(buf, doc, childID, active)
		}
		buf.WriteString("  }\n")
		return
	}
	style := ""
	if active[id] {
		style = " style=filled fillcolor=lightgreen"
	}
	fmt.Fprintf(buf, "  %q [label=%q%s];\n", id, id, style)
}

// jsonState is the exported shape for ExportJSON; it avoids marshaling
// document.State directly since Cache-dependent fields and Action
// interfaces don't round-trip cleanly through encoding/json.
type jsonState struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Parent   string   `json:"parent,omitempty"`
	Initial  string   `json:"initial,omitempty"`
	Children []string `json:"children,omitempty"`
}

func (v *DefaultVisualizer) ExportJSON(doc *document.Document) ([]byte, error) {
	out := struct {
		Name   string      `json:"name"`
		Roots  []string    `json:"roots"`
		States []jsonState `json:"states"`
	}{
		Name:  doc.Name,
		Roots: doc.Roots,
	}
	ids := make([]string, 0, len(doc.States()))
	for id := range doc.States() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		st := doc.MustState(id)
		out.States = append(out.States, jsonState{
			ID:       st.ID,
			Kind:     st.Kind.String(),
			Parent:   st.Parent,
			Initial:  st.Initial,
			Children: st.Children,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
