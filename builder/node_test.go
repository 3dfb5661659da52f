package builder

import (
	"testing"

	"github.com/comalice/scxmlgo/internal/document"
)

func TestBuildSimpleChart(t *testing.T) {
	doc, res, err := Build("traffic", "red", nil,
		Atomic("red",
			OnEntry(document.AssignAction{Location: "count", Expr: "count + 1"}),
			On("go", []string{"green"}, Actions(document.RaiseAction{Event: "left.red"})),
		),
		Atomic("green",
			On("go", []string{"red"}, Cond("count > 0")),
		),
	)
	if err != nil {
		t.Fatalf("build: %v, diagnostics: %v", err, res.Diagnostics)
	}
	red, ok := doc.State("red")
	if !ok {
		t.Fatal("state red not found")
	}
	if len(red.OnEntry) != 1 {
		t.Fatalf("red.OnEntry = %+v", red.OnEntry)
	}
	if len(red.Transitions) != 1 || red.Transitions[0].Targets[0] != "green" {
		t.Fatalf("red.Transitions = %+v", red.Transitions)
	}
}

func TestBuildCompoundWithHistory(t *testing.T) {
	doc, res, err := Build("hist", "top", nil,
		Compound("top", "top.a", []*Node{
			Atomic("top.a"),
			Atomic("top.b"),
			History("top.h", document.DeepHistory, "top.a"),
		}),
	)
	if err != nil {
		t.Fatalf("build: %v, diagnostics: %v", err, res.Diagnostics)
	}
	h, ok := doc.State("top.h")
	if !ok || h.Kind != document.History || h.HistKind != document.DeepHistory {
		t.Fatalf("top.h = %+v, %v", h, ok)
	}
	if h.HistDefault == nil || h.HistDefault.Targets[0] != "top.a" {
		t.Fatalf("h.HistDefault = %+v", h.HistDefault)
	}
}

func TestBuildRejectsDuplicateID(t *testing.T) {
	_, _, err := Build("dup", "a", nil,
		Atomic("a"),
		Compound("a", "a.x", []*Node{Atomic("a.x")}),
	)
	if err == nil {
		t.Error("expected error for duplicate state id")
	}
}

func TestFromYAML(t *testing.T) {
	const src = `
name: traffic
machine:
  id: traffic
  initial: red
  states:
    red:
      onentry:
        - "count=count + 1"
      on:
        go:
          target: green
          actions:
            - "raise:left.red"
    green:
      on:
        go:
          target: red
          cond: "count > 0"
`
	doc, res, err := FromYAML([]byte(src))
	if err != nil {
		t.Fatalf("from yaml: %v, diagnostics: %v", err, res.Diagnostics)
	}
	red, ok := doc.State("traffic.red")
	if !ok {
		t.Fatal("state traffic.red not found")
	}
	if len(red.Transitions) != 1 || red.Transitions[0].Targets[0] != "traffic.green" {
		t.Fatalf("red.Transitions = %+v", red.Transitions)
	}
	if _, ok := red.OnEntry[0].(document.AssignAction); !ok {
		t.Errorf("red.OnEntry[0] = %T", red.OnEntry[0])
	}
}
