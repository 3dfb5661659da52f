package interpreter

import (
	"context"
	"testing"

	"github.com/comalice/scxmlgo/internal/document"
)

func mustAddState(t *testing.T, d *document.Document, s *document.State) {
	t.Helper()
	if err := d.AddState(s); err != nil {
		t.Fatal(err)
	}
}

// buildTrafficLight: top-level compound with red -> green -> yellow -> red.
func buildTrafficLight(t *testing.T) *document.Document {
	t.Helper()
	d := document.New("traffic")
	d.Roots = []string{"light"}
	d.Initial = "light"

	light := document.NewState("light", document.Compound)
	light.Initial = "red"
	light.Children = []string{"red", "green", "yellow"}
	red := document.NewState("red", document.Atomic)
	red.Parent = "light"
	green := document.NewState("green", document.Atomic)
	green.Parent = "light"
	yellow := document.NewState("yellow", document.Atomic)
	yellow.Parent = "light"

	mustAddState(t, d, light)
	mustAddState(t, d, red)
	mustAddState(t, d, green)
	mustAddState(t, d, yellow)

	addTrans := func(source string, events []string, targets []string) {
		tr := &document.Transition{Source: source, Events: events, Targets: targets, DocOrder: d.NextDocOrder()}
		st, _ := d.State(source)
		st.Transitions = append(st.Transitions, tr)
		d.AddTransition(tr)
	}
	addTrans("red", []string{"tick"}, []string{"green"})
	addTrans("green", []string{"tick"}, []string{"yellow"})
	addTrans("yellow", []string{"tick"}, []string{"red"})

	return d
}

func TestInterpreterInitializeEntersInitialLeaf(t *testing.T) {
	d := buildTrafficLight(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	leaves := itp.ActiveLeafStates()
	if len(leaves) != 1 || leaves[0] != "red" {
		t.Fatalf("leaves = %v, want [red]", leaves)
	}
	if !itp.IsActive("light") {
		t.Error("expected ancestor light active")
	}
}

func TestInterpreterSendEventTransitions(t *testing.T) {
	d := buildTrafficLight(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	itp.SendEvent(context.Background(), document.NewExternalEvent("tick", nil))
	leaves := itp.ActiveLeafStates()
	if len(leaves) != 1 || leaves[0] != "green" {
		t.Fatalf("leaves = %v, want [green]", leaves)
	}
	itp.SendEvent(context.Background(), document.NewExternalEvent("tick", nil))
	leaves = itp.ActiveLeafStates()
	if leaves[0] != "yellow" {
		t.Fatalf("leaves = %v, want [yellow]", leaves)
	}
}

func TestInterpreterNonMatchingEventLeavesConfigUnchanged(t *testing.T) {
	d := buildTrafficLight(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	itp.SendEvent(context.Background(), document.NewExternalEvent("unrelated.event", nil))
	leaves := itp.ActiveLeafStates()
	if len(leaves) != 1 || leaves[0] != "red" {
		t.Fatalf("leaves = %v, want unchanged [red]", leaves)
	}
}

// buildParallelChart: parallel state with two regions, each a compound
// with two atomic substates and a transition into their own final state.
func buildParallelChart(t *testing.T) *document.Document {
	t.Helper()
	d := document.New("par")
	d.Roots = []string{"p"}
	d.Initial = "p"

	p := document.NewState("p", document.Parallel)
	p.Children = []string{"r1", "r2"}
	mustAddState(t, d, p)

	r1 := document.NewState("r1", document.Compound)
	r1.Parent = "p"
	r1.Initial = "r1a"
	r1.Children = []string{"r1a", "r1fin"}
	mustAddState(t, d, r1)
	r1a := document.NewState("r1a", document.Atomic)
	r1a.Parent = "r1"
	mustAddState(t, d, r1a)
	r1fin := document.NewState("r1fin", document.Final)
	r1fin.Parent = "r1"
	mustAddState(t, d, r1fin)

	r2 := document.NewState("r2", document.Compound)
	r2.Parent = "p"
	r2.Initial = "r2a"
	r2.Children = []string{"r2a", "r2fin"}
	mustAddState(t, d, r2)
	r2a := document.NewState("r2a", document.Atomic)
	r2a.Parent = "r2"
	mustAddState(t, d, r2a)
	r2fin := document.NewState("r2fin", document.Final)
	r2fin.Parent = "r2"
	mustAddState(t, d, r2fin)

	addTrans := func(source string, events []string, targets []string) {
		tr := &document.Transition{Source: source, Events: events, Targets: targets, DocOrder: d.NextDocOrder()}
		st, _ := d.State(source)
		st.Transitions = append(st.Transitions, tr)
		d.AddTransition(tr)
	}
	addTrans("r1a", []string{"done1"}, []string{"r1fin"})
	addTrans("r2a", []string{"done2"}, []string{"r2fin"})

	return d
}

func TestInterpreterParallelCompletenessInvariant(t *testing.T) {
	d := buildParallelChart(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	leaves := itp.ActiveLeafStates()
	if len(leaves) != 2 {
		t.Fatalf("expected one active leaf per parallel region, got %v", leaves)
	}
}

func TestInterpreterParallelRegionsIndependentlyTransition(t *testing.T) {
	d := buildParallelChart(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	itp.SendEvent(context.Background(), document.NewExternalEvent("done1", nil))
	if !itp.IsActive("r1fin") {
		t.Error("expected r1fin active")
	}
	if !itp.IsActive("r2a") {
		t.Error("expected r2a still active, unaffected by r1's transition")
	}
}

func TestInterpreterAllRegionsReachFinal(t *testing.T) {
	d := buildParallelChart(t)
	itp, err := New(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := itp.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	itp.SendEvent(context.Background(), document.NewExternalEvent("done1", nil))
	itp.SendEvent(context.Background(), document.NewExternalEvent("done2", nil))
	if !itp.IsActive("r1fin") || !itp.IsActive("r2fin") {
		t.Fatal("expected both regions in their final state")
	}
}
