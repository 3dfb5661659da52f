package hierarchy

import (
	"testing"

	"github.com/comalice/scxmlgo/internal/document"
)

func buildParallelDoc(t *testing.T) *document.Document {
	t.Helper()
	d := document.New("m")
	d.Roots = []string{"par"}

	par := document.NewState("par", document.Parallel)
	par.Children = []string{"r1", "r2"}
	r1 := document.NewState("r1", document.Compound)
	r1.Parent = "par"
	r1.Initial = "r1a"
	r1.Children = []string{"r1a"}
	r1a := document.NewState("r1a", document.Atomic)
	r1a.Parent = "r1"
	r2 := document.NewState("r2", document.Compound)
	r2.Parent = "par"
	r2.Initial = "r2a"
	r2.Children = []string{"r2a"}
	r2a := document.NewState("r2a", document.Atomic)
	r2a.Parent = "r2"

	for _, s := range []*document.State{par, r1, r1a, r2, r2a} {
		if err := d.AddState(s); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func TestAncestorPathNoCache(t *testing.T) {
	d := buildParallelDoc(t)
	path := AncestorPath(d, "r1a")
	want := []string{"par", "r1", "r1a"}
	if len(path) != len(want) {
		t.Fatalf("got %v want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got %v want %v", path, want)
		}
	}
}

func TestDescendantOfNoCache(t *testing.T) {
	d := buildParallelDoc(t)
	if !DescendantOf(d, "r1a", "par") {
		t.Error("r1a should be descendant of par")
	}
	if DescendantOf(d, "r1a", "r2") {
		t.Error("r1a should not be descendant of r2")
	}
}

func TestInDifferentParallelRegions(t *testing.T) {
	d := buildParallelDoc(t)
	if !InDifferentParallelRegions(d, "r1a", "r2a") {
		t.Error("r1a and r2a are in different regions of par")
	}
	if InDifferentParallelRegions(d, "r1a", "r1") {
		t.Error("r1a and r1 are in the same region")
	}
}

func TestExitsParallelRegion(t *testing.T) {
	d := buildParallelDoc(t)
	if !ExitsParallelRegion(d, "r1a", "") {
		t.Error("exiting to the document root should exit the parallel region")
	}
	if ExitsParallelRegion(d, "r1a", "r1") {
		t.Error("staying within r1 should not exit the parallel region")
	}
}
