package document

import "testing"

// buildSample builds: p(compound, initial c1) -> c1, c2 ; par(parallel) -> r1(compound)->r1a,r1b ; r2(compound)->r2a
func buildSample(t *testing.T) *Document {
	t.Helper()
	d := New("sample")
	d.Roots = []string{"p", "par"}

	p := NewState("p", Compound)
	p.Initial = "c1"
	p.Children = []string{"c1", "c2"}
	c1 := NewState("c1", Atomic)
	c1.Parent = "p"
	c2 := NewState("c2", Atomic)
	c2.Parent = "p"

	par := NewState("par", Parallel)
	par.Children = []string{"r1", "r2"}
	r1 := NewState("r1", Compound)
	r1.Parent = "par"
	r1.Initial = "r1a"
	r1.Children = []string{"r1a", "r1b"}
	r1a := NewState("r1a", Atomic)
	r1a.Parent = "r1"
	r1b := NewState("r1b", Atomic)
	r1b.Parent = "r1"
	r2 := NewState("r2", Compound)
	r2.Parent = "par"
	r2.Initial = "r2a"
	r2.Children = []string{"r2a"}
	r2a := NewState("r2a", Atomic)
	r2a.Parent = "r2"

	for _, s := range []*State{p, c1, c2, par, r1, r1a, r1b, r2, r2a} {
		if err := d.AddState(s); err != nil {
			t.Fatal(err)
		}
	}
	d.Cache = BuildHierarchyCache(d)
	return d
}

func TestHierarchyCacheAncestorPath(t *testing.T) {
	d := buildSample(t)
	path, ok := d.Cache.AncestorPath("c1")
	if !ok {
		t.Fatal("expected ancestor path for c1")
	}
	want := []string{"p", "c1"}
	if len(path) != len(want) {
		t.Fatalf("got %v want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("got %v want %v", path, want)
		}
	}
}

func TestHierarchyCacheDescendants(t *testing.T) {
	d := buildSample(t)
	if !d.Cache.IsDescendant("c1", "p") {
		t.Error("c1 should be descendant of p")
	}
	if d.Cache.IsDescendant("p", "p") {
		t.Error("p should not be its own descendant")
	}
	if d.Cache.IsDescendant("c2", "c1") {
		t.Error("c2 is not a descendant of c1")
	}
}

func TestHierarchyCacheLCCA(t *testing.T) {
	d := buildSample(t)
	lcca, ok := d.Cache.LCCA("c1", "c2")
	if !ok || lcca != "p" {
		t.Errorf("LCCA(c1,c2) = %q, want p", lcca)
	}
	lcca, ok = d.Cache.LCCA("r1a", "r2a")
	if !ok || lcca != "" {
		t.Errorf("LCCA across parallel regions should have no compound ancestor above par, got %q", lcca)
	}
}

func TestHierarchyCacheParallelRegions(t *testing.T) {
	d := buildSample(t)
	descs, ok := d.Cache.RegionDescendants("par", "r1")
	if !ok {
		t.Fatal("expected region for r1")
	}
	if !descs["r1a"] || !descs["r1b"] || !descs["r1"] {
		t.Errorf("region r1 descendants = %v", descs)
	}
	if descs["r2a"] {
		t.Error("r2a should not belong to r1's region")
	}
}

func TestHierarchyCacheParallelAncestors(t *testing.T) {
	d := buildSample(t)
	anc := d.Cache.ParallelAncestors("r1a")
	if len(anc) != 1 || anc[0] != "par" {
		t.Errorf("ParallelAncestors(r1a) = %v, want [par]", anc)
	}
	if len(d.Cache.ParallelAncestors("c1")) != 0 {
		t.Error("c1 has no parallel ancestors")
	}
}
