package runtime

import "testing"

func TestConfigurationEnterExit(t *testing.T) {
	c := NewConfiguration()
	c.Enter("a", "b")
	if !c.IsActive("a") || !c.IsActive("b") {
		t.Fatal("expected a and b active")
	}
	c.SetLeaves([]string{"b"})
	if got := c.Leaves(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Leaves() = %v, want [b]", got)
	}
	c.Exit("a")
	if c.IsActive("a") {
		t.Error("a should no longer be active")
	}
}

func TestHistoryTrackerShallow(t *testing.T) {
	h := NewHistoryTracker()
	if _, ok := h.RestoreShallow("h1"); ok {
		t.Fatal("expected no recorded history yet")
	}
	h.RecordShallow("h1", "childA")
	child, ok := h.RestoreShallow("h1")
	if !ok || child != "childA" {
		t.Errorf("RestoreShallow = %q, %v", child, ok)
	}
}

func TestHistoryTrackerDeep(t *testing.T) {
	h := NewHistoryTracker()
	h.RecordDeep("h1", []string{"a", "a.b", "a.b.c"})
	got, ok := h.RestoreDeep("h1")
	if !ok || len(got) != 3 {
		t.Fatalf("RestoreDeep = %v, %v", got, ok)
	}
	got[0] = "mutated"
	got2, _ := h.RestoreDeep("h1")
	if got2[0] == "mutated" {
		t.Error("RestoreDeep should return a defensive copy")
	}
}

func TestHistoryTrackerClear(t *testing.T) {
	h := NewHistoryTracker()
	h.RecordShallow("h1", "childA")
	h.Clear("h1")
	if _, ok := h.RestoreShallow("h1"); ok {
		t.Error("expected history cleared")
	}
}
