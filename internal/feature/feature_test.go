package feature

import "testing"

func TestReportCoversEveryEntry(t *testing.T) {
	lines := Report()
	if len(lines) != len(Table) {
		t.Fatalf("got %d lines, want %d", len(lines), len(Table))
	}
}

func TestLevelString(t *testing.T) {
	if Supported.String() != "supported" || Unsupported.String() != "unsupported" {
		t.Errorf("unexpected Level.String() values")
	}
}
